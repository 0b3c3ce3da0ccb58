package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/enterprise/taskboard/internal/api/handler"
	"github.com/enterprise/taskboard/internal/api/middleware"
	"github.com/enterprise/taskboard/internal/core/domain"
	"github.com/enterprise/taskboard/internal/core/service"
	mongodb "github.com/enterprise/taskboard/internal/infrastructure/db/mongo"
	redisdb "github.com/enterprise/taskboard/internal/infrastructure/db/redis"
)

// RouterConfig carries the dependencies and settings the router needs.
type RouterConfig struct {
	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	TokenTTL  time.Duration
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("taskboard"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(cfg.Mongo)
	projectRepo := mongodb.NewProjectRepository(cfg.Mongo)
	taskRepo := mongodb.NewTaskRepository(cfg.Mongo)

	revocations := redisdb.NewRevocationList(cfg.Redis, cfg.TokenTTL)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	projectService := service.NewProjectService(projectRepo, userRepo)
	taskService := service.NewTaskService(taskRepo, projectRepo)
	userService := service.NewUserService(userRepo)

	authHandler := handler.NewAuthHandler(authService, revocations)
	projectHandler := handler.NewProjectHandler(projectService, userRepo)
	taskHandler := handler.NewTaskHandler(taskService)
	userHandler := handler.NewUserHandler(userService)

	authMiddleware := middleware.Auth(cfg.JWTSecret, revocations)
	loginLimiter := middleware.NewLoginRateLimiter(10, 5)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login, loginLimiter.Middleware())
	e.POST("/auth/register", authHandler.Register)
	e.GET("/auth/me", authHandler.Me, authMiddleware)
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)

	// --- Project routes ---
	projects := e.Group("/projects", authMiddleware)
	projects.GET("", projectHandler.List)
	projects.POST("", projectHandler.Create)
	projects.GET("/:id", projectHandler.Get)
	projects.POST("/:id/members/:userId", projectHandler.AddMember,
		middleware.RBAC(domain.RoleAdmin, domain.RoleManager))

	// --- Task routes ---
	tasks := e.Group("/tasks", authMiddleware)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/project/:projectId", taskHandler.ListByProject)
	tasks.PATCH("/:id/status", taskHandler.UpdateStatus)

	// --- User directory (admin only) ---
	users := e.Group("/users", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	users.GET("", userHandler.List)
	users.PUT("/:id/roles", userHandler.UpdateRoles)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(cfg.Mongo, cfg.Redis)

	e.GET("/health", healthHandler.Liveness)              // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness)    // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
