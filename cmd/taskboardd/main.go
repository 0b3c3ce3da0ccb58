// Command taskboardd runs the taskboard API server: authentication,
// projects, tasks and the user directory over MongoDB, with Redis backing
// token revocation.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enterprise/taskboard/internal/api"
	"github.com/enterprise/taskboard/internal/infrastructure/config"
	mongodb "github.com/enterprise/taskboard/internal/infrastructure/db/mongo"
	redisdb "github.com/enterprise/taskboard/internal/infrastructure/db/redis"
	"github.com/enterprise/taskboard/pkg/logger"
)

const shutdownGrace = 15 * time.Second

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "taskboardd",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	defer func() {
		if err := conn.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("disconnect mongodb")
		}
	}()

	userRepo := mongodb.NewUserRepository(conn.DB)
	taskRepo := mongodb.NewTaskRepository(conn.DB)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user indexes")
	}
	if err := taskRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure task indexes")
	}
	if err := mongodb.SeedAdmin(ctx, userRepo, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("seed admin account")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer rdb.Close()

	e := api.NewRouter(api.RouterConfig{
		Mongo:     conn.DB,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Log:       log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
