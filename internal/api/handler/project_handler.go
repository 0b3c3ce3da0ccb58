package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/enterprise/taskboard/internal/api/metrics"
	"github.com/enterprise/taskboard/internal/core/domain"
	"github.com/enterprise/taskboard/internal/core/ports"
)

// ProjectHandler handles HTTP requests for project operations.
type ProjectHandler struct {
	service ports.ProjectService
	users   ports.UserRepository
}

func NewProjectHandler(service ports.ProjectService, users ports.UserRepository) *ProjectHandler {
	return &ProjectHandler{service: service, users: users}
}

type createProjectRequest struct {
	Name        string `json:"name"        validate:"required,min=2"`
	Description string `json:"description"`
}

// Create registers a new project owned by the caller.
//
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProjectRequest  true  "Project details"
// @Success      201   {object}  Response
// @Failure      400   {object}  Response
// @Router       /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	username, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return Fail(c, http.StatusBadRequest, err.Error())
	}

	owner, err := h.users.FindByUsername(c.Request().Context(), username)
	if err != nil {
		return err
	}

	project, err := h.service.Create(c.Request().Context(), ports.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     owner.ID,
	})
	if err != nil {
		return err
	}

	metrics.ProjectsCreatedTotal.Inc()
	return Created(c, "Project created", project)
}

// List returns all projects.
//
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Router       /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if projects == nil {
		projects = []*domain.Project{}
	}
	return OK(c, "Projects fetched", projects)
}

// Get returns a single project by id.
//
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  Response
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	project, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return OK(c, "Project fetched", project)
}

// AddMember adds a user to the project member list. Managers and admins only.
//
// @Summary      Add a project member
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Project ID"
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  Response
// @Failure      404     {object}  Response
// @Router       /projects/{id}/members/{userId} [post]
func (h *ProjectHandler) AddMember(c echo.Context) error {
	project, err := h.service.AddMember(c.Request().Context(), c.Param("id"), c.Param("userId"))
	if err != nil {
		return err
	}
	return OK(c, "Member added", project)
}
