package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/enterprise/taskboard/internal/api/metrics"
	"github.com/enterprise/taskboard/internal/core/domain"
	"github.com/enterprise/taskboard/internal/core/ports"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type createTaskRequest struct {
	Title       string `json:"title"       validate:"required,min=2"`
	Description string `json:"description"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	ProjectID   string `json:"project_id"  validate:"required"`
	AssigneeID  string `json:"assignee_id"`
	DueDate     string `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
}

type updateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress in_review done"`
}

type taskListResponse struct {
	Items      []*domain.Task `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// Create registers a new task in a project.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  Response
// @Failure      400   {object}  Response
// @Failure      404   {object}  Response
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return Fail(c, http.StatusBadRequest, err.Error())
	}

	input := ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
	}
	if req.DueDate != "" {
		due, _ := time.Parse("2006-01-02", req.DueDate)
		input.DueDate = due
	}

	task, err := h.service.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(task.Priority)).Inc()
	return Created(c, "Task created", task)
}

// List returns a page of tasks, optionally filtered by status or assignee.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Filter by status"
// @Param        assignee  query     string  false  "Filter by assignee id"
// @Param        page      query     int     false  "Page (1-based)"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  Response
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	filter := ports.ListTasksFilter{
		Status:     c.QueryParam("status"),
		AssigneeID: c.QueryParam("assignee"),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	return h.list(c, filter)
}

// ListByProject returns a page of tasks scoped to one project.
//
// @Summary      List tasks in a project
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      string  true   "Project ID"
// @Param        page       query     int     false  "Page (1-based)"
// @Param        limit      query     int     false  "Page size"
// @Success      200        {object}  Response
// @Router       /tasks/project/{projectId} [get]
func (h *TaskHandler) ListByProject(c echo.Context) error {
	filter := ports.ListTasksFilter{
		ProjectID: c.Param("projectId"),
		Status:    c.QueryParam("status"),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	return h.list(c, filter)
}

func (h *TaskHandler) list(c echo.Context, filter ports.ListTasksFilter) error {
	res, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if res.Items == nil {
		res.Items = []*domain.Task{}
	}
	return OK(c, "Tasks fetched", taskListResponse{
		Items:      res.Items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// UpdateStatus moves a task through its lifecycle.
//
// @Summary      Update task status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Task ID"
// @Param        body  body      updateTaskStatusRequest  true  "Target status"
// @Success      200   {object}  Response
// @Failure      404   {object}  Response
// @Failure      422   {object}  Response
// @Router       /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	var req updateTaskStatusRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return Fail(c, http.StatusBadRequest, err.Error())
	}

	task, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), domain.TaskStatus(req.Status))
	if err != nil {
		return err
	}

	metrics.TaskTransitionsTotal.WithLabelValues(string(task.Status)).Inc()
	return OK(c, "Task updated", task)
}
