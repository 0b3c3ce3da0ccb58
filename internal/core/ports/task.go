package ports

import (
	"context"
	"time"

	"github.com/enterprise/taskboard/internal/core/domain"
)

// CreateTaskInput carries all data needed to create a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	ProjectID   string
	AssigneeID  string
	DueDate     time.Time
}

// ListTasksFilter carries query parameters for listing tasks.
type ListTasksFilter struct {
	ProjectID  string // optional: scope to one project
	Status     string // optional: filter by task status
	AssigneeID string // optional: filter by assignee
	Page       int    // 1-based
	Limit      int    // max rows per page (capped at 100 by service)
}

// ListTasksResult is a single page of tasks plus the total count.
type ListTasksResult struct {
	Items      []*domain.Task
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error
}

// TaskService defines use-case operations for tasks.
type TaskService interface {
	Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, filter ListTasksFilter) (*ListTasksResult, error)
	UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus) (*domain.Task, error)
}
