package service

import (
	"context"
	"time"

	"github.com/enterprise/taskboard/internal/core/domain"
	"github.com/enterprise/taskboard/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// TaskService implements task use cases.
type TaskService struct {
	tasks    ports.TaskRepository
	projects ports.ProjectRepository
}

func NewTaskService(tasks ports.TaskRepository, projects ports.ProjectRepository) *TaskService {
	return &TaskService{tasks: tasks, projects: projects}
}

func (s *TaskService) Create(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	if input.Title == "" || input.ProjectID == "" {
		return nil, domain.ErrInvalidInput
	}

	// The referenced project must exist before a task can be attached to it.
	if _, err := s.projects.FindByID(ctx, input.ProjectID); err != nil {
		return nil, err
	}

	priority := domain.TaskPriority(input.Priority)
	switch priority {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
	case "":
		priority = domain.PriorityMedium
	default:
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TaskTodo,
		Priority:    priority,
		ProjectID:   input.ProjectID,
		AssigneeID:  input.AssigneeID,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return s.tasks.Create(ctx, task)
}

func (s *TaskService) List(ctx context.Context, filter ports.ListTasksFilter) (*ports.ListTasksResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	items, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListTasksResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *TaskService) UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus) (*domain.Task, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidInput
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status != status && !task.Status.CanTransitionTo(status) {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.tasks.UpdateStatus(ctx, taskID, status); err != nil {
		return nil, err
	}
	task.Status = status
	task.UpdatedAt = time.Now().UTC()
	return task, nil
}
