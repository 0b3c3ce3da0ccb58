package ports

import (
	"context"

	"github.com/enterprise/taskboard/internal/core/domain"
)

// CreateProjectInput carries all data needed to create a project.
type CreateProjectInput struct {
	Name        string
	Description string
	// OwnerID is the authenticated user creating the project; always a member.
	OwnerID string
}

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	AddMember(ctx context.Context, projectID, userID string) error
}

// ProjectService defines use-case operations for projects.
type ProjectService interface {
	Create(ctx context.Context, input CreateProjectInput) (*domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	AddMember(ctx context.Context, projectID, userID string) (*domain.Project, error)
}
