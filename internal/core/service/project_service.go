package service

import (
	"context"
	"time"

	"github.com/enterprise/taskboard/internal/core/domain"
	"github.com/enterprise/taskboard/internal/core/ports"
)

// ProjectService implements project use cases.
type ProjectService struct {
	projects ports.ProjectRepository
	users    ports.UserRepository
}

func NewProjectService(projects ports.ProjectRepository, users ports.UserRepository) *ProjectService {
	return &ProjectService{projects: projects, users: users}
}

func (s *ProjectService) Create(ctx context.Context, input ports.CreateProjectInput) (*domain.Project, error) {
	if input.Name == "" || input.OwnerID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	project := &domain.Project{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     input.OwnerID,
		MemberIDs:   []string{input.OwnerID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return s.projects.Create(ctx, project)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.FindByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.List(ctx)
}

func (s *ProjectService) AddMember(ctx context.Context, projectID, userID string) (*domain.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.HasMember(userID) {
		return project, nil
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.projects.AddMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.projects.FindByID(ctx, projectID)
}
