package service

import (
	"context"
	"fmt"

	"github.com/enterprise/taskboard/internal/core/domain"
	"github.com/enterprise/taskboard/internal/core/ports"
)

// UserService exposes the user directory.
type UserService struct {
	repo ports.UserRepository
}

func NewUserService(repo ports.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

// UpdateRoles replaces a user's role set. Designators are deduplicated;
// unknown ones are rejected before anything is written.
func (s *UserService) UpdateRoles(ctx context.Context, id string, roles []string) (*domain.User, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: at least one role is required", domain.ErrInvalidInput)
	}

	deduped := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if !domain.ValidRole(role) {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		deduped = append(deduped, role)
	}

	return s.repo.UpdateRoles(ctx, id, deduped)
}
