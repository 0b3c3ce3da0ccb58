package ports

import (
	"context"

	"github.com/enterprise/taskboard/internal/core/domain"
)

// UserService exposes the user directory (admin only at the route layer).
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	UpdateRoles(ctx context.Context, id string, roles []string) (*domain.User, error)
}
