package ports

import (
	"context"

	"github.com/enterprise/taskboard/internal/core/domain"
)

// AuthService implements the login exchange and identity lookup.
type AuthService interface {
	Register(ctx context.Context, username, password, email, fullName string) (*domain.User, error)
	// Login verifies credentials and returns a signed bearer token plus the user.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	// CurrentUser resolves the identity behind a previously issued token's username claim.
	CurrentUser(ctx context.Context, username string) (*domain.User, error)
}
