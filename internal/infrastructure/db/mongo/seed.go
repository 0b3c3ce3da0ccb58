package mongo

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/enterprise/taskboard/internal/core/domain"
)

// SeedAdmin ensures a bootstrap administrator account exists so a fresh
// deployment can be logged into. It is a no-op when the username is taken.
func SeedAdmin(ctx context.Context, repo *UserRepository, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	if _, err := repo.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = repo.Create(ctx, &domain.User{
		Username:     username,
		FullName:     "System Administrator",
		PasswordHash: string(hash),
		Roles:        []string{domain.RoleAdmin, domain.RoleManager, domain.RoleEmployee},
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	return err
}
