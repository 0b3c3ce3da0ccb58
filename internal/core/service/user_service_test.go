package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/enterprise/taskboard/internal/core/domain"
)

func TestUserService_UpdateRoles(t *testing.T) {
	repo := newStubUserRepo()
	_, err := repo.Create(context.Background(), &domain.User{
		ID:       "u1",
		Username: "carol",
		Roles:    []string{domain.RoleEmployee},
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	svc := NewUserService(repo)

	user, err := svc.UpdateRoles(context.Background(), "u1",
		[]string{domain.RoleManager, domain.RoleEmployee, domain.RoleManager})
	if err != nil {
		t.Fatalf("UpdateRoles returned error: %v", err)
	}
	if len(user.Roles) != 2 {
		t.Fatalf("expected duplicates collapsed, got roles %v", user.Roles)
	}
	if !user.HasRole(domain.RoleManager) || !user.HasRole(domain.RoleEmployee) {
		t.Fatalf("unexpected role set %v", user.Roles)
	}
}

func TestUserService_UpdateRoles_RejectsUnknownRole(t *testing.T) {
	svc := NewUserService(newStubUserRepo())

	_, err := svc.UpdateRoles(context.Background(), "u1", []string{"ROLE_WIZARD"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	_, err = svc.UpdateRoles(context.Background(), "u1", nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty set, got %v", err)
	}
}

func TestUserService_UpdateRoles_UnknownUser(t *testing.T) {
	svc := NewUserService(newStubUserRepo())

	_, err := svc.UpdateRoles(context.Background(), "missing", []string{domain.RoleAdmin})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_List(t *testing.T) {
	repo := newStubUserRepo()
	now := time.Now().UTC()
	for _, name := range []string{"alice", "bob"} {
		if _, err := repo.Create(context.Background(), &domain.User{
			Username:  name,
			Roles:     []string{domain.RoleEmployee},
			Enabled:   true,
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("seed user %s: %v", name, err)
		}
	}
	svc := NewUserService(repo)

	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}
