package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/enterprise/taskboard/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password, email, fullName string) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
	currentFn  func(ctx context.Context, username string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password, email, fullName string) (*domain.User, error) {
	return s.registerFn(ctx, username, password, email, fullName)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, username string) (*domain.User, error) {
	return s.currentFn(ctx, username)
}

func newAuthContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, username, password string) (string, *domain.User, error) {
			if username != "alice" || password != "s3cret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return "tok-123", &domain.User{Username: "alice"}, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newAuthContext(t, http.MethodPost, "/auth/login", `{"username":"alice","password":"s3cret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Fatalf("expected success envelope, got %+v", resp)
	}
	data, _ := resp.Data.(map[string]any)
	if data["accessToken"] != "tok-123" {
		t.Fatalf("expected accessToken in data, got %v", resp.Data)
	}
}

func TestAuthHandler_Login_Rejected(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, _, _ string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newAuthContext(t, http.MethodPost, "/auth/login", `{"username":"bob","password":"wrong"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	if resp.Success {
		t.Fatalf("expected failure envelope")
	}
	if resp.Message != "Invalid credentials" {
		t.Fatalf("expected message 'Invalid credentials', got %q", resp.Message)
	}
}

func TestAuthHandler_Login_UnknownUserLooksLikeBadPassword(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, _, _ string) (string, *domain.User, error) {
			return "", nil, domain.ErrUserNotFound
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newAuthContext(t, http.MethodPost, "/auth/login", `{"username":"ghost","password":"x"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil)

	c, rec := newAuthContext(t, http.MethodPost, "/auth/login", `{"username":"alice"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, username, password, email, fullName string) (*domain.User, error) {
			return &domain.User{
				ID:       "u1",
				Username: username,
				Email:    email,
				FullName: fullName,
				Enabled:  true,
				Roles:    []string{domain.RoleEmployee},
			}, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newAuthContext(t, http.MethodPost, "/auth/register",
		`{"username":"alice","password":"secret1","email":"a@example.com","full_name":"Alice"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Fatalf("expected success envelope")
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response must not leak password material: %s", rec.Body.String())
	}
}

func TestAuthHandler_Me(t *testing.T) {
	stub := &stubAuthService{
		currentFn: func(_ context.Context, username string) (*domain.User, error) {
			if username != "alice" {
				t.Fatalf("unexpected username %q", username)
			}
			return &domain.User{ID: "u1", Username: "alice", Roles: []string{domain.RoleAdmin}}, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newAuthContext(t, http.MethodGet, "/auth/me", "")
	c.Set("username", "alice")
	c.Set("roles", []string{domain.RoleAdmin})

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	data, _ := resp.Data.(map[string]any)
	if data["username"] != "alice" {
		t.Fatalf("expected username in data, got %v", resp.Data)
	}
	roles, _ := data["roles"].([]any)
	if len(roles) != 1 || roles[0] != domain.RoleAdmin {
		t.Fatalf("expected roles in data, got %v", data["roles"])
	}
}

func TestAuthHandler_Me_NoClaims(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil)

	c, _ := newAuthContext(t, http.MethodGet, "/auth/me", "")
	err := h.Me(c)
	if err == nil {
		t.Fatalf("expected error when claims are missing")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
