package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/enterprise/taskboard/internal/api/metrics"
	"github.com/enterprise/taskboard/internal/core/domain"
	"github.com/enterprise/taskboard/internal/core/ports"
)

// TokenRevoker invalidates a bearer token server-side on logout. May be nil
// when no revocation backend is configured.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string) error
}

type AuthHandler struct {
	authService ports.AuthService
	revoker     TokenRevoker
}

func NewAuthHandler(authService ports.AuthService, revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{authService: authService, revoker: revoker}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email"    validate:"omitempty,email"`
	FullName string `json:"full_name"`
}

type userResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	FullName string   `json:"full_name,omitempty"`
	Enabled  bool     `json:"enabled"`
	Roles    []string `json:"roles"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Enabled:  u.Enabled,
		Roles:    u.Roles,
	}
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Response
// @Failure      400   {object}  Response
// @Failure      401   {object}  Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return Fail(c, http.StatusBadRequest, err.Error())
	}

	token, _, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		// Unknown usernames and wrong passwords are indistinguishable to the
		// caller.
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			return Fail(c, http.StatusUnauthorized, "Invalid credentials")
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return OK(c, "Login successful", loginResponse{AccessToken: token})
}

// Register creates a new user account with the default employee role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  Response
// @Failure      400   {object}  Response
// @Failure      409   {object}  Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return Fail(c, http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password, req.Email, req.FullName)
	if err != nil {
		return err
	}

	return Created(c, "User registered successfully", toUserResponse(user))
}

// Me returns the identity behind the presented bearer token, including the
// full role set. Session hydration on the client depends on this endpoint.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Failure      401  {object}  Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	username, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), username)
	if err != nil {
		return err
	}

	return OK(c, "User fetched", toUserResponse(user))
}

// Logout revokes the presented bearer token. Always succeeds from the
// caller's perspective once the token is on the denylist; with no revocation
// backend configured it is a no-op (tokens then lapse at their expiry).
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}

	if h.revoker != nil {
		token, _ := c.Get("token").(string)
		if token != "" {
			if err := h.revoker.Revoke(c.Request().Context(), token); err != nil {
				return err
			}
			metrics.TokenRevocationsTotal.Inc()
		}
	}

	return OK(c, "Logged out", nil)
}
