package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/enterprise/taskboard/internal/core/ports"
)

// UserHandler exposes the user directory. Routes using it sit behind the
// admin RBAC middleware.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List returns every user account without password material.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Failure      403  {object}  Response
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return OK(c, "Users fetched", out)
}

type updateRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,role"`
}

// UpdateRoles replaces a user's role set.
//
// @Summary      Update a user's roles
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "User ID"
// @Param        body  body      updateRolesRequest  true  "New role set"
// @Success      200   {object}  Response
// @Failure      400   {object}  Response
// @Failure      404   {object}  Response
// @Router       /users/{id}/roles [put]
func (h *UserHandler) UpdateRoles(c echo.Context) error {
	var req updateRolesRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return Fail(c, http.StatusBadRequest, err.Error())
	}

	user, err := h.service.UpdateRoles(c.Request().Context(), c.Param("id"), req.Roles)
	if err != nil {
		return err
	}
	return OK(c, "Roles updated", toUserResponse(user))
}
