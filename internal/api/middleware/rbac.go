package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/enterprise/taskboard/internal/api/handler"
)

// RBAC enforces role-based access control. The caller must hold at least one
// of the allowed role designators. Unauthorized is distinct from
// unauthenticated: a valid token without the role gets 403, never 401.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get("roles").([]string)
			for _, r := range roles {
				if _, ok := allowed[r]; ok {
					return next(c)
				}
			}
			return handler.Fail(c, http.StatusForbidden, "forbidden")
		}
	}
}
