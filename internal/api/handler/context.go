package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxIdentity extracts the claims injected by the Auth middleware and
// performs a fast-fail check before any service call: a non-empty username
// proves the middleware ran.
func ctxIdentity(c echo.Context) (username string, roles []string, err error) {
	username, _ = c.Get("username").(string)
	if username == "" {
		return "", nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	roles, _ = c.Get("roles").([]string)
	return username, roles, nil
}
