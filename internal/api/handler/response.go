package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the canonical envelope for every API payload. The frontend and
// CLI clients key off Success and Message, so all handlers must go through
// OK / Created / Fail rather than writing bodies directly.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK renders a 200 with the standard envelope.
func OK(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created renders a 201 with the standard envelope.
func Created(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// Fail renders an error envelope with the given status.
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Response{Success: false, Message: message})
}
