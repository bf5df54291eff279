package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "no active session"})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, errorResponse{Error: message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: message})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// validationError перечисляет поля, не прошедшие проверку.
func validationError(c echo.Context, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return badRequest(c, "validation failed")
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		fields = append(fields, strings.ToLower(fieldErr.Field())+" ("+fieldErr.Tag()+")")
	}
	return badRequest(c, "validation failed: "+strings.Join(fields, ", "))
}
