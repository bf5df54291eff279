package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const healthPingTimeout = 2 * time.Second

type HealthHandler struct {
	UserStore string
	Ping      func(ctx context.Context) error
}

// NewHealthHandler создает обработчик проверки состояния. ping может быть nil.
func NewHealthHandler(userStore string, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{UserStore: userStore, Ping: ping}
}

type HealthResponse struct {
	Status    string `json:"status"`
	UserStore string `json:"user_store"`
}

// Health возвращает статус сервиса и доступность хранилища пользователей.
func (h *HealthHandler) Health(c echo.Context) error {
	response := HealthResponse{Status: "ok", UserStore: h.UserStore}

	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()

		if err := h.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "health check failed", slog.String("error", err.Error()))
			response.Status = "degraded"
			return c.JSON(http.StatusServiceUnavailable, response)
		}
	}

	return c.JSON(http.StatusOK, response)
}
