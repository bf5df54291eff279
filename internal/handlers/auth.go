package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/expense-tracker/internal/activity"
	"example.com/expense-tracker/internal/auth"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgEmailTaken         = "An account with this email already exists."
	msgLoginFailed        = "A server error occurred during login."
	msgSignupFailed       = "A server error occurred during signup."
)

type AuthHandler struct {
	Auth     *auth.Authenticator
	Tokens   *auth.TokenManager
	Cookie   auth.CookieOptions
	Activity *activity.Logger
}

// NewAuthHandler создает обработчик авторизации.
func NewAuthHandler(authenticator *auth.Authenticator, tokens *auth.TokenManager, cookie auth.CookieOptions, activityLog *activity.Logger) *AuthHandler {
	return &AuthHandler{
		Auth:     authenticator,
		Tokens:   tokens,
		Cookie:   cookie,
		Activity: activityLog,
	}
}

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type SessionUser struct {
	Email string `json:"email"`
}

type SessionResponse struct {
	User      SessionUser `json:"user"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

// Signup регистрирует пользователя и открывает сессию.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	ctx := c.Request().Context()
	email := auth.NormalizeEmail(req.Email)

	user, err := h.Auth.Register(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			h.Activity.Log(ctx, "[signup] FAILURE: Email already exists for '%s'.", email)
			return conflict(c, msgEmailTaken)
		}
		h.Activity.Log(ctx, "[signup] CRITICAL FAILURE: %v", err)
		slog.ErrorContext(ctx, "signup failed", slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgSignupFailed})
	}

	response, err := h.openSession(c, user.Email)
	if err != nil {
		h.Activity.Log(ctx, "[signup] CRITICAL FAILURE creating session for '%s': %v", email, err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgSignupFailed})
	}

	h.Activity.Log(ctx, "[signup] New user saved and session created for '%s'.", user.Email)
	return c.JSON(http.StatusCreated, response)
}

// Login проверяет учетные данные и открывает сессию.
func (h *AuthHandler) Login(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgInvalidCredentials})
	}

	ctx := c.Request().Context()
	email := auth.NormalizeEmail(req.Email)

	user, err := h.Auth.Verify(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.Activity.Log(ctx, "[login] FAILURE: Invalid credentials for email '%s'.", email)
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgInvalidCredentials})
		}
		h.Activity.Log(ctx, "[login] CRITICAL FAILURE: %v", err)
		slog.ErrorContext(ctx, "login failed", slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgLoginFailed})
	}

	response, err := h.openSession(c, user.Email)
	if err != nil {
		h.Activity.Log(ctx, "[login] CRITICAL FAILURE creating session for '%s': %v", email, err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgLoginFailed})
	}

	h.Activity.Log(ctx, "[login] Session created for '%s'.", user.Email)
	return c.JSON(http.StatusOK, response)
}

// Logout удаляет cookie сессии. Срабатывает и без активной сессии.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if email, ok := auth.UserEmailFromContext(c); ok {
		h.Activity.Log(ctx, "[logout] User '%s' is logging out.", email)
	} else {
		h.Activity.Log(ctx, "[logout] Unauthenticated user is logging out.")
	}

	auth.ClearSessionCookie(c, h.Cookie)
	return c.NoContent(http.StatusNoContent)
}

// Me возвращает пользователя текущей сессии.
func (h *AuthHandler) Me(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	return c.JSON(http.StatusOK, SessionResponse{User: SessionUser{Email: email}})
}

func (h *AuthHandler) openSession(c echo.Context, email string) (SessionResponse, error) {
	token, expiresAt, err := h.Tokens.Issue(email)
	if err != nil {
		return SessionResponse{}, err
	}

	auth.SetSessionCookie(c, h.Cookie, token, expiresAt)
	return SessionResponse{User: SessionUser{Email: email}, ExpiresAt: &expiresAt}, nil
}

func currentUser(c echo.Context) (string, bool) {
	return auth.UserEmailFromContext(c)
}
