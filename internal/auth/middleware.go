package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const ContextUserEmailKey = "user_email"

// CookieOptions задает параметры cookie сессии.
type CookieOptions struct {
	Name   string
	Secure bool
}

// SessionMiddleware проверяет токен сессии из cookie (или заголовка Authorization)
// и сохраняет email пользователя в контексте.
func SessionMiddleware(manager *TokenManager, cookie CookieOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email, ok := manager.Validate(sessionToken(c, cookie.Name))
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "no active session"})
			}

			c.Set(ContextUserEmailKey, email)
			return next(c)
		}
	}
}

// OptionalSession сохраняет email в контексте, если сессия есть, и пропускает запрос в любом случае.
func OptionalSession(manager *TokenManager, cookie CookieOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if email, ok := manager.Validate(sessionToken(c, cookie.Name)); ok {
				c.Set(ContextUserEmailKey, email)
			}
			return next(c)
		}
	}
}

// UserEmailFromContext извлекает email пользователя из контекста.
func UserEmailFromContext(c echo.Context) (string, bool) {
	value := c.Get(ContextUserEmailKey)
	email, ok := value.(string)
	return email, ok && email != ""
}

// SetSessionCookie выставляет HTTP-only cookie с токеном.
func SetSessionCookie(c echo.Context, opts CookieOptions, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     opts.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie удаляет cookie сессии.
func ClearSessionCookie(c echo.Context, opts CookieOptions) {
	c.SetCookie(&http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionToken(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}

	return ""
}
