package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerIssueAndValidate(t *testing.T) {
	manager := NewTokenManager("secret", "expense-tracker", 24*time.Hour)

	token, expiresAt, err := manager.Issue("a@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	email, ok := manager.Validate(token)
	assert.True(t, ok)
	assert.Equal(t, "a@example.com", email)
}

func TestTokenManagerRejectsForeignAndExpiredTokens(t *testing.T) {
	manager := NewTokenManager("secret", "expense-tracker", time.Hour)
	other := NewTokenManager("other-secret", "expense-tracker", time.Hour)

	foreign, _, err := other.Issue("a@example.com")
	require.NoError(t, err)
	_, ok := manager.Validate(foreign)
	assert.False(t, ok, "подпись чужим ключом")

	issuedAt := time.Now().Add(-2 * time.Hour)
	manager.now = func() time.Time { return issuedAt }
	stale, _, err := manager.Issue("a@example.com")
	require.NoError(t, err)
	manager.now = time.Now
	_, ok = manager.Validate(stale)
	assert.False(t, ok, "истекший токен")

	_, ok = manager.Validate("")
	assert.False(t, ok)
	_, ok = manager.Validate("not-a-token")
	assert.False(t, ok)
}

func TestTokenManagerIssueRequiresEmail(t *testing.T) {
	manager := NewTokenManager("secret", "expense-tracker", time.Hour)
	_, _, err := manager.Issue("  ")
	assert.Error(t, err)
}

func TestSessionMiddleware(t *testing.T) {
	manager := NewTokenManager("secret", "expense-tracker", time.Hour)
	cookie := CookieOptions{Name: "session"}
	token, _, err := manager.Issue("a@example.com")
	require.NoError(t, err)

	handler := SessionMiddleware(manager, cookie)(func(c echo.Context) error {
		email, ok := UserEmailFromContext(c)
		require.True(t, ok)
		return c.String(http.StatusOK, email)
	})

	cases := []struct {
		name   string
		setup  func(req *http.Request)
		status int
	}{
		{name: "cookie", setup: func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "session", Value: token})
		}, status: http.StatusOK},
		{name: "bearer", setup: func(req *http.Request) {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}, status: http.StatusOK},
		{name: "missing", setup: func(req *http.Request) {}, status: http.StatusUnauthorized},
		{name: "garbage", setup: func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})
		}, status: http.StatusUnauthorized},
	}

	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()

			require.NoError(t, handler(e.NewContext(req, rec)))
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "a@example.com", rec.Body.String())
			}
		})
	}
}

func TestSessionCookieHelpers(t *testing.T) {
	e := echo.New()
	opts := CookieOptions{Name: "session", Secure: true}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	SetSessionCookie(c, opts, "tok", time.Now().Add(time.Hour))
	set := rec.Result().Cookies()
	require.Len(t, set, 1)
	assert.Equal(t, "tok", set[0].Value)
	assert.True(t, set[0].HttpOnly)
	assert.True(t, set[0].Secure)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	ClearSessionCookie(c, opts)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "", cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)
}
