package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/expense-tracker/internal/ai"
	"example.com/expense-tracker/internal/config"
	"example.com/expense-tracker/internal/repository"
)

type cannedAI struct {
	reply string
}

func (c cannedAI) Chat(context.Context, []ai.Message) (string, error) {
	return c.reply, nil
}

func testConfig(dir string) config.Config {
	return config.Config{
		Storage: config.StorageConfig{
			UserStore:       config.UserStoreFile,
			UsersFile:       filepath.Join(dir, "users.json"),
			ActivityLogFile: filepath.Join(dir, "activity.log"),
		},
		Auth: config.AuthConfig{
			JWTSecret:          "test-secret",
			JWTIssuer:          "expense-tracker",
			SessionTTL:         time.Hour,
			CookieName:         "session",
			RateLimitPerMinute: 600,
			RateLimitBurst:     100,
		},
		AI: config.AIConfig{
			Provider:           ai.ProviderGemini,
			RateLimitPerMinute: 600,
			RateLimitBurst:     100,
		},
		Tracker: config.TrackerConfig{DefaultCurrency: "USD"},
	}
}

func newTestServer(t *testing.T) (*echo.Echo, string) {
	t.Helper()

	dir := t.TempDir()
	cfg := testConfig(dir)

	users, err := repository.NewFileUserRepository(cfg.Storage.UsersFile)
	require.NoError(t, err)

	e, err := New(cfg, nil, Dependencies{
		Users:    users,
		AIClient: cannedAI{reply: `{"categories": ["Dining", "Coffee"]}`},
	})
	require.NoError(t, err)
	return e, dir
}

func do(e *echo.Echo, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func signup(t *testing.T, e *echo.Echo, email string) *http.Cookie {
	t.Helper()

	rec := do(e, http.MethodPost, "/api/v1/auth/signup", `{"email":"`+email+`","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := http.Response{Header: rec.Header()}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session" {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestNewRejectsUnknownDefaultCurrency(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Tracker.DefaultCurrency = "XYZ"

	_, err := New(cfg, nil, Dependencies{AIClient: cannedAI{}})
	assert.Error(t, err)
}

func TestHealthRoute(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","user_store":"file"}`, rec.Body.String())
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	e, _ := newTestServer(t)

	for _, target := range []string{
		"/api/v1/expenses",
		"/api/v1/budgets",
		"/api/v1/categories",
		"/api/v1/summaries",
		"/api/v1/stats/chart",
		"/api/v1/auth/me",
	} {
		rec := do(e, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
		assert.JSONEq(t, `{"error":"no active session"}`, rec.Body.String(), target)
	}

	rec := do(e, http.MethodGet, "/api/v1/expenses", "", &http.Cookie{Name: "session", Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpenseFlowThroughRoutes(t *testing.T) {
	e, dir := newTestServer(t)
	cookie := signup(t, e, "flow@example.com")

	rec := do(e, http.MethodPost, "/api/v1/expenses", `{"description":"Lunch","amount":"12.50","date":"2024-01-10","category":"Dining"}`, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/v1/expenses", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"description":"Lunch"`)
	assert.Contains(t, rec.Body.String(), `"formatted":"$12.50"`)

	rec = do(e, http.MethodPut, "/api/v1/budgets/monthly/Dining", `{"limit":"200"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/v1/budgets/unbudgeted?period=monthly", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"Dining"`)

	rec = do(e, http.MethodPost, "/api/v1/categories/suggest", `{"description":"Flat white"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"suggestions":["Dining","Coffee"]}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/v1/expenses/export/csv", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "ID,Date,Description,Amount,Category\n"))

	other := signup(t, e, "other@example.com")
	rec = do(e, http.MethodGet, "/api/v1/expenses", "", other)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"expenses":[]`)

	rec = do(e, http.MethodPost, "/api/v1/auth/logout", "", cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	log, err := os.ReadFile(filepath.Join(dir, "activity.log"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "[signup] New user saved and session created for 'flow@example.com'.")
	assert.Contains(t, string(log), "User 'flow@example.com' added expense: \"Lunch\" for $12.50.")
	assert.Contains(t, string(log), "[logout] User 'flow@example.com' is logging out.")
}

func TestValidationErrorsUseJSONFieldNames(t *testing.T) {
	e, _ := newTestServer(t)
	cookie := signup(t, e, "fields@example.com")

	rec := do(e, http.MethodPost, "/api/v1/budgets", `{"category":"Dining","limit":"10","period":"weekly"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "period (oneof)")
}

func TestBudgetRoutesMatchEscapedCategories(t *testing.T) {
	e, _ := newTestServer(t)
	cookie := signup(t, e, "escaped@example.com")

	for _, name := range []string{"100%", "a/b"} {
		rec := do(e, http.MethodPost, "/api/v1/categories", `{"name":"`+name+`"}`, cookie)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = do(e, http.MethodPost, "/api/v1/budgets", `{"category":"`+name+`","limit":"10","period":"monthly"}`, cookie)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	for _, target := range []string{"/api/v1/budgets/monthly/100%25", "/api/v1/budgets/monthly/a%2Fb"} {
		rec := do(e, http.MethodPut, target, `{"limit":"25"}`, cookie)
		require.Equal(t, http.StatusOK, rec.Code, target+" "+rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"formatted":"$25.00"`, target)
	}

	rec := do(e, http.MethodPut, "/api/v1/budgets/monthly/a%2541", `{"limit":"25"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"unknown category"}`, rec.Body.String())

	for _, target := range []string{"/api/v1/budgets/monthly/100%25", "/api/v1/budgets/monthly/a%2Fb"} {
		rec := do(e, http.MethodDelete, target, "", cookie)
		assert.Equal(t, http.StatusNoContent, rec.Code, target)
	}

	rec = do(e, http.MethodGet, "/api/v1/budgets", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"budgets":[]}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/v1/categories", "", cookie)
	assert.NotContains(t, rec.Body.String(), `"aA"`)
	assert.NotContains(t, rec.Body.String(), `"a%41"`)
}
