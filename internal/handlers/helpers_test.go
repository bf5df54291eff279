package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"example.com/expense-tracker/internal/auth"
	"example.com/expense-tracker/internal/currency"
	"example.com/expense-tracker/internal/notifications"
	"example.com/expense-tracker/internal/repository"
)

const testEmail = "a@example.com"

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

// fixedNow возвращает пятницу 15 марта 2024.
func fixedNow() time.Time {
	return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
}

type testStores struct {
	expenses    *repository.ExpenseRepository
	budgets     *repository.BudgetRepository
	categories  *repository.CategoryRepository
	preferences *repository.PreferenceRepository
	converter   *currency.Converter
	hub         *notifications.Hub
}

func newTestStores() testStores {
	return testStores{
		expenses:    repository.NewExpenseRepository(),
		budgets:     repository.NewBudgetRepository(),
		categories:  repository.NewCategoryRepository([]string{"Bills", "Dining", "Groceries"}),
		preferences: repository.NewPreferenceRepository("USD"),
		converter:   currency.NewConverter(currency.DefaultTable()),
		hub:         notifications.NewHub(),
	}
}

func (s testStores) expenseHandler() *ExpenseHandler {
	h := NewExpenseHandler(s.expenses, s.categories, s.preferences, s.converter, s.hub, nil)
	h.Now = fixedNow
	return h
}

func (s testStores) budgetHandler() *BudgetHandler {
	h := NewBudgetHandler(s.budgets, s.categories, s.expenses, s.preferences, s.converter, s.hub, nil)
	h.Now = fixedNow
	return h
}

func (s testStores) summaryHandler() *SummaryHandler {
	h := NewSummaryHandler(s.expenses, s.preferences, s.converter, s.hub)
	h.Now = fixedNow
	return h
}

type request struct {
	method string
	target string
	body   string
	user   string
	params map[string]string
}

func serve(t *testing.T, e *echo.Echo, req request, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	var httpReq *http.Request
	if req.body != "" {
		httpReq = httptest.NewRequest(req.method, req.target, strings.NewReader(req.body))
		httpReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		httpReq = httptest.NewRequest(req.method, req.target, nil)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httpReq, rec)
	if req.user != "" {
		c.Set(auth.ContextUserEmailKey, req.user)
	}
	if len(req.params) > 0 {
		names := make([]string, 0, len(req.params))
		values := make([]string, 0, len(req.params))
		for name, value := range req.params {
			names = append(names, name)
			values = append(values, value)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}

	require.NoError(t, handler(c))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func decimalOf(t *testing.T, value string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}
