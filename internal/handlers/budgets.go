package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/expense-tracker/internal/activity"
	"example.com/expense-tracker/internal/currency"
	"example.com/expense-tracker/internal/models"
	"example.com/expense-tracker/internal/notifications"
	"example.com/expense-tracker/internal/repository"
	"example.com/expense-tracker/internal/stats"
)

type BudgetHandler struct {
	Budgets     *repository.BudgetRepository
	Categories  *repository.CategoryRepository
	Expenses    *repository.ExpenseRepository
	Preferences *repository.PreferenceRepository
	Converter   *currency.Converter
	Notifier    *notifications.Hub
	Activity    *activity.Logger
	Now         func() time.Time
}

// NewBudgetHandler создает обработчик бюджетов.
func NewBudgetHandler(
	budgets *repository.BudgetRepository,
	categories *repository.CategoryRepository,
	expenses *repository.ExpenseRepository,
	preferences *repository.PreferenceRepository,
	converter *currency.Converter,
	notifier *notifications.Hub,
	activityLog *activity.Logger,
) *BudgetHandler {
	return &BudgetHandler{
		Budgets:     budgets,
		Categories:  categories,
		Expenses:    expenses,
		Preferences: preferences,
		Converter:   converter,
		Notifier:    notifier,
		Activity:    activityLog,
		Now:         time.Now,
	}
}

type BudgetRequest struct {
	Category string `json:"category" validate:"required,max=50"`
	Limit    string `json:"limit" validate:"required"`
	Period   string `json:"period" validate:"required,oneof=monthly yearly"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

type BudgetLimitRequest struct {
	Limit    string `json:"limit" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

type BudgetResponse struct {
	Category       string `json:"category"`
	Period         string `json:"period"`
	Limit          Money  `json:"limit"`
	Spent          Money  `json:"spent"`
	Remaining      Money  `json:"remaining"`
	Percent        string `json:"percent"`
	DisplayPercent string `json:"display_percent"`
	IsOverBudget   bool   `json:"is_over_budget"`
}

type BudgetListResponse struct {
	Budgets []BudgetResponse `json:"budgets"`
}

type UnbudgetedResponse struct {
	Period     string   `json:"period"`
	Categories []string `json:"categories"`
}

// List возвращает бюджеты с прогрессом: месячные считаются по тратам месяца, годовые по тратам года.
func (h *BudgetHandler) List(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var filter *models.BudgetPeriod
	if raw := strings.TrimSpace(c.QueryParam("period")); raw != "" {
		period, ok := models.ParseBudgetPeriod(raw)
		if !ok {
			return badRequest(c, "invalid period")
		}
		filter = &period
	}

	code := h.Preferences.Currency(email)
	overview := stats.BudgetOverview(h.Budgets.List(email, filter), h.Expenses.List(email), h.Now())

	items := make([]BudgetResponse, 0, len(overview))
	for _, status := range overview {
		item, err := h.toResponse(status, code)
		if err != nil {
			return serverError(c)
		}
		items = append(items, item)
	}

	return c.JSON(http.StatusOK, BudgetListResponse{Budgets: items})
}

// Unbudgeted возвращает категории без бюджета в периоде.
func (h *BudgetHandler) Unbudgeted(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	period, ok := models.ParseBudgetPeriod(strings.TrimSpace(c.QueryParam("period")))
	if !ok {
		return badRequest(c, "period must be monthly or yearly")
	}

	categories := stats.Unbudgeted(h.Categories.List(email), h.Budgets.List(email, &period), period)
	return c.JSON(http.StatusOK, UnbudgetedResponse{Period: string(period), Categories: categories})
}

// Create создает бюджет. Категория уже с бюджетом в этом периоде отклоняется.
func (h *BudgetHandler) Create(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	period, _ := models.ParseBudgetPeriod(req.Period)
	category := strings.TrimSpace(req.Category)
	if !containsString(h.Categories.List(email), category) {
		return badRequest(c, "unknown category")
	}
	if _, err := h.Budgets.Get(email, category, period); err == nil {
		return conflict(c, "category already has a "+string(period)+" budget")
	}

	return h.save(c, email, category, period, req.Limit, req.Currency, http.StatusCreated)
}

// Update задает лимит бюджета категории в периоде, создавая его при отсутствии.
// Категория должна быть в наборе пользователя.
func (h *BudgetHandler) Update(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	period, category, err := budgetKey(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req BudgetLimitRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}
	if !containsString(h.Categories.List(email), category) {
		return badRequest(c, "unknown category")
	}

	return h.save(c, email, category, period, req.Limit, req.Currency, http.StatusOK)
}

// Delete удаляет бюджет. Отсутствующий бюджет не считается ошибкой.
func (h *BudgetHandler) Delete(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	period, category, err := budgetKey(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if h.Budgets.Delete(email, category, period) {
		publish(h.Notifier, email, notifications.EventBudgetsChanged, map[string]string{"action": "deleted", "category": category, "period": string(period)})
		h.Activity.Log(c.Request().Context(), "User '%s' deleted the %s budget for \"%s\".", email, period, category)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *BudgetHandler) save(c echo.Context, email, category string, period models.BudgetPeriod, rawLimit, requestedCurrency string, status int) error {
	limit, err := parseAmount(rawLimit)
	if err != nil {
		return badRequest(c, strings.Replace(err.Error(), "amount", "limit", 1))
	}

	code, err := resolveCurrency(h.Converter.Table(), requestedCurrency, h.Preferences.Currency(email))
	if err != nil {
		return badRequest(c, "unknown currency")
	}

	base, err := h.Converter.ToBase(limit, code)
	if err != nil {
		return badRequest(c, "unknown currency")
	}

	budget, _, err := h.Budgets.Upsert(email, models.Budget{Category: category, Limit: base, Period: period})
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}

	publish(h.Notifier, email, notifications.EventBudgetsChanged, map[string]string{"action": "saved", "category": category, "period": string(period)})

	formatted, _ := h.Converter.Format(limit, code)
	h.Activity.Log(c.Request().Context(), "User '%s' saved a %s budget for \"%s\" of %s.", email, period, category, formatted)

	overview := stats.BudgetOverview([]models.Budget{budget}, h.Expenses.List(email), h.Now())
	response, err := h.toResponse(overview[0], h.Preferences.Currency(email))
	if err != nil {
		return serverError(c)
	}

	return c.JSON(status, response)
}

func (h *BudgetHandler) toResponse(status stats.BudgetStatus, code string) (BudgetResponse, error) {
	limit, err := toMoney(h.Converter, status.Budget.Limit, code)
	if err != nil {
		return BudgetResponse{}, err
	}
	spent, err := toMoney(h.Converter, status.Progress.Spent, code)
	if err != nil {
		return BudgetResponse{}, err
	}
	remaining, err := toMoney(h.Converter, status.Progress.Remaining, code)
	if err != nil {
		return BudgetResponse{}, err
	}

	return BudgetResponse{
		Category:       status.Budget.Category,
		Period:         string(status.Budget.Period),
		Limit:          limit,
		Spent:          spent,
		Remaining:      remaining,
		Percent:        status.Progress.Percent.StringFixed(2),
		DisplayPercent: status.Progress.DisplayPercent.StringFixed(2),
		IsOverBudget:   status.Progress.IsOverBudget,
	}, nil
}

func budgetKey(c echo.Context) (models.BudgetPeriod, string, error) {
	period, ok := models.ParseBudgetPeriod(c.Param("period"))
	if !ok {
		return "", "", errors.New("period must be monthly or yearly")
	}

	// Echo разбирает путь по RawPath, только если в нем есть экранирование, которое
	// нельзя восстановить из Path (например %2F). Иначе параметр уже декодирован.
	category := c.Param("category")
	if c.Request().URL.RawPath != "" {
		unescaped, err := url.PathUnescape(category)
		if err != nil {
			return "", "", errors.New("invalid category")
		}
		category = unescaped
	}
	if strings.TrimSpace(category) == "" {
		return "", "", errors.New("invalid category")
	}

	return period, strings.TrimSpace(category), nil
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
