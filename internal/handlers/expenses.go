package handlers

import (
	"errors"
	"log/slog"
	"net/http"
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

const upcomingLimit = 5

type ExpenseHandler struct {
	Expenses    *repository.ExpenseRepository
	Categories  *repository.CategoryRepository
	Preferences *repository.PreferenceRepository
	Converter   *currency.Converter
	Notifier    *notifications.Hub
	Activity    *activity.Logger
	Now         func() time.Time
}

// NewExpenseHandler создает обработчик расходов.
func NewExpenseHandler(
	expenses *repository.ExpenseRepository,
	categories *repository.CategoryRepository,
	preferences *repository.PreferenceRepository,
	converter *currency.Converter,
	notifier *notifications.Hub,
	activityLog *activity.Logger,
) *ExpenseHandler {
	return &ExpenseHandler{
		Expenses:    expenses,
		Categories:  categories,
		Preferences: preferences,
		Converter:   converter,
		Notifier:    notifier,
		Activity:    activityLog,
		Now:         time.Now,
	}
}

type ExpenseRequest struct {
	Description string `json:"description" validate:"required,max=200"`
	Amount      string `json:"amount" validate:"required"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
	Date        string `json:"date" validate:"required"`
	Category    string `json:"category" validate:"required,max=50"`
	IsRecurring bool   `json:"is_recurring"`
}

type ExpenseResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      Money     `json:"amount"`
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	IsRecurring bool      `json:"is_recurring"`
	CreatedAt   time.Time `json:"created_at"`
}

type ExpenseListResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Total    Money             `json:"total"`
}

type UpcomingResponse struct {
	Expense     ExpenseResponse `json:"expense"`
	NextDueDate string          `json:"next_due_date"`
}

type UpcomingListResponse struct {
	Payments []UpcomingResponse `json:"payments"`
}

// List возвращает расходы пользователя, новые даты первыми.
func (h *ExpenseHandler) List(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	code := h.Preferences.Currency(email)
	expenses := h.Expenses.List(email)

	items := make([]ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		item, err := h.toResponse(expense, code)
		if err != nil {
			return serverError(c)
		}
		items = append(items, item)
	}

	total, err := toMoney(h.Converter, stats.Total(expenses), code)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, ExpenseListResponse{Expenses: items, Total: total})
}

// Create добавляет расход. Сумма вводится в валюте отображения и хранится в базовой.
func (h *ExpenseHandler) Create(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	description := strings.TrimSpace(req.Description)
	category := strings.TrimSpace(req.Category)
	if description == "" || category == "" {
		return badRequest(c, "description and category are required")
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return badRequest(c, err.Error())
	}

	date, err := parseExpenseDate(req.Date, h.Now())
	if err != nil {
		return badRequest(c, err.Error())
	}

	code, err := resolveCurrency(h.Converter.Table(), req.Currency, h.Preferences.Currency(email))
	if err != nil {
		return badRequest(c, "unknown currency")
	}

	base, err := h.Converter.ToBase(amount, code)
	if err != nil {
		return badRequest(c, "unknown currency")
	}

	expense, err := h.Expenses.Add(email, models.ExpenseInput{
		Description: description,
		Amount:      base,
		Date:        date,
		Category:    category,
		IsRecurring: req.IsRecurring,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}

	ctx := c.Request().Context()
	if h.Categories.Ensure(email, category) {
		publish(h.Notifier, email, notifications.EventCategoriesChanged, map[string]string{"category": category})
	}
	publish(h.Notifier, email, notifications.EventExpensesChanged, map[string]string{"action": "created", "id": expense.ID})

	formatted, _ := h.Converter.Format(amount, code)
	h.Activity.Log(ctx, "User '%s' added expense: \"%s\" for %s.", email, expense.Description, formatted)

	response, err := h.toResponse(expense, h.Preferences.Currency(email))
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, response)
}

// Delete удаляет расход. Отсутствующий id не считается ошибкой.
func (h *ExpenseHandler) Delete(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return badRequest(c, "invalid expense id")
	}

	removed, found := h.Expenses.Delete(email, id)
	if !found {
		slog.DebugContext(c.Request().Context(), "expense already absent", slog.String("id", id))
		return c.NoContent(http.StatusNoContent)
	}

	publish(h.Notifier, email, notifications.EventExpensesChanged, map[string]string{"action": "deleted", "id": removed.ID})
	h.Activity.Log(c.Request().Context(), "User '%s' deleted expense: \"%s\".", email, removed.Description)

	return c.NoContent(http.StatusNoContent)
}

// Upcoming возвращает ближайшие платежи по повторяющимся расходам.
func (h *ExpenseHandler) Upcoming(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	code := h.Preferences.Currency(email)
	upcoming := stats.UpcomingPayments(h.Expenses.ListRecurring(email), h.Now(), upcomingLimit)

	payments := make([]UpcomingResponse, 0, len(upcoming))
	for _, item := range upcoming {
		expense, err := h.toResponse(item.Expense, code)
		if err != nil {
			return serverError(c)
		}
		payments = append(payments, UpcomingResponse{
			Expense:     expense,
			NextDueDate: item.NextDueDate.Format(dateLayout),
		})
	}

	return c.JSON(http.StatusOK, UpcomingListResponse{Payments: payments})
}

func (h *ExpenseHandler) toResponse(expense models.Expense, code string) (ExpenseResponse, error) {
	amount, err := toMoney(h.Converter, expense.Amount, code)
	if err != nil {
		return ExpenseResponse{}, err
	}

	return ExpenseResponse{
		ID:          expense.ID,
		Description: expense.Description,
		Amount:      amount,
		Date:        expense.Date.Format(dateLayout),
		Category:    expense.Category,
		IsRecurring: expense.IsRecurring,
		CreatedAt:   expense.CreatedAt,
	}, nil
}
