package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BudgetPeriod string

type SummaryPeriodID string

const (
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"

	SummaryToday       SummaryPeriodID = "today"
	SummaryThisWeek    SummaryPeriodID = "this_week"
	SummaryThisMonth   SummaryPeriodID = "this_month"
	SummaryThisYear    SummaryPeriodID = "this_year"
	SummaryCustomRange SummaryPeriodID = "custom_range"
)

// DefaultCategories задает набор категорий нового пользователя.
var DefaultCategories = []string{
	"Groceries",
	"Bills",
	"Rent",
	"Dining",
	"EMI",
	"Transport",
	"Health",
	"Entertainment",
	"Other",
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expense хранит сумму всегда в базовой валюте.
type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	IsRecurring bool            `json:"is_recurring"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ExpenseInput struct {
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	Category    string
	IsRecurring bool
}

type Budget struct {
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Period   BudgetPeriod    `json:"period"`
}

type SummaryPeriod struct {
	ID    SummaryPeriodID `json:"id"`
	Label string          `json:"label"`
	Icon  string          `json:"icon,omitempty"`
}

// PermanentSummaries всегда отображаются в сводке.
var PermanentSummaries = []SummaryPeriod{
	{ID: SummaryToday, Label: "Today's Spending", Icon: "dollar-sign"},
	{ID: SummaryThisMonth, Label: "This Month's Spending", Icon: "bar-chart-big"},
}

// AdditionalSummaries пользователь может включать и выключать.
var AdditionalSummaries = []SummaryPeriod{
	{ID: SummaryThisWeek, Label: "This Week's Spending", Icon: "calendar-days"},
	{ID: SummaryThisYear, Label: "This Year's Spending", Icon: "calendar"},
	{ID: SummaryCustomRange, Label: "Custom Range", Icon: "calendar-range"},
}

// ParseBudgetPeriod проверяет значение периода бюджета.
func ParseBudgetPeriod(value string) (BudgetPeriod, bool) {
	switch BudgetPeriod(value) {
	case BudgetPeriodMonthly, BudgetPeriodYearly:
		return BudgetPeriod(value), true
	default:
		return "", false
	}
}

// LookupAdditionalSummary возвращает описание дополнительного периода сводки.
func LookupAdditionalSummary(id string) (SummaryPeriod, bool) {
	for _, period := range AdditionalSummaries {
		if string(period.ID) == id {
			return period, true
		}
	}
	return SummaryPeriod{}, false
}
