package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"example.com/expense-tracker/internal/currency"
)

const (
	dateLayout   = "2006-01-02"
	earliestYear = 1900
)

// Money описывает сумму в валюте отображения пользователя.
type Money struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
}

func toMoney(converter *currency.Converter, base decimal.Decimal, code string) (Money, error) {
	display, err := converter.ToDisplay(base, code)
	if err != nil {
		return Money{}, err
	}

	formatted, err := converter.Format(display, code)
	if err != nil {
		return Money{}, err
	}

	return Money{
		Amount:    display.StringFixed(2),
		Currency:  code,
		Formatted: formatted,
	}, nil
}

// parseAmount разбирает положительную сумму, введенную пользователем.
func parseAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount")
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be greater than 0")
	}
	return amount, nil
}

// parseExpenseDate разбирает дату YYYY-MM-DD в зоне now: не в будущем и не раньше 1900-01-01.
func parseExpenseDate(value string, now time.Time) (time.Time, error) {
	date, err := parseDate(value, now.Location())
	if err != nil {
		return time.Time{}, err
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if date.After(today) {
		return time.Time{}, fmt.Errorf("date cannot be in the future")
	}
	if date.Year() < earliestYear {
		return time.Time{}, fmt.Errorf("date cannot be before 1900-01-01")
	}

	return date, nil
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected YYYY-MM-DD")
	}
	return date, nil
}

// resolveCurrency возвращает код валюты из запроса или предпочтение пользователя.
func resolveCurrency(table currency.Table, requested, preferred string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(requested))
	if code == "" {
		code = preferred
	}
	if _, err := table.Lookup(code); err != nil {
		return "", err
	}
	return code, nil
}
