package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/expense-tracker/internal/currency"
	"example.com/expense-tracker/internal/notifications"
	"example.com/expense-tracker/internal/repository"
)

type CurrencyHandler struct {
	Converter   *currency.Converter
	Preferences *repository.PreferenceRepository
	Notifier    *notifications.Hub
}

// NewCurrencyHandler создает обработчик валют и валюты отображения.
func NewCurrencyHandler(converter *currency.Converter, preferences *repository.PreferenceRepository, notifier *notifications.Hub) *CurrencyHandler {
	return &CurrencyHandler{Converter: converter, Preferences: preferences, Notifier: notifier}
}

type CurrencyResponse struct {
	Code   string `json:"code"`
	Rate   string `json:"rate"`
	Symbol string `json:"symbol"`
}

type CurrencyListResponse struct {
	Base       string             `json:"base"`
	Currencies []CurrencyResponse `json:"currencies"`
}

type CurrencyPreferenceRequest struct {
	Currency string `json:"currency" validate:"required,len=3"`
}

type CurrencyPreferenceResponse struct {
	Currency string `json:"currency"`
	Symbol   string `json:"symbol"`
}

// List возвращает таблицу валют.
func (h *CurrencyHandler) List(c echo.Context) error {
	table := h.Converter.Table()
	all := table.All()

	items := make([]CurrencyResponse, 0, len(all))
	for _, cur := range all {
		items = append(items, CurrencyResponse{Code: cur.Code, Rate: cur.Rate.String(), Symbol: cur.Symbol})
	}

	return c.JSON(http.StatusOK, CurrencyListResponse{Base: currency.BaseCode, Currencies: items})
}

// GetPreference возвращает валюту отображения пользователя.
func (h *CurrencyHandler) GetPreference(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	return h.respondPreference(c, h.Preferences.Currency(email))
}

// SetPreference меняет валюту отображения. Хранимые суммы не пересчитываются.
func (h *CurrencyHandler) SetPreference(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req CurrencyPreferenceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	code, err := resolveCurrency(h.Converter.Table(), req.Currency, "")
	if err != nil {
		return badRequest(c, "unknown currency")
	}

	h.Preferences.SetCurrency(email, code)
	publish(h.Notifier, email, notifications.EventPreferencesChanged, map[string]string{"currency": code})

	return h.respondPreference(c, code)
}

func (h *CurrencyHandler) respondPreference(c echo.Context, code string) error {
	cur, err := h.Converter.Table().Lookup(code)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, CurrencyPreferenceResponse{Currency: cur.Code, Symbol: cur.Symbol})
}
