package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/expense-tracker/internal/currency"
	"example.com/expense-tracker/internal/models"
	"example.com/expense-tracker/internal/notifications"
	"example.com/expense-tracker/internal/repository"
	"example.com/expense-tracker/internal/stats"
)

type SummaryHandler struct {
	Expenses    *repository.ExpenseRepository
	Preferences *repository.PreferenceRepository
	Converter   *currency.Converter
	Notifier    *notifications.Hub
	Now         func() time.Time
}

// NewSummaryHandler создает обработчик сводок и диаграммы.
func NewSummaryHandler(expenses *repository.ExpenseRepository, preferences *repository.PreferenceRepository, converter *currency.Converter, notifier *notifications.Hub) *SummaryHandler {
	return &SummaryHandler{
		Expenses:    expenses,
		Preferences: preferences,
		Converter:   converter,
		Notifier:    notifier,
		Now:         time.Now,
	}
}

type SummaryPeriodRequest struct {
	ID string `json:"id" validate:"required"`
}

type SummaryResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Total Money  `json:"total"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

type SummaryListResponse struct {
	Summaries []SummaryResponse       `json:"summaries"`
	Available []models.SummaryPeriod `json:"available"`
}

type ChartItem struct {
	Category string `json:"category"`
	Value    Money  `json:"value"`
}

type ChartResponse struct {
	Period string      `json:"period"`
	Items  []ChartItem `json:"items"`
}

// List возвращает итоги по постоянным и включенным периодам.
// Интервал custom_range задается параметрами from и to (YYYY-MM-DD).
func (h *SummaryHandler) List(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	now := h.Now()
	custom, err := parseRange(c.QueryParam("from"), c.QueryParam("to"), now.Location())
	if err != nil {
		return badRequest(c, err.Error())
	}

	code := h.Preferences.Currency(email)
	enabled := h.Preferences.AdditionalSummaries(email)
	totals := stats.Summaries(h.Expenses.List(email), enabled, now, custom)

	summaries := make([]SummaryResponse, 0, len(totals))
	for _, total := range totals {
		money, err := toMoney(h.Converter, total.Total, code)
		if err != nil {
			return serverError(c)
		}

		item := SummaryResponse{
			ID:    string(total.Period.ID),
			Label: total.Period.Label,
			Icon:  total.Period.Icon,
			Total: money,
		}
		if total.Range != nil {
			item.From = total.Range.From.Format(dateLayout)
			item.To = total.Range.To.Format(dateLayout)
		}
		summaries = append(summaries, item)
	}

	return c.JSON(http.StatusOK, SummaryListResponse{
		Summaries: summaries,
		Available: availableSummaries(enabled),
	})
}

// EnablePeriod включает дополнительный период сводки.
func (h *SummaryHandler) EnablePeriod(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req SummaryPeriodRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	period, ok := models.LookupAdditionalSummary(strings.TrimSpace(req.ID))
	if !ok {
		return badRequest(c, "unknown summary period")
	}

	if h.Preferences.AddSummary(email, period) {
		publish(h.Notifier, email, notifications.EventPreferencesChanged, map[string]string{"summary_enabled": string(period.ID)})
	}

	return c.JSON(http.StatusOK, h.Preferences.AdditionalSummaries(email))
}

// DisablePeriod выключает дополнительный период сводки.
func (h *SummaryHandler) DisablePeriod(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	period, ok := models.LookupAdditionalSummary(strings.TrimSpace(c.Param("id")))
	if !ok {
		return badRequest(c, "unknown summary period")
	}

	if h.Preferences.RemoveSummary(email, period.ID) {
		publish(h.Notifier, email, notifications.EventPreferencesChanged, map[string]string{"summary_disabled": string(period.ID)})
	}

	return c.NoContent(http.StatusNoContent)
}

// Chart возвращает траты текущего месяца по категориям, по убыванию.
func (h *SummaryHandler) Chart(c echo.Context) error {
	email, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	code := h.Preferences.Currency(email)
	breakdown := stats.ChartBreakdown(h.Expenses.List(email), stats.ThisMonth(h.Now()))

	items := make([]ChartItem, 0, len(breakdown))
	for _, entry := range breakdown {
		value, err := toMoney(h.Converter, entry.Value, code)
		if err != nil {
			return serverError(c)
		}
		items = append(items, ChartItem{Category: entry.Category, Value: value})
	}

	return c.JSON(http.StatusOK, ChartResponse{Period: string(models.SummaryThisMonth), Items: items})
}

// parseRange разбирает интервал; пустые from и to означают отсутствие интервала.
func parseRange(fromValue, toValue string, loc *time.Location) (*stats.Range, error) {
	fromValue = strings.TrimSpace(fromValue)
	toValue = strings.TrimSpace(toValue)
	if fromValue == "" && toValue == "" {
		return nil, nil
	}
	if fromValue == "" || toValue == "" {
		return nil, errors.New("both from and to are required")
	}

	from, err := parseDate(fromValue, loc)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(toValue, loc)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, errors.New("to must not be before from")
	}

	return &stats.Range{From: from, To: to}, nil
}

func availableSummaries(enabled []models.SummaryPeriod) []models.SummaryPeriod {
	out := make([]models.SummaryPeriod, 0, len(models.AdditionalSummaries))
	for _, period := range models.AdditionalSummaries {
		taken := false
		for _, existing := range enabled {
			if existing.ID == period.ID {
				taken = true
				break
			}
		}
		if !taken {
			out = append(out, period)
		}
	}
	return out
}
