package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/expense-tracker/internal/models"
)

func TestSummaryListPermanentPeriods(t *testing.T) {
	e := newTestEcho()
	stores := newTestStores()
	h := stores.summaryHandler()

	seedExpense(t, stores, "Dining", "12", "2024-03-15")
	seedExpense(t, stores, "Bills", "40", "2024-03-01")
	seedExpense(t, stores, "Bills", "99", "2024-02-28")

	resp := decode[SummaryListResponse](t, serve(t, e, request{method: http.MethodGet, target: "/", user: testEmail}, h.List))
	require.Len(t, resp.Summaries, 2)
	assert.Equal(t, "today", resp.Summaries[0].ID)
	assert.Equal(t, "$12.00", resp.Summaries[0].Total.Formatted)
	assert.Equal(t, "this_month", resp.Summaries[1].ID)
	assert.Equal(t, "$52.00", resp.Summaries[1].Total.Formatted)
	assert.Len(t, resp.Available, len(models.AdditionalSummaries))
}

func TestSummaryCustomRange(t *testing.T) {
	e := newTestEcho()
	stores := newTestStores()
	h := stores.summaryHandler()

	seedExpense(t, stores, "Dining", "10", "2024-01-31")
	seedExpense(t, stores, "Dining", "20", "2024-02-10")
	seedExpense(t, stores, "Dining", "40", "2024-02-29")

	rec := serve(t, e, request{method: http.MethodPost, target: "/", body: `{"id":"custom_range"}`, user: testEmail}, h.EnablePeriod)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[SummaryListResponse](t, serve(t, e, request{method: http.MethodGet, target: "/?from=2024-02-01&to=2024-02-29", user: testEmail}, h.List))
	require.Len(t, resp.Summaries, 3)
	custom := resp.Summaries[2]
	assert.Equal(t, "custom_range", custom.ID)
	assert.Equal(t, "$60.00", custom.Total.Formatted)
	assert.Equal(t, "2024-02-01", custom.From)
	assert.Equal(t, "2024-02-29", custom.To)

	resp = decode[SummaryListResponse](t, serve(t, e, request{method: http.MethodGet, target: "/", user: testEmail}, h.List))
	assert.Equal(t, "$0.00", resp.Summaries[2].Total.Formatted)
	assert.Empty(t, resp.Summaries[2].From)

	rec = serve(t, e, request{method: http.MethodDelete, target: "/", user: testEmail, params: map[string]string{"id": "custom_range"}}, h.DisablePeriod)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, stores.preferences.AdditionalSummaries(testEmail))
}

func TestSummaryRejectsUnknownPeriods(t *testing.T) {
	e := newTestEcho()
	h := newTestStores().summaryHandler()

	rec := serve(t, e, request{method: http.MethodPost, target: "/", body: `{"id":"today"}`, user: testEmail}, h.EnablePeriod)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, e, request{method: http.MethodDelete, target: "/", user: testEmail, params: map[string]string{"id": "fortnight"}}, h.DisablePeriod)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, e, request{method: http.MethodGet, target: "/?from=2024-02-10&to=2024-02-01", user: testEmail}, h.List)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryChart(t *testing.T) {
	e := newTestEcho()
	stores := newTestStores()
	h := stores.summaryHandler()

	seedExpense(t, stores, "Dining", "12", "2024-03-03")
	seedExpense(t, stores, "Bills", "40", "2024-03-01")
	seedExpense(t, stores, "Dining", "8", "2024-03-04")
	seedExpense(t, stores, "Groceries", "500", "2024-02-01")

	resp := decode[ChartResponse](t, serve(t, e, request{method: http.MethodGet, target: "/", user: testEmail}, h.Chart))
	assert.Equal(t, "this_month", resp.Period)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Bills", resp.Items[0].Category)
	assert.Equal(t, "40.00", resp.Items[0].Value.Amount)
	assert.Equal(t, "Dining", resp.Items[1].Category)
	assert.Equal(t, "20.00", resp.Items[1].Value.Amount)
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantNil bool
		wantErr bool
	}{
		{name: "empty", wantNil: true},
		{name: "valid", from: "2024-01-01", to: "2024-01-31"},
		{name: "same day", from: "2024-01-01", to: "2024-01-01"},
		{name: "missing to", from: "2024-01-01", wantErr: true},
		{name: "reversed", from: "2024-02-01", to: "2024-01-01", wantErr: true},
		{name: "bad format", from: "01.01.2024", to: "2024-01-31", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, err := parseRange(tt.from, tt.to, time.UTC)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, rng)
				return
			}
			require.NotNil(t, rng)
			assert.False(t, rng.To.Before(rng.From))
		})
	}
}
