package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/expense-tracker/internal/models"
)

func TestPreferenceRepositoryCurrency(t *testing.T) {
	repo := NewPreferenceRepository("INR")
	owner := "a@example.com"

	assert.Equal(t, "INR", repo.Currency(owner))
	repo.SetCurrency(owner, "EUR")
	assert.Equal(t, "EUR", repo.Currency(owner))
	assert.Equal(t, "INR", repo.Currency("b@example.com"))
}

func TestPreferenceRepositorySummariesUnique(t *testing.T) {
	repo := NewPreferenceRepository("USD")
	owner := "a@example.com"
	week, ok := models.LookupAdditionalSummary("this_week")
	require.True(t, ok)
	year, ok := models.LookupAdditionalSummary("this_year")
	require.True(t, ok)

	assert.Empty(t, repo.AdditionalSummaries(owner))
	assert.True(t, repo.AddSummary(owner, week))
	assert.False(t, repo.AddSummary(owner, week))
	assert.True(t, repo.AddSummary(owner, year))

	list := repo.AdditionalSummaries(owner)
	require.Len(t, list, 2)
	assert.Equal(t, models.SummaryThisWeek, list[0].ID)

	assert.True(t, repo.RemoveSummary(owner, models.SummaryThisWeek))
	assert.False(t, repo.RemoveSummary(owner, models.SummaryThisWeek))
	assert.False(t, repo.RemoveSummary("b@example.com", models.SummaryThisYear))
	assert.Len(t, repo.AdditionalSummaries(owner), 1)
}
