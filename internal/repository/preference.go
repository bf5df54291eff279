package repository

import (
	"sync"

	"example.com/expense-tracker/internal/models"
)

type preferences struct {
	currency   string
	additional []models.SummaryPeriod
}

// PreferenceRepository хранит валюту отображения и включенные дополнительные периоды сводки.
type PreferenceRepository struct {
	mu              sync.RWMutex
	defaultCurrency string
	byOwner         map[string]*preferences
}

// NewPreferenceRepository создает репозиторий настроек пользователей.
func NewPreferenceRepository(defaultCurrency string) *PreferenceRepository {
	return &PreferenceRepository{
		defaultCurrency: defaultCurrency,
		byOwner:         make(map[string]*preferences),
	}
}

// Currency возвращает валюту отображения пользователя.
func (r *PreferenceRepository) Currency(owner string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if prefs, ok := r.byOwner[owner]; ok && prefs.currency != "" {
		return prefs.currency
	}
	return r.defaultCurrency
}

// SetCurrency меняет валюту отображения. Код проверяется вызывающей стороной.
func (r *PreferenceRepository) SetCurrency(owner, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ownerPrefs(owner).currency = code
}

// AdditionalSummaries возвращает включенные дополнительные периоды в порядке включения.
func (r *PreferenceRepository) AdditionalSummaries(owner string) []models.SummaryPeriod {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefs, ok := r.byOwner[owner]
	if !ok {
		return []models.SummaryPeriod{}
	}
	out := make([]models.SummaryPeriod, len(prefs.additional))
	copy(out, prefs.additional)
	return out
}

// AddSummary включает период. Повторное включение ничего не меняет и возвращает false.
func (r *PreferenceRepository) AddSummary(owner string, period models.SummaryPeriod) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs := r.ownerPrefs(owner)
	for _, existing := range prefs.additional {
		if existing.ID == period.ID {
			return false
		}
	}
	prefs.additional = append(prefs.additional, period)
	return true
}

// RemoveSummary выключает период. Возвращает false, если он не был включен.
func (r *PreferenceRepository) RemoveSummary(owner string, id models.SummaryPeriodID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs, ok := r.byOwner[owner]
	if !ok {
		return false
	}
	for i, existing := range prefs.additional {
		if existing.ID == id {
			prefs.additional = append(prefs.additional[:i:i], prefs.additional[i+1:]...)
			return true
		}
	}
	return false
}

func (r *PreferenceRepository) ownerPrefs(owner string) *preferences {
	prefs, ok := r.byOwner[owner]
	if !ok {
		prefs = &preferences{}
		r.byOwner[owner] = prefs
	}
	return prefs
}
