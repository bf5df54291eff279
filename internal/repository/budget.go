package repository

import (
	"fmt"
	"strings"
	"sync"

	"example.com/expense-tracker/internal/models"
)

// BudgetRepository хранит не более одного бюджета на пару (категория, период).
type BudgetRepository struct {
	mu      sync.RWMutex
	byOwner map[string][]models.Budget
}

// NewBudgetRepository создает репозиторий бюджетов.
func NewBudgetRepository() *BudgetRepository {
	return &BudgetRepository{byOwner: make(map[string][]models.Budget)}
}

// Upsert заменяет лимит существующего бюджета или добавляет новый.
// Второй результат true, если бюджет создан.
func (r *BudgetRepository) Upsert(owner string, budget models.Budget) (models.Budget, bool, error) {
	budget.Category = strings.TrimSpace(budget.Category)
	if budget.Category == "" {
		return models.Budget{}, false, fmt.Errorf("%w: category is required", ErrInvalid)
	}
	if !budget.Limit.IsPositive() {
		return models.Budget{}, false, fmt.Errorf("%w: limit must be positive", ErrInvalid)
	}
	if _, ok := models.ParseBudgetPeriod(string(budget.Period)); !ok {
		return models.Budget{}, false, fmt.Errorf("%w: unknown period %q", ErrInvalid, budget.Period)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byOwner[owner]
	for i := range list {
		if list[i].Category == budget.Category && list[i].Period == budget.Period {
			list[i].Limit = budget.Limit
			return list[i], false, nil
		}
	}

	r.byOwner[owner] = append(list, budget)
	return budget, true, nil
}

// Get возвращает бюджет категории в периоде.
func (r *BudgetRepository) Get(owner, category string, period models.BudgetPeriod) (models.Budget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, budget := range r.byOwner[owner] {
		if budget.Category == category && budget.Period == period {
			return budget, nil
		}
	}
	return models.Budget{}, ErrNotFound
}

// Delete удаляет бюджет. Отсутствующий бюджет не считается ошибкой.
func (r *BudgetRepository) Delete(owner, category string, period models.BudgetPeriod) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byOwner[owner]
	for i, budget := range list {
		if budget.Category == category && budget.Period == period {
			r.byOwner[owner] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// List возвращает бюджеты пользователя, при необходимости только за период.
func (r *BudgetRepository) List(owner string, period *models.BudgetPeriod) []models.Budget {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byOwner[owner]
	out := make([]models.Budget, 0, len(list))
	for _, budget := range list {
		if period != nil && budget.Period != *period {
			continue
		}
		out = append(out, budget)
	}
	return out
}
