package repository

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/expense-tracker/internal/models"
)

type storedExpense struct {
	expense models.Expense
	seq     uint64
}

// ExpenseRepository хранит расходы пользователей в памяти процесса.
// Список каждого пользователя всегда отсортирован по дате по убыванию,
// расходы с одинаковой датой идут в порядке добавления.
type ExpenseRepository struct {
	mu      sync.RWMutex
	seq     uint64
	byOwner map[string][]storedExpense
	now     func() time.Time
}

// NewExpenseRepository создает репозиторий расходов.
func NewExpenseRepository() *ExpenseRepository {
	return &ExpenseRepository{
		byOwner: make(map[string][]storedExpense),
		now:     time.Now,
	}
}

// Add сохраняет расход, назначая ему идентификатор.
func (r *ExpenseRepository) Add(owner string, input models.ExpenseInput) (models.Expense, error) {
	if input.Amount.IsNegative() {
		return models.Expense{}, fmt.Errorf("%w: amount must not be negative", ErrInvalid)
	}
	if strings.TrimSpace(input.Category) == "" {
		return models.Expense{}, fmt.Errorf("%w: category is required", ErrInvalid)
	}

	expense := models.Expense{
		ID:          uuid.NewString(),
		Description: input.Description,
		Amount:      input.Amount,
		Date:        input.Date,
		Category:    input.Category,
		IsRecurring: input.IsRecurring,
		CreatedAt:   r.now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	list := append(r.byOwner[owner], storedExpense{expense: expense, seq: r.seq})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].expense.Date.Equal(list[j].expense.Date) {
			return list[i].expense.Date.After(list[j].expense.Date)
		}
		return list[i].seq < list[j].seq
	})
	r.byOwner[owner] = list

	return expense, nil
}

// Delete удаляет расход. Отсутствующий расход не считается ошибкой.
func (r *ExpenseRepository) Delete(owner, id string) (models.Expense, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byOwner[owner]
	for i, stored := range list {
		if stored.expense.ID != id {
			continue
		}
		r.byOwner[owner] = append(list[:i:i], list[i+1:]...)
		return stored.expense, true
	}

	return models.Expense{}, false
}

// List возвращает копию расходов пользователя.
func (r *ExpenseRepository) List(owner string) []models.Expense {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byOwner[owner]
	out := make([]models.Expense, 0, len(list))
	for _, stored := range list {
		out = append(out, stored.expense)
	}
	return out
}

// ListRecurring возвращает только регулярные расходы.
func (r *ExpenseRepository) ListRecurring(owner string) []models.Expense {
	all := r.List(owner)
	out := make([]models.Expense, 0)
	for _, expense := range all {
		if expense.IsRecurring {
			out = append(out, expense)
		}
	}
	return out
}
