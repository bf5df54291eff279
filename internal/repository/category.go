package repository

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// CategoryRepository хранит отсортированный набор категорий без повторов.
// Категории только добавляются.
type CategoryRepository struct {
	mu       sync.RWMutex
	defaults []string
	byOwner  map[string][]string
}

// NewCategoryRepository создает репозиторий; новый пользователь получает defaults.
func NewCategoryRepository(defaults []string) *CategoryRepository {
	seeded := normalizeCategories(defaults)
	return &CategoryRepository{
		defaults: seeded,
		byOwner:  make(map[string][]string),
	}
}

// List возвращает категории пользователя.
func (r *CategoryRepository) List(owner string) []string {
	r.mu.RLock()
	list, ok := r.byOwner[owner]
	r.mu.RUnlock()

	if !ok {
		list = r.defaults
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Add добавляет категорию. Существующая категория дает ErrConflict.
func (r *CategoryRepository) Add(owner, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: category name is required", ErrInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.ownerList(owner)
	idx := sort.SearchStrings(list, name)
	if idx < len(list) && list[idx] == name {
		return "", ErrConflict
	}

	list = append(list, "")
	copy(list[idx+1:], list[idx:])
	list[idx] = name
	r.byOwner[owner] = list
	return name, nil
}

// Ensure добавляет категорию, если ее еще нет. Возвращает true при добавлении.
func (r *CategoryRepository) Ensure(owner, name string) bool {
	_, err := r.Add(owner, name)
	return err == nil
}

func (r *CategoryRepository) ownerList(owner string) []string {
	list, ok := r.byOwner[owner]
	if ok {
		return list
	}
	list = make([]string, len(r.defaults))
	copy(list, r.defaults)
	r.byOwner[owner] = list
	return list
}

func normalizeCategories(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	sort.Strings(out)
	return out
}
