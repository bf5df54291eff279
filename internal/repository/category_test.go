package repository

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/expense-tracker/internal/models"
)

func TestCategoryRepositorySeedsSortedDefaults(t *testing.T) {
	repo := NewCategoryRepository(models.DefaultCategories)

	list := repo.List("a@example.com")
	assert.Len(t, list, len(models.DefaultCategories))
	assert.True(t, sort.StringsAreSorted(list))
	assert.Equal(t, "Bills", list[0])
}

func TestCategoryRepositoryAdd(t *testing.T) {
	repo := NewCategoryRepository([]string{"Rent", "Bills"})
	owner := "a@example.com"

	name, err := repo.Add(owner, "  Coffee ")
	require.NoError(t, err)
	assert.Equal(t, "Coffee", name)
	assert.Equal(t, []string{"Bills", "Coffee", "Rent"}, repo.List(owner))

	_, err = repo.Add(owner, "Coffee")
	assert.True(t, errors.Is(err, ErrConflict))

	_, err = repo.Add(owner, "")
	assert.True(t, errors.Is(err, ErrInvalid))

	assert.Equal(t, []string{"Bills", "Rent"}, repo.List("b@example.com"))
}

func TestCategoryRepositoryEnsure(t *testing.T) {
	repo := NewCategoryRepository([]string{"Rent"})
	owner := "a@example.com"

	assert.True(t, repo.Ensure(owner, "Travel"))
	assert.False(t, repo.Ensure(owner, "Travel"))
	assert.False(t, repo.Ensure(owner, "Rent"))
	assert.Equal(t, []string{"Rent", "Travel"}, repo.List(owner))
}

func TestCategoryRepositoryListIsCopy(t *testing.T) {
	repo := NewCategoryRepository([]string{"Rent"})
	list := repo.List("a@example.com")
	list[0] = "Changed"

	assert.Equal(t, []string{"Rent"}, repo.List("a@example.com"))
}
