package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/expense-tracker/internal/models"
)

// FileUserRepository хранит пользователей одним JSON-документом.
// Документ читается целиком при открытии и перезаписывается целиком при каждой регистрации.
type FileUserRepository struct {
	mu      sync.RWMutex
	path    string
	users   []models.User
	byEmail map[string]int
	now     func() time.Time
}

// NewFileUserRepository открывает файл пользователей. Отсутствующий файл означает,
// что пользователей еще нет; остальные ошибки чтения возвращаются.
func NewFileUserRepository(path string) (*FileUserRepository, error) {
	repo := &FileUserRepository{
		path:    path,
		byEmail: make(map[string]int),
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return repo, nil
		}
		return nil, fmt.Errorf("read users file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &repo.users); err != nil {
			return nil, fmt.Errorf("decode users file: %w", err)
		}
	}

	for i, user := range repo.users {
		repo.byEmail[normalizeEmail(user.Email)] = i
	}

	return repo, nil
}

// GetByEmail возвращает пользователя по email.
func (r *FileUserRepository) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return r.users[idx], nil
}

// Create добавляет пользователя и перезаписывает файл.
func (r *FileUserRepository) Create(_ context.Context, email, passwordHash string) (models.User, error) {
	key := normalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[key]; exists {
		return models.User{}, ErrConflict
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        key,
		PasswordHash: passwordHash,
		CreatedAt:    r.now().UTC(),
	}

	users := append(r.users[:len(r.users):len(r.users)], user)
	if err := writeUsersFile(r.path, users); err != nil {
		return models.User{}, err
	}

	r.users = users
	r.byEmail[key] = len(users) - 1
	return user, nil
}

func writeUsersFile(path string, users []models.User) error {
	payload, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create users directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return fmt.Errorf("create temp users file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write users file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close users file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}

	return nil
}
