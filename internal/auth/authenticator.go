package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"example.com/expense-tracker/internal/models"
	"example.com/expense-tracker/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// Authenticator проверяет учетные данные поверх хранилища пользователей.
type Authenticator struct {
	users repository.UserStore
	cost  int

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator создает сервис проверки учетных данных.
func NewAuthenticator(users repository.UserStore) *Authenticator {
	return &Authenticator{users: users, cost: bcrypt.DefaultCost}
}

// Register создает пользователя с bcrypt-хэшем пароля.
func (a *Authenticator) Register(ctx context.Context, email, password string) (models.User, error) {
	hash, err := hashPasswordCost(password, a.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := a.users.Create(ctx, NormalizeEmail(email), hash)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Verify проверяет пароль пользователя. Для неизвестного email сравнение все равно
// выполняется с фиктивным хэшем, чтобы время ответа не выдавало наличие аккаунта.
func (a *Authenticator) Verify(ctx context.Context, email, password string) (models.User, error) {
	user, err := a.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = ComparePassword(a.fallbackHash(), password)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

func (a *Authenticator) fallbackHash() string {
	a.dummyOnce.Do(func() {
		hash, err := hashPasswordCost("expense-tracker-placeholder", a.cost)
		if err == nil {
			a.dummyHash = hash
		}
	})
	return a.dummyHash
}

// NormalizeEmail приводит email к нижнему регистру без пробелов.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
