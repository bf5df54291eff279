package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"example.com/expense-tracker/internal/repository"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()

	users, err := repository.NewFileUserRepository(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)

	authenticator := NewAuthenticator(users)
	authenticator.cost = bcrypt.MinCost
	return authenticator
}

func TestAuthenticatorRegisterAndVerify(t *testing.T) {
	ctx := context.Background()
	authenticator := newTestAuthenticator(t)

	user, err := authenticator.Register(ctx, " A@Example.com ", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
	assert.NotEqual(t, "s3cret!", user.PasswordHash)

	verified, err := authenticator.Verify(ctx, "a@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
}

func TestAuthenticatorRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	authenticator := newTestAuthenticator(t)

	_, err := authenticator.Register(ctx, "a@example.com", "s3cret!")
	require.NoError(t, err)

	_, err = authenticator.Verify(ctx, "a@example.com", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = authenticator.Verify(ctx, "nobody@example.com", "s3cret!")
	assert.True(t, errors.Is(err, ErrInvalidCredentials), "неизвестный email неотличим от неверного пароля")
}

func TestAuthenticatorDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	authenticator := newTestAuthenticator(t)

	_, err := authenticator.Register(ctx, "a@example.com", "one")
	require.NoError(t, err)

	_, err = authenticator.Register(ctx, "A@EXAMPLE.COM", "two")
	assert.True(t, errors.Is(err, ErrEmailTaken))
}
