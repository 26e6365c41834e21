package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bilancio/internal/core"
	"bilancio/internal/storage/memory"
)

func TestStaticProvider(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	provider, err := NewStaticProvider(ctx, store, "user@localhost")
	require.NoError(t, err)

	// The default user is created on first run
	user, err := store.GetUserByEmail(ctx, "user@localhost")
	require.NoError(t, err)

	identity, err := provider.Authenticate(httptest.NewRequest("GET", "/api/incomes", nil))
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "user@localhost", identity.Email)

	// A second provider reuses the existing user
	again, err := NewStaticProvider(ctx, store, "user@localhost")
	require.NoError(t, err)
	identity2, err := again.Authenticate(httptest.NewRequest("GET", "/api/bills", nil))
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, identity2.UserID)

	// Any credentials log in as the default user
	result, err := provider.Login(ctx, "whoever", "whatever")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.UserID)
}

func TestJWTProvider_LoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	hash, err := HashPassword("s3cret-enough")
	require.NoError(t, err)
	user, err := store.CreateUser(ctx, core.User{Email: "anna@example.com", PasswordHash: hash})
	require.NoError(t, err)

	provider := NewJWTProvider(store, "0123456789abcdef0123456789abcdef", time.Hour)

	result, err := provider.Login(ctx, "anna@example.com", "s3cret-enough")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, time.Minute)

	req := httptest.NewRequest("GET", "/api/incomes", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)

	identity, err := provider.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "anna@example.com", identity.Email)
}

func TestJWTProvider_LoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, core.User{Email: "anna@example.com", PasswordHash: hash})
	require.NoError(t, err)

	provider := NewJWTProvider(store, "0123456789abcdef0123456789abcdef", time.Hour)

	_, err = provider.Login(ctx, "anna@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = provider.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestJWTProvider_AuthenticateRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, core.User{Email: "anna@example.com", PasswordHash: hash})
	require.NoError(t, err)

	provider := NewJWTProvider(store, "0123456789abcdef0123456789abcdef", time.Hour)

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/incomes", nil)
		_, err := provider.Authenticate(req)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("malformed token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/incomes", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		_, err := provider.Authenticate(req)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewJWTProvider(store, "ffffffffffffffffffffffffffffffff", time.Hour)
		result, err := other.Login(ctx, "anna@example.com", "correct-horse")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/incomes", nil)
		req.Header.Set("Authorization", "Bearer "+result.Token)
		_, err = provider.Authenticate(req)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewJWTProvider(store, "0123456789abcdef0123456789abcdef", -time.Hour)
		result, err := expired.Login(ctx, "anna@example.com", "correct-horse")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/incomes", nil)
		req.Header.Set("Authorization", "Bearer "+result.Token)
		_, err = provider.Authenticate(req)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		freshStore := memory.New()
		_, err := freshStore.CreateUser(ctx, core.User{Email: "gone@example.com", PasswordHash: hash})
		require.NoError(t, err)
		p := NewJWTProvider(freshStore, "0123456789abcdef0123456789abcdef", time.Hour)
		result, err := p.Login(ctx, "gone@example.com", "correct-horse")
		require.NoError(t, err)

		// Authenticate against a store that never saw the user
		stale := NewJWTProvider(memory.New(), "0123456789abcdef0123456789abcdef", time.Hour)
		req := httptest.NewRequest("GET", "/api/incomes", nil)
		req.Header.Set("Authorization", "Bearer "+result.Token)
		_, err = stale.Authenticate(req)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2-but-longer")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2-but-longer")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))
}
