// Package auth resolves the user behind each request. The static
// provider keeps the original single-user behavior; the jwt provider
// adds real credential checks on top of the same interface.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

var (
	// ErrUnauthorized means the request carries no usable identity
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials means login was attempted with bad credentials
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Identity is the authenticated caller of a request
type Identity struct {
	UserID int64
	Email  string
}

// LoginResult carries the outcome of a successful login
type LoginResult struct {
	Token     string
	UserID    int64
	Email     string
	ExpiresAt time.Time
}

// Provider authenticates requests and issues login credentials
type Provider interface {
	// Authenticate resolves the identity behind an HTTP request
	Authenticate(r *http.Request) (Identity, error)

	// Login checks credentials and returns a token for later requests
	Login(ctx context.Context, email, password string) (LoginResult, error)
}

// StaticProvider grants every request the same default user. It is the
// zero-configuration mode for single-user deployments.
type StaticProvider struct {
	user core.User
}

// NewStaticProvider looks up the default user, creating it on first run.
func NewStaticProvider(ctx context.Context, store storage.Store, email string) (*StaticProvider, error) {
	user, err := store.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		user, err = store.CreateUser(ctx, core.User{Email: email})
	}
	if err != nil {
		return nil, fmt.Errorf("ensure default user: %w", err)
	}
	return &StaticProvider{user: user}, nil
}

func (p *StaticProvider) Authenticate(r *http.Request) (Identity, error) {
	return Identity{UserID: p.user.ID, Email: p.user.Email}, nil
}

// Login in static mode accepts any credentials and maps them onto the
// default user.
func (p *StaticProvider) Login(ctx context.Context, email, password string) (LoginResult, error) {
	return LoginResult{UserID: p.user.ID, Email: p.user.Email}, nil
}

// HashPassword hashes a plaintext password for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
