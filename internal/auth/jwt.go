package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// sessionClaims is the payload of an issued session token. Subject
// carries the user ID.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// JWTProvider authenticates with bcrypt-checked passwords and signed
// HS256 session tokens.
type JWTProvider struct {
	store  storage.Store
	secret []byte
	ttl    time.Duration
}

// NewJWTProvider builds a provider signing tokens with secret and
// expiring them after ttl.
func NewJWTProvider(store storage.Store, secret string, ttl time.Duration) *JWTProvider {
	return &JWTProvider{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Login verifies the password against the stored hash and issues a
// session token. Unknown users and wrong passwords both report
// ErrInvalidCredentials so callers cannot probe for accounts.
func (p *JWTProvider) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := p.store.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(p.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: user.Email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	}, nil
}

// Authenticate parses the bearer token from the Authorization header
// and resolves it to a stored user.
func (p *JWTProvider) Authenticate(r *http.Request) (Identity, error) {
	const prefix = "Bearer "

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return Identity{}, ErrUnauthorized
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Identity{}, ErrUnauthorized
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, ErrUnauthorized
	}

	user, err := p.store.GetUser(r.Context(), userID)
	if errors.Is(err, core.ErrNotFound) {
		return Identity{}, ErrUnauthorized
	}
	if err != nil {
		return Identity{}, err
	}

	return Identity{UserID: user.ID, Email: user.Email}, nil
}
