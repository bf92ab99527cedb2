package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubUsers struct {
	known map[string]bool
}

func (s *stubUsers) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	if s.known[id] {
		return &domain.User{ID: id}, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUsers) SetOnline(context.Context, string) error { return nil }

func (s *stubUsers) SetOffline(context.Context, string, time.Time) error { return nil }

func signToken(t *testing.T, secret string, sub string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTokenService(known ...string) *TokenService {
	users := &stubUsers{known: make(map[string]bool)}
	for _, id := range known {
		users.known[id] = true
	}
	return NewTokenService(slog.Default(), testSecret, users)
}

func TestAuthenticateValidToken(t *testing.T) {
	svc := newTokenService("u1")
	tok := signToken(t, testSecret, "u1", time.Now().Add(time.Hour))

	userID, err := svc.Authenticate(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestAuthenticateMissingCredential(t *testing.T) {
	svc := newTokenService("u1")

	_, err := svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNoCredential)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	svc := newTokenService("u1")
	tok := signToken(t, testSecret, "u1", time.Now().Add(-time.Hour))

	_, err := svc.Authenticate(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestAuthenticateBadSignature(t *testing.T) {
	svc := newTokenService("u1")
	tok := signToken(t, "other-secret", "u1", time.Now().Add(time.Hour))

	_, err := svc.Authenticate(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestAuthenticateGarbageToken(t *testing.T) {
	svc := newTokenService("u1")

	_, err := svc.Authenticate(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestAuthenticateUnknownSubject(t *testing.T) {
	svc := newTokenService("u1")
	tok := signToken(t, testSecret, "deleted-user", time.Now().Add(time.Hour))

	_, err := svc.Authenticate(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
