package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
)

type TokenService struct {
	log       *slog.Logger
	secretKey []byte
	users     domain.UserRepository
}

func NewTokenService(log *slog.Logger, secret string, users domain.UserRepository) *TokenService {
	return &TokenService{
		log:       log,
		secretKey: []byte(secret),
		users:     users,
	}
}

// Authenticate verifies an access token and resolves it to a known user id.
// It distinguishes a well-formed-but-expired token from an invalid one so the
// gateway can answer with the right close code.
func (s *TokenService) Authenticate(ctx context.Context, tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", domain.ErrNoCredential
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenInvalid
	}
	if !token.Valid {
		return "", domain.ErrTokenInvalid
	}
	userID, err := token.Claims.GetSubject()
	if err != nil || userID == "" {
		return "", domain.ErrTokenInvalid
	}
	// A token for a deleted user is as good as a forged one.
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		s.log.WarnContext(ctx, "token - authenticate - subject not found", "user_id", userID, "err", err)
		return "", domain.ErrTokenInvalid
	}
	return userID, nil
}
