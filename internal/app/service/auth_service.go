package service

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/salonflow-backend/pkg/logger"
)

var ErrTokenRevocationUnavailable = errors.New("token revocation is not configured")

// TokenBlacklist remembers revoked tokens until they would have expired.
type TokenBlacklist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthService handles the parts of sign-in state this service owns. Sign-in
// itself happens at the identity provider.
type AuthService interface {
	SignOut(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type authService struct {
	blacklist TokenBlacklist
	now       func() time.Time
}

// NewAuthService accepts a nil blacklist; sign-out then only clears the
// client's copy of the token.
func NewAuthService(blacklist TokenBlacklist) AuthService {
	return &authService{blacklist: blacklist, now: time.Now}
}

func (s *authService) SignOut(ctx context.Context, token string, expiresAt time.Time) error {
	if s.blacklist == nil {
		return ErrTokenRevocationUnavailable
	}

	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, token, ttl); err != nil {
		logger.Error("Failed to revoke token", err)
		return err
	}

	logger.Info("Token revoked", logger.Fields{"ttl": ttl.String()})
	return nil
}

func (s *authService) IsRevoked(ctx context.Context, token string) (bool, error) {
	if s.blacklist == nil {
		return false, nil
	}
	return s.blacklist.IsRevoked(ctx, token)
}
