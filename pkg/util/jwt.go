package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Principal is the signed-in identity as asserted by the identity provider.
// ID is opaque and stable per account.
type Principal struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// IdentityClaims mirrors the provider's ID token: sub, name, email, picture.
type IdentityClaims struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

func (c *IdentityClaims) Principal() Principal {
	return Principal{
		ID:        c.Subject,
		Name:      c.Name,
		Email:     c.Email,
		AvatarURL: c.Picture,
	}
}

// GenerateIdentityToken signs a token the way the identity provider does.
// Production tokens are minted by the provider; this is used by tooling and tests.
func GenerateIdentityToken(p Principal, secret, issuer string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		Name:    p.Name,
		Email:   p.Email,
		Picture: p.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign identity token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, expiry and (when set) issuer, and
// requires a subject.
func ValidateToken(tokenString, secret string) (*IdentityClaims, error) {
	return ValidateTokenWithIssuer(tokenString, secret, "")
}

func ValidateTokenWithIssuer(tokenString, secret, issuer string) (*IdentityClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
