package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/salonflow-backend/internal/errors"
	"github.com/ikkim/salonflow-backend/pkg/util"
)

// Context keys for the signed-in principal
const (
	PrincipalKey = "principal"
	TokenKey     = "token"
	TokenExpKey  = "token_expires_at"
)

// RevocationChecker reports tokens revoked by sign-out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret  string
	issuer     string
	adminEmail string
	revocation RevocationChecker
}

// NewAuthMiddleware verifies identity provider tokens. revocation may be nil.
func NewAuthMiddleware(jwtSecret, issuer, adminEmail string, revocation RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:  jwtSecret,
		issuer:     issuer,
		adminEmail: strings.TrimSpace(adminEmail),
		revocation: revocation,
	}
}

// bearerToken returns the token from the Authorization header or, for
// WebSocket upgrades, the token query parameter.
func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}

func (m *AuthMiddleware) verify(c *gin.Context, token string) (*util.IdentityClaims, error) {
	claims, err := util.ValidateTokenWithIssuer(token, m.jwtSecret, m.issuer)
	if err != nil {
		return nil, err
	}
	if m.revocation != nil {
		revoked, err := m.revocation.IsRevoked(c.Request.Context(), token)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, errTokenRevoked
		}
	}
	return claims, nil
}

var errTokenRevoked = stderrors.New("token revoked")

func setPrincipal(c *gin.Context, token string, claims *util.IdentityClaims) {
	c.Set(PrincipalKey, claims.Principal())
	c.Set(TokenKey, token)
	if claims.ExpiresAt != nil {
		c.Set(TokenExpKey, claims.ExpiresAt.Time)
	}
}

// Authenticate requires a valid, unrevoked identity token.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := bearerToken(c)
		if !ok {
			log.Warn("Missing or malformed authorization", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "Sign-in required")
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			switch {
			case stderrors.Is(err, util.ErrExpiredToken):
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Sign-in has expired")
			case stderrors.Is(err, errTokenRevoked):
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Token has been signed out")
			case stderrors.Is(err, util.ErrInvalidToken):
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid or expired token")
			default:
				errors.ServiceUnavailable(c, "Could not verify sign-in")
			}
			return
		}

		setPrincipal(c, token, claims)
		log.Debug("Principal authenticated", map[string]interface{}{
			"principal_id": claims.Subject,
		})
		c.Next()
	}
}

// OptionalAuthenticate attaches the principal when a valid token is present
// and otherwise continues as a guest.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			GetLoggerFromContext(c).Debug("Ignoring unusable token", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		setPrincipal(c, token, claims)
		c.Next()
	}
}

// RequireAdminEmail lets through only the configured system admin. It must
// run after Authenticate.
func (m *AuthMiddleware) RequireAdminEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			errors.Unauthorized(c, "Sign-in required")
			return
		}
		if m.adminEmail == "" || !strings.EqualFold(principal.Email, m.adminEmail) {
			GetLoggerFromContext(c).Warn("Admin access denied", map[string]interface{}{
				"principal_id": principal.ID,
				"path":         c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "System admin only")
			return
		}
		c.Next()
	}
}

// GetPrincipal extracts the signed-in principal from context
func GetPrincipal(c *gin.Context) (util.Principal, bool) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return util.Principal{}, false
	}
	principal, ok := value.(util.Principal)
	return principal, ok
}

// GetPrincipalID returns the principal id, or "" for guests.
func GetPrincipalID(c *gin.Context) string {
	principal, _ := GetPrincipal(c)
	return principal.ID
}

// GetToken returns the raw token and its expiry.
func GetToken(c *gin.Context) (string, time.Time, bool) {
	token := c.GetString(TokenKey)
	if token == "" {
		return "", time.Time{}, false
	}
	return token, c.GetTime(TokenExpKey), true
}
