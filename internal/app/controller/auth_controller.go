package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/salonflow-backend/internal/app/service"
	apperrors "github.com/ikkim/salonflow-backend/internal/errors"
	"github.com/ikkim/salonflow-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
	adminEmail  string
}

func NewAuthController(authService service.AuthService, adminEmail string) *AuthController {
	return &AuthController{authService: authService, adminEmail: adminEmail}
}

// GetMe returns the signed-in principal as seen by this service
func (ctrl *AuthController) GetMe(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     principal,
		"is_admin": ctrl.adminEmail != "" && strings.EqualFold(principal.Email, ctrl.adminEmail),
	})
}

// SignOut revokes the presented token until it would have expired
func (ctrl *AuthController) SignOut(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token, expiresAt, ok := middleware.GetToken(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.authService.SignOut(c.Request.Context(), token, expiresAt); err != nil {
		if errors.Is(err, service.ErrTokenRevocationUnavailable) {
			// nothing server-side to revoke; the client drops its copy
			c.JSON(http.StatusOK, gin.H{"message": "Signed out", "revoked": false})
			return
		}
		log.Error("Failed to sign out", err, map[string]interface{}{
			"principal_id": middleware.GetPrincipalID(c),
		})
		apperrors.InternalError(c, "Failed to sign out")
		return
	}

	log.Info("Principal signed out", map[string]interface{}{
		"principal_id": middleware.GetPrincipalID(c),
	})
	c.JSON(http.StatusOK, gin.H{"message": "Signed out", "revoked": true})
}
