package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/salonflow-backend/internal/errors"
	"github.com/ikkim/salonflow-backend/internal/middleware"
)

// parseIDParam reads a positive numeric path parameter and answers 400 otherwise.
func parseIDParam(c *gin.Context, name, label string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid "+label+" ID", map[string]interface{}{
			label + "_id": raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+label+" ID")
		return 0, false
	}
	return uint(id), true
}

// requirePrincipalID answers 401 when the route was reached without a principal.
func requirePrincipalID(c *gin.Context) (string, bool) {
	id := middleware.GetPrincipalID(c)
	if id == "" {
		middleware.GetLoggerFromContext(c).Warn("Principal not found in context", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		apperrors.Unauthorized(c, "")
		return "", false
	}
	return id, true
}
