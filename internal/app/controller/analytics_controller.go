package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/salonflow-backend/internal/app/service"
	apperrors "github.com/ikkim/salonflow-backend/internal/errors"
	"github.com/ikkim/salonflow-backend/internal/middleware"
)

type AnalyticsController struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsController(analyticsService service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService}
}

func (ctrl *AnalyticsController) GetSummary(c *gin.Context) {
	summary, err := ctrl.analyticsService.Summary()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to build analytics summary", err, nil)
		apperrors.InternalError(c, "Failed to fetch analytics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": summary})
}
