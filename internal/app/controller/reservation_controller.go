package controller

import (
	"context"
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/salonflow-backend/internal/app/service"
	"github.com/ikkim/salonflow-backend/internal/booking"
	apperrors "github.com/ikkim/salonflow-backend/internal/errors"
	"github.com/ikkim/salonflow-backend/internal/middleware"
	"github.com/ikkim/salonflow-backend/internal/reservation"
)

type ReservationController struct {
	reservationService service.ReservationService
}

func NewReservationController(reservationService service.ReservationService) *ReservationController {
	return &ReservationController{reservationService: reservationService}
}

type StartReservationRequest struct {
	ShopID *uint `json:"shop_id"`
}

type SelectMenusRequest struct {
	MenuIDs      []uint   `json:"menu_ids"`
	DiscountRate *float64 `json:"discount_rate"`
}

type ScheduleRequest struct {
	AppointmentDate string `json:"appointment_date" binding:"required"`
	StartTime       string `json:"start_time" binding:"required"`
}

type SendSMSRequest struct {
	Phone string `json:"phone" binding:"required"`
}

func reservationResponse(state *reservation.State) gin.H {
	return gin.H{
		"reservation":             state,
		"suggested_discount_rate": state.SuggestedDiscountRate(),
		"display": gin.H{
			"total_amount":      booking.FormatPrice(state.TotalAmount),
			"discounted_amount": booking.FormatPrice(state.DiscountedAmount),
			"discount_amount":   booking.FormatPrice(state.DiscountAmount),
			"discount_rate":     booking.FormatDiscountRate(state.DiscountRate),
		},
	}
}

func (ctrl *ReservationController) respondReservationError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrReservationNotFound):
		apperrors.NotFound(c, apperrors.ReservationNotFound, "Reservation not found or expired")
	case errors.Is(err, service.ErrShopNotFound):
		apperrors.NotFound(c, apperrors.ShopNotFound, "Shop not found")
	case errors.Is(err, service.ErrInvalidMenuSelected):
		apperrors.BadRequest(c, apperrors.MenuNotListed, "Selected menu is not offered by this shop")
	case errors.Is(err, reservation.ErrNoMenuSelected):
		apperrors.BadRequest(c, apperrors.ReservationNoMenuSelected, "Select at least one menu")
	case errors.Is(err, reservation.ErrInvalidTransition), errors.Is(err, reservation.ErrNoPreviousStep):
		apperrors.Conflict(c, apperrors.ReservationInvalidTransition, "Not allowed at this step")
	case errors.Is(err, reservation.ErrInvalidSlot):
		apperrors.BadRequest(c, apperrors.ReservationInvalidSlot, "Start time is not a bookable slot")
	case errors.Is(err, booking.ErrInvalidDate):
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Date must be YYYY-MM-DD")
	case errors.Is(err, reservation.ErrNotFinalized):
		apperrors.Conflict(c, apperrors.ReservationNotFinalized, "Confirm the reservation first")
	case errors.Is(err, service.ErrInvalidPhoneNumber):
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Phone number must be in E.164 format, e.g. +819012345678")
	case errors.Is(err, service.ErrFeatureDisabled):
		apperrors.ServiceUnavailable(c, "This feature is not available")
	default:
		middleware.GetLoggerFromContext(c).Error("Failed to "+action, err, map[string]interface{}{
			"session_id": c.Param("id"),
		})
		apperrors.InternalError(c, "Failed to "+action)
	}
}

// GetSlots lists the bookable start times
func (ctrl *ReservationController) GetSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"slots": ctrl.reservationService.BookableSlots()})
}

// StartReservation opens a wizard for the requested shop, the signed-in
// owner's shop, or the public shop
func (ctrl *ReservationController) StartReservation(c *gin.Context) {
	var req StartReservationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
			return
		}
	}

	state, err := ctrl.reservationService.Start(c.Request.Context(), req.ShopID, middleware.GetPrincipalID(c))
	if err != nil {
		ctrl.respondReservationError(c, err, "start reservation")
		return
	}
	c.JSON(http.StatusCreated, reservationResponse(state))
}

func (ctrl *ReservationController) GetReservation(c *gin.Context) {
	state, err := ctrl.reservationService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.respondReservationError(c, err, "fetch reservation")
		return
	}
	c.JSON(http.StatusOK, reservationResponse(state))
}

func (ctrl *ReservationController) SelectMenus(c *gin.Context) {
	var req SelectMenusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	state, err := ctrl.reservationService.SelectMenus(c.Request.Context(), c.Param("id"), req.MenuIDs, req.DiscountRate)
	if err != nil {
		ctrl.respondReservationError(c, err, "select menus")
		return
	}
	c.JSON(http.StatusOK, reservationResponse(state))
}

func (ctrl *ReservationController) Next(c *gin.Context) {
	ctrl.step(c, "advance reservation", ctrl.reservationService.Next)
}

func (ctrl *ReservationController) Confirm(c *gin.Context) {
	ctrl.step(c, "confirm reservation", ctrl.reservationService.Confirm)
}

func (ctrl *ReservationController) Back(c *gin.Context) {
	ctrl.step(c, "go back", ctrl.reservationService.Back)
}

func (ctrl *ReservationController) Reset(c *gin.Context) {
	ctrl.step(c, "reset reservation", ctrl.reservationService.Reset)
}

func (ctrl *ReservationController) step(c *gin.Context, action string, op func(ctx context.Context, id string) (*reservation.State, error)) {
	state, err := op(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.respondReservationError(c, err, action)
		return
	}
	c.JSON(http.StatusOK, reservationResponse(state))
}

func (ctrl *ReservationController) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "appointment_date and start_time are required")
		return
	}

	state, err := ctrl.reservationService.Schedule(c.Request.Context(), c.Param("id"), req.AppointmentDate, req.StartTime)
	if err != nil {
		ctrl.respondReservationError(c, err, "schedule reservation")
		return
	}
	c.JSON(http.StatusOK, reservationResponse(state))
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}

// DownloadICS serves the calendar file of a confirmed reservation
func (ctrl *ReservationController) DownloadICS(c *gin.Context) {
	_, artifacts, err := ctrl.reservationService.Artifacts(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.respondReservationError(c, err, "build calendar file")
		return
	}
	attachment(c, artifacts.FileName+".ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(artifacts.ICS))
}

// DownloadQR serves the QR image that opens the calendar quick-add link
func (ctrl *ReservationController) DownloadQR(c *gin.Context) {
	_, artifacts, err := ctrl.reservationService.Artifacts(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.respondReservationError(c, err, "build QR code")
		return
	}
	attachment(c, artifacts.FileName+".png")
	c.Data(http.StatusOK, "image/png", artifacts.QRPNG)
}

func (ctrl *ReservationController) PublishArtifacts(c *gin.Context) {
	published, err := ctrl.reservationService.PublishArtifacts(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.respondReservationError(c, err, "publish calendar files")
		return
	}
	c.JSON(http.StatusOK, gin.H{"artifacts": published})
}

func (ctrl *ReservationController) SendSMS(c *gin.Context) {
	var req SendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "phone is required")
		return
	}

	if err := ctrl.reservationService.SendCalendarLink(c.Request.Context(), c.Param("id"), req.Phone); err != nil {
		ctrl.respondReservationError(c, err, "send SMS")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Calendar link sent"})
}
