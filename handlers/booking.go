package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogRepo "coachbook/database/repository/catalog"
	"coachbook/middleware"
	"coachbook/models"
	"coachbook/services/booking"
	"coachbook/services/membership"
	"coachbook/utils"
)

// BookingHandler exposes the booking-payment workflow over HTTP.
type BookingHandler struct {
	Svc      booking.BookingService
	Resolver membership.Resolver
	Catalog  catalogRepo.ServiceRepository
	Logger   *zap.Logger
}

// NewBookingHandler creates a booking handler.
func NewBookingHandler(svc booking.BookingService, resolver membership.Resolver, catalog catalogRepo.ServiceRepository, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Resolver: resolver, Catalog: catalog, Logger: logger}
}

type bookingRequest struct {
	ServiceID       string                `json:"serviceId" binding:"required"`
	LocationID      string                `json:"locationId"`
	CoachID         string                `json:"coachId"`
	ResourceIDs     []string              `json:"resourceIds"`
	StartTime       time.Time             `json:"startTime" binding:"required"`
	EndTime         time.Time             `json:"endTime" binding:"required"`
	DurationMinutes int                   `json:"durationMinutes"`
	Billing         models.BillingDetails `json:"billing"`
}

// draftFromRequest resolves the request into a saga-ready draft, pulling the
// caller's identity off the auth context and the service off the catalog.
func (h *BookingHandler) draftFromRequest(c *gin.Context, req bookingRequest) (models.BookingDraft, error) {
	svc, err := h.Catalog.GetByID(c.Request.Context(), req.ServiceID)
	if err != nil {
		return models.BookingDraft{}, err
	}
	return models.BookingDraft{
		ClientID:        c.GetString(middleware.ContextClientID),
		CallerRole:      c.GetString(middleware.ContextRole),
		LocationID:      req.LocationID,
		Service:         *svc,
		CoachID:         req.CoachID,
		ResourceIDs:     req.ResourceIDs,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
	}, nil
}

// CreateBooking runs the full booking-payment saga for the caller.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid booking request", err.Error())
		return
	}

	draft, err := h.draftFromRequest(c, req)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "Service not found", err.Error())
		return
	}

	result, err := h.Svc.ConfirmBooking(c.Request.Context(), draft, req.Billing)
	if err != nil {
		h.Logger.Warn("booking attempt failed",
			zap.String("clientId", draft.ClientID),
			zap.String("serviceId", draft.Service.ID),
			zap.Error(err),
		)
		utils.JSONError(c, statusForError(err), booking.UserMessage(err), "")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// PreviewSummary returns the price breakdown for a draft without booking anything.
func (h *BookingHandler) PreviewSummary(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid summary request", err.Error())
		return
	}

	draft, err := h.draftFromRequest(c, req)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "Service not found", err.Error())
		return
	}

	preview, err := h.Svc.PreviewSummary(c.Request.Context(), draft)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, booking.UserMessage(err), "")
		return
	}

	c.JSON(http.StatusOK, preview)
}

// GetEligibility reports the caller's membership coverage for a service.
func (h *BookingHandler) GetEligibility(c *gin.Context) {
	serviceID := c.Query("serviceId")
	if serviceID == "" {
		utils.JSONError(c, http.StatusBadRequest, "serviceId is required", "")
		return
	}

	clientID := c.GetString(middleware.ContextClientID)
	elig, err := h.Resolver.ResolveEligibility(c.Request.Context(), clientID, serviceID, time.Now().UTC())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to resolve membership eligibility", "")
		return
	}

	c.JSON(http.StatusOK, elig)
}

// CancelBooking cancels one of the caller's bookings.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("bookingID")
	clientID := c.GetString(middleware.ContextClientID)

	if err := h.Svc.CancelBooking(c.Request.Context(), bookingID, clientID); err != nil {
		utils.JSONError(c, statusForError(err), booking.UserMessage(err), "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully"})
}

// statusForError maps the workflow error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	var se *booking.SagaError
	if errors.As(err, &se) {
		switch se.Code {
		case booking.CodePrecondition:
			return http.StatusUnprocessableEntity
		case booking.CodePaymentAuth, booking.CodePaymentConfirm:
			return http.StatusPaymentRequired
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
