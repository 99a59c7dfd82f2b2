package booking

import (
	"errors"
	"net/http"

	"eventix/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc    BookingService
	logger *zap.Logger
}

func NewHandler(s BookingService, logger *zap.Logger) *Handler {
	return &Handler{svc: s, logger: logger}
}

// Create godoc
// @Summary Create booking
// @Description Create a booking for an event (only authenticated users)
// @Tags bookings
// @Accept json
// @Produce json
// @Param input body CreateBookingRequest true "Booking request"
// @Success 201 {object} CreateBookingResponse
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 409 {object} ErrorResponse "Conflict (e.g., overbooking or seat unavailable)"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /bookings/create [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid booking creation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	userID := c.GetString(auth.CtxUserID)
	if userID == "" {
		h.logger.Warn("Missing user ID for booking creation", zap.String("event_id", req.EventID))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	b, err := h.svc.CreateBooking(c, userID, req)
	if err != nil {
		if errors.Is(err, ErrNotEnoughTickets) {
			h.logger.Warn("Not enough tickets", zap.String("user_id", userID), zap.String("event_id", req.EventID))
			c.JSON(http.StatusConflict, ErrorResponse{Error: "not enough tickets"})
			return
		}
		if errors.Is(err, ErrTotalMismatch) {
			h.logger.Warn("Total amount mismatch", zap.String("user_id", userID), zap.String("event_id", req.EventID))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("Failed to create booking", zap.String("user_id", userID), zap.String("event_id", req.EventID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	h.logger.Info("Booking created", zap.String("booking_id", b.ID), zap.String("user_id", userID), zap.String("event_id", req.EventID))
	c.JSON(http.StatusCreated, CreateBookingResponse{
		BookingID:        b.ID,
		BookingReference: b.BookingReference,
		Status:           b.Status,
		ExpiryDate:       b.ExpiryDate.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// Get godoc
// @Summary Get booking
// @Description Get booking details by ID (only authenticated users)
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /bookings/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	userID := c.GetString(auth.CtxUserID)
	if userID == "" {
		h.logger.Warn("Missing user ID for booking retrieval", zap.String("booking_id", id))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	b, err := h.svc.Get(c, id)
	if err != nil {
		h.logger.Error("Failed to get booking", zap.String("booking_id", id), zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
		return
	}
	h.logger.Info("Booking retrieved", zap.String("booking_id", id), zap.String("user_id", userID), zap.String("event_id", b.EventID))
	c.JSON(http.StatusOK, toBookingResponse(b))
}

// List godoc
// @Summary List my bookings
// @Description List every booking made by the authenticated user
// @Tags bookings
// @Produce json
// @Success 200 {array} BookingResponse
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /bookings [get]
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString(auth.CtxUserID)
	if userID == "" {
		h.logger.Warn("Missing user ID for booking list")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	bookings, err := h.svc.ListByUser(c, userID)
	if err != nil {
		h.logger.Error("Failed to list bookings", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	resp := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, toBookingResponse(b))
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary Cancel booking
// @Description Cancel a PENDING or CONFIRMED booking owned by the caller
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param input body CancelBookingRequest false "Cancellation reason"
// @Success 200 {object} BookingResponse
// @Failure 400 {object} ErrorResponse "Booking is not cancellable"
// @Failure 403 {object} ErrorResponse "Booking belongs to another user"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /bookings/{id}/cancel [put]
func (h *Handler) Cancel(c *gin.Context) {
	id := c.Param("id")
	userID := c.GetString(auth.CtxUserID)
	if userID == "" {
		h.logger.Warn("Missing user ID for booking cancellation", zap.String("booking_id", id))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.svc.Get(c, id)
	if err != nil {
		h.logger.Error("Failed to get booking for cancellation", zap.String("booking_id", id), zap.Error(err))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
		return
	}
	if b.UserID != userID {
		h.logger.Warn("User attempted to cancel another user's booking", zap.String("booking_id", id), zap.String("user_id", userID))
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		return
	}

	if err := h.svc.CancelBooking(c, id, req.Reason); err != nil {
		if errors.Is(err, ErrNotCancellable) {
			h.logger.Warn("Booking not cancellable", zap.String("booking_id", id), zap.String("status", string(b.Status)))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("Failed to cancel booking", zap.String("booking_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	updated, err := h.svc.Get(c, id)
	if err != nil {
		h.logger.Error("Failed to reload booking after cancellation", zap.String("booking_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	h.logger.Info("Booking cancelled", zap.String("booking_id", id), zap.String("user_id", userID))
	c.JSON(http.StatusOK, toBookingResponse(updated))
}
