package payment

import (
	"errors"
	"net/http"

	"eventix/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the HTTP surface for payment lookups and the provider
// webhook callback (the convergent alternate entry point to Process).
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Get godoc
// @Summary Get payment
// @Description Get payment details by ID (only authenticated users)
// @Tags payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} PaymentResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /payments/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	userID := c.GetString(auth.CtxUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	p, err := h.svc.repo.Get(id)
	if err != nil {
		h.logger.Warn("payment not found", zap.String("payment_id", id), zap.Error(err))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

// Callback godoc
// @Summary Payment provider webhook
// @Description Reports completion or failure of a previously-initiated payment
// @Tags payments
// @Accept json
// @Produce json
// @Param input body CallbackRequest true "Callback payload"
// @Success 200
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /payments/callback [post]
func (h *Handler) Callback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.svc.HandleCallback(c, req.ExternalReference, req.Success, req.FailureReason); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
			return
		}
		h.logger.Error("payment callback failed", zap.String("external_reference", req.ExternalReference), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.Status(http.StatusOK)
}
