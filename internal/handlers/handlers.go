package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "supperclub/internal/errors"
	"supperclub/internal/models"
	"supperclub/internal/service"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// userID reads the authenticated user from the gin context. Routes behind
// BasicAuth always have it set.
func userID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// respondError maps business errors to their HTTP status and the stable
// error envelope. Unknown errors become a generic 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		status = http.StatusNotFound
		message = "Event slot not found"
	case errors.Is(err, apperrors.ErrSlotNotOpen):
		status = http.StatusConflict
		message = "Event slot is not open for booking"
	case errors.Is(err, apperrors.ErrInsufficientSeats):
		status = http.StatusConflict
		message = "Not enough seats remaining"
	case errors.Is(err, apperrors.ErrDuplicateBooking):
		status = http.StatusConflict
		message = "An active booking for this slot already exists"
	case errors.Is(err, apperrors.ErrQuotaExceeded):
		status = http.StatusConflict
		message = "Seat limit per guest exceeded"
	case errors.Is(err, apperrors.ErrHostSuspended):
		status = http.StatusForbidden
		message = "Host account is suspended"
	case errors.Is(err, apperrors.ErrInvalidPrice):
		message = "Slot has an invalid price configuration"
	case errors.Is(err, apperrors.ErrPersistenceFailure):
		message = "Failed to persist booking"
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "Unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
		message = "Forbidden"
	}

	code := apperrors.Code(err)
	if code == "" {
		code = "INTERNAL_ERROR"
	}

	c.JSON(status, models.ErrorResponse{
		Code:  code,
		Error: message,
	})
}

// HealthCheck - GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
