package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"supperclub/internal/models"
)

// CreateReservation - POST /api/reservations
// Reserves seats, writes the booking and payment intent, and kicks off the
// post-booking side effects.
func (h *Handlers) CreateReservation(c *gin.Context) {
	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The primary guest occupies one of the requested seats.
	if len(req.AdditionalGuests) > req.Seats-1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "additional_guests must not exceed seats - 1"})
		return
	}

	guestID, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.services.Reservations.Create(c.Request.Context(), guestID, &req)
	if err != nil {
		slog.Error("Failed to create reservation", "error", err, "slot_id", req.SlotID, "guest_id", guestID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}
