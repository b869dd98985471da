package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListBookings - GET /api/bookings
func (h *Handlers) ListBookings(c *gin.Context) {
	guestID, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.services.Bookings.List(c.Request.Context(), guestID)
	if err != nil {
		slog.Error("Failed to list bookings", "error", err, "guest_id", guestID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookingID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	guestID, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	booking, intent, err := h.services.Bookings.Get(c.Request.Context(), guestID, bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"id":                booking.ID,
		"slot_id":           booking.SlotID,
		"seats":             booking.Seats,
		"price_per_seat":    booking.PricePerSeat,
		"amount_total":      booking.AmountTotal,
		"currency":          booking.Currency,
		"status":            booking.Status,
		"primary_name":      booking.PrimaryName,
		"primary_contact":   booking.PrimaryContact,
		"additional_guests": booking.AdditionalGuests,
	}
	if intent != nil {
		resp["payment_intent"] = intent
	}

	c.JSON(http.StatusOK, resp)
}
