package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"supperclub/internal/models"
)

// CreateSlot - POST /api/slots
// Publish a dinner slot as the authenticated host.
func (h *Handlers) CreateSlot(c *gin.Context) {
	var req models.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hostID, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.services.Slots.Create(c.Request.Context(), hostID, &req)
	if err != nil {
		slog.Error("Failed to create slot", "error", err, "host_id", hostID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListSlots - GET /api/slots
func (h *Handlers) ListSlots(c *gin.Context) {
	query := c.Query("query")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}
	if pageSize < 1 || pageSize > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 50"})
		return
	}

	response, err := h.services.Slots.List(c.Request.Context(), query, page, pageSize)
	if err != nil {
		slog.Error("Failed to list slots", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetSlot - GET /api/slots/:id
func (h *Handlers) GetSlot(c *gin.Context) {
	slotID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || slotID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	slot, err := h.services.Slots.Get(c.Request.Context(), slotID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, slot)
}

// CancelSlot - PATCH /api/slots/cancel
func (h *Handlers) CancelSlot(c *gin.Context) {
	var req models.CancelSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hostID, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.services.Slots.Cancel(c.Request.Context(), hostID, &req); err != nil {
		slog.Error("Failed to cancel slot", "error", err, "slot_id", req.SlotID, "host_id", hostID)
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// CompleteSlot - PATCH /api/slots/complete
func (h *Handlers) CompleteSlot(c *gin.Context) {
	var req models.CompleteSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hostID, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.services.Slots.Complete(c.Request.Context(), hostID, &req); err != nil {
		slog.Error("Failed to complete slot", "error", err, "slot_id", req.SlotID, "host_id", hostID)
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
