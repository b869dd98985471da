package service

import (
	"context"

	"supperclub/internal/logger"
	"supperclub/internal/monitoring"
)

// Compensator unwinds the effects of a reservation attempt after a
// downstream step fails irrecoverably. Its own failures are logged and
// counted, never re-thrown: masking the original error would hide the real
// cause, but an unreleased seat count is a slow leak, so every failed
// release must reach operational monitoring.
type Compensator struct {
	slots  SlotInventory
	ledger BookingLedger
}

func NewCompensator(slots SlotInventory, ledger BookingLedger) *Compensator {
	return &Compensator{slots: slots, ledger: ledger}
}

// ReleaseSeats restores exactly the seat count that was reserved,
// regardless of how far downstream processing got.
func (c *Compensator) ReleaseSeats(ctx context.Context, slotID int64, seats int) {
	snapshot, err := c.slots.Release(ctx, slotID, seats)
	if err != nil {
		monitoring.SeatRollbacksTotal.WithLabelValues("failed").Inc()
		logger.WithContext(ctx).Error("Seat rollback failed, counter is now short",
			"error", err,
			"slot_id", slotID,
			"seats", seats)
		return
	}

	monitoring.SeatRollbacksTotal.WithLabelValues("released").Inc()
	logger.WithContext(ctx).Warn("Released reserved seats after downstream failure",
		"slot_id", slotID,
		"seats", seats,
		"seats_remaining", snapshot.SeatsRemaining,
		"slot_status", snapshot.Status)
}

// RollbackBooking removes an orphaned booking whose payment intent could
// not be created, then releases its seats. Safe to call however far the
// sequence got: a booking that was never written deletes as a no-op.
func (c *Compensator) RollbackBooking(ctx context.Context, bookingID, slotID int64, seats int) {
	if err := c.ledger.Delete(ctx, bookingID); err != nil {
		monitoring.SeatRollbacksTotal.WithLabelValues("booking_delete_failed").Inc()
		logger.WithContext(ctx).Error("Failed to delete booking during rollback",
			"error", err,
			"booking_id", bookingID)
	}

	c.ReleaseSeats(ctx, slotID, seats)
}
