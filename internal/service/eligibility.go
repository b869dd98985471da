package service

import (
	"context"
	"fmt"

	apperrors "supperclub/internal/errors"
	"supperclub/internal/models"
)

// EligibilityChecker enforces the per-guest booking rules: no second active
// booking on the same slot, and a cumulative seat cap across non-cancelled
// bookings. It is a fast-fail ahead of the conditional reserve; the partial
// unique index on bookings is the authority under concurrent first attempts.
type EligibilityChecker struct {
	ledger BookingLedger
}

func NewEligibilityChecker(ledger BookingLedger) *EligibilityChecker {
	return &EligibilityChecker{ledger: ledger}
}

func (c *EligibilityChecker) Check(ctx context.Context, guestID, slotID int64, requestedSeats int) error {
	active, heldSeats, err := c.ledger.ActiveSeats(ctx, guestID, slotID)
	if err != nil {
		return fmt.Errorf("failed to read guest bookings: %w", err)
	}

	if active > 0 {
		return apperrors.ErrDuplicateBooking
	}

	if heldSeats+requestedSeats > models.GuestSeatCap {
		return apperrors.ErrQuotaExceeded
	}

	return nil
}
