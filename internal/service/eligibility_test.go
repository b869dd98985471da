package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "supperclub/internal/errors"
	"supperclub/internal/models"
	"supperclub/internal/repository"
)

func TestEligibilityAllowsFirstBooking(t *testing.T) {
	checker := NewEligibilityChecker(newFakeLedger())

	err := checker.Check(context.Background(), 20, 1, models.GuestSeatCap)
	assert.NoError(t, err)
}

func TestEligibilityRejectsSecondActiveBooking(t *testing.T) {
	ledger := newFakeLedger()
	_, err := ledger.Create(context.Background(), repository.CreateBookingInput{
		SlotID: 1, GuestID: 20, Seats: 1, PricePerSeat: 5000, Currency: "EUR",
	})
	require.NoError(t, err)

	checker := NewEligibilityChecker(ledger)

	err = checker.Check(context.Background(), 20, 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBooking)
}

func TestEligibilityIgnoresCancelledBookings(t *testing.T) {
	ledger := newFakeLedger()
	booking, err := ledger.Create(context.Background(), repository.CreateBookingInput{
		SlotID: 1, GuestID: 20, Seats: 2, PricePerSeat: 5000, Currency: "EUR",
	})
	require.NoError(t, err)
	ledger.bookings[booking.ID].Status = models.BookingStatusCancelled

	checker := NewEligibilityChecker(ledger)

	err = checker.Check(context.Background(), 20, 1, models.GuestSeatCap)
	assert.NoError(t, err)
}

func TestEligibilityDuplicateTakesPrecedenceOverQuota(t *testing.T) {
	ledger := newFakeLedger()
	_, err := ledger.Create(context.Background(), repository.CreateBookingInput{
		SlotID: 1, GuestID: 20, Seats: 1, PricePerSeat: 5000, Currency: "EUR",
	})
	require.NoError(t, err)

	checker := NewEligibilityChecker(ledger)

	// Holding one seat and asking for two more violates both rules; the
	// duplicate rule is reported because it is checked first.
	err = checker.Check(context.Background(), 20, 1, 2)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBooking)
}

func TestEligibilityEnforcesSeatCap(t *testing.T) {
	checker := NewEligibilityChecker(newFakeLedger())

	err := checker.Check(context.Background(), 20, 1, models.GuestSeatCap+1)
	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)
}

func TestEligibilityIsScopedToSlot(t *testing.T) {
	ledger := newFakeLedger()
	_, err := ledger.Create(context.Background(), repository.CreateBookingInput{
		SlotID: 1, GuestID: 20, Seats: 2, PricePerSeat: 5000, Currency: "EUR",
	})
	require.NoError(t, err)

	checker := NewEligibilityChecker(ledger)

	// A full booking on one slot does not block another slot.
	err = checker.Check(context.Background(), 20, 2, models.GuestSeatCap)
	assert.NoError(t, err)
}
