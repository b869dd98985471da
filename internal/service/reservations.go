package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"supperclub/internal/database"
	apperrors "supperclub/internal/errors"
	"supperclub/internal/logger"
	"supperclub/internal/models"
	"supperclub/internal/monitoring"
	"supperclub/internal/repository"
)

// ReservationService turns a guest's request for N seats into a durable
// booking with a pending payment intent, or into nothing at all. The seat
// counter is only ever touched through the inventory's conditional update;
// every step after a successful reserve either completes or is compensated.
type ReservationService struct {
	slots       SlotInventory
	ledger      BookingLedger
	intents     IntentIssuer
	users       IdentityDirectory
	eligibility *EligibilityChecker
	compensator *Compensator
	dispatcher  *SideEffectDispatcher

	completionTimeout time.Duration
}

func NewReservationService(
	slots SlotInventory,
	ledger BookingLedger,
	intents IntentIssuer,
	users IdentityDirectory,
	eligibility *EligibilityChecker,
	compensator *Compensator,
	dispatcher *SideEffectDispatcher,
	completionTimeout time.Duration,
) *ReservationService {
	if completionTimeout <= 0 {
		completionTimeout = 15 * time.Second
	}
	return &ReservationService{
		slots:             slots,
		ledger:            ledger,
		intents:           intents,
		users:             users,
		eligibility:       eligibility,
		compensator:       compensator,
		dispatcher:        dispatcher,
		completionTimeout: completionTimeout,
	}
}

func (s *ReservationService) Create(ctx context.Context, guestID int64, req *models.CreateReservationRequest) (resp *models.CreateReservationResponse, err error) {
	timer := prometheus.NewTimer(monitoring.ReservationDuration)
	defer timer.ObserveDuration()
	defer func() {
		monitoring.ReservationsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	}()

	if req.Seats < 1 {
		return nil, fmt.Errorf("seats must be >= 1, got %d", req.Seats)
	}

	slot, err := s.slots.GetByID(ctx, req.SlotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event slot: %w", err)
	}
	if slot == nil {
		return nil, apperrors.ErrEventNotFound
	}
	if slot.Status != models.SlotStatusOpen {
		return nil, apperrors.ErrSlotNotOpen
	}

	host, err := s.users.GetByID(ctx, slot.HostID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host: %w", err)
	}
	if host == nil || host.Suspended {
		return nil, apperrors.ErrHostSuspended
	}

	guest, err := s.users.GetByID(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve guest: %w", err)
	}
	if guest == nil {
		return nil, apperrors.ErrUnauthorized
	}

	if err := s.eligibility.Check(ctx, guestID, slot.ID, req.Seats); err != nil {
		return nil, err
	}

	// The conditional update is the true gate for seat availability; only
	// transient connection failures are retried, never lost races.
	var snapshot *models.SlotSnapshot
	err = database.WithRetry(ctx, "reserve seats", func(ctx context.Context) error {
		var rerr error
		snapshot, rerr = s.slots.Reserve(ctx, slot.ID, req.Seats)
		return rerr
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientSeats) {
			monitoring.ReserveConflictsTotal.Inc()
		}
		return nil, err
	}

	logger.WithContext(ctx).Info("Seats reserved",
		"slot_id", slot.ID,
		"guest_id", guestID,
		"seats", req.Seats,
		"seats_remaining", snapshot.SeatsRemaining)

	// Seats are held now. The rest of the sequence must reach a consistent
	// end state even if the caller goes away, so it runs on a context that
	// ignores the request's cancellation.
	completionCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.completionTimeout)
	defer cancel()

	return s.complete(completionCtx, guest, slot, req)
}

// complete runs the post-reserve write sequence: price snapshot, booking,
// payment intent, side-effect dispatch. Any failure releases exactly the
// seats reserved above before the error is surfaced.
func (s *ReservationService) complete(ctx context.Context, guest *models.User, slot *models.EventSlot, req *models.CreateReservationRequest) (*models.CreateReservationResponse, error) {
	tierPrices, err := s.slots.TierPrices(ctx, slot.ID)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to load tier prices after reserve", "error", err, "slot_id", slot.ID)
		s.compensator.ReleaseSeats(ctx, slot.ID, req.Seats)
		return nil, apperrors.ErrPersistenceFailure
	}

	pricePerSeat, err := ResolvePrice(slot, tierPrices, guest.Tier)
	if err != nil {
		s.compensator.ReleaseSeats(ctx, slot.ID, req.Seats)
		return nil, err
	}

	booking, err := s.ledger.Create(ctx, repository.CreateBookingInput{
		SlotID:           slot.ID,
		GuestID:          guest.UserID,
		Seats:            req.Seats,
		GuestTier:        guest.Tier,
		PricePerSeat:     pricePerSeat,
		Currency:         slot.Currency,
		PrimaryName:      req.PrimaryGuest.Name,
		PrimaryContact:   req.PrimaryGuest.Contact,
		AdditionalGuests: req.AdditionalGuests,
	})
	if err != nil {
		s.compensator.ReleaseSeats(ctx, slot.ID, req.Seats)
		if errors.Is(err, apperrors.ErrDuplicateBooking) {
			return nil, err
		}
		logger.WithContext(ctx).Error("Booking write failed", "error", err, "slot_id", slot.ID, "guest_id", guest.UserID)
		return nil, apperrors.ErrPersistenceFailure
	}

	intent, err := s.intents.Create(ctx, booking.ID, booking.AmountTotal, booking.Currency)
	if err != nil {
		logger.WithContext(ctx).Error("Payment intent write failed", "error", err, "booking_id", booking.ID)
		s.compensator.RollbackBooking(ctx, booking.ID, slot.ID, req.Seats)
		return nil, apperrors.ErrPersistenceFailure
	}

	s.dispatcher.ReservationCreated(booking, intent, slot, guest.Email)

	return &models.CreateReservationResponse{
		BookingID:       booking.ID,
		PaymentIntentID: intent.ID,
		AmountTotal:     booking.AmountTotal,
		Currency:        booking.Currency,
		Status:          booking.Status,
	}, nil
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, apperrors.ErrSlotNotOpen):
		return "slot_not_open"
	case errors.Is(err, apperrors.ErrInsufficientSeats):
		return "insufficient_seats"
	case errors.Is(err, apperrors.ErrHostSuspended):
		return "host_suspended"
	case errors.Is(err, apperrors.ErrDuplicateBooking):
		return "duplicate_booking"
	case errors.Is(err, apperrors.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, apperrors.ErrInvalidPrice):
		return "invalid_price"
	default:
		return "error"
	}
}
