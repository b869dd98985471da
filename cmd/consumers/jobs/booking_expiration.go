package jobs

import (
	"context"
	"log/slog"
	"time"

	"supperclub/internal/messaging"
	"supperclub/internal/models"
	"supperclub/internal/monitoring"
	"supperclub/internal/repository"
)

const BookingExpirationTimeout = 15 * time.Minute

// BookingExpirationJob cancels bookings whose payment intent is still
// PENDING past the timeout and returns their seats to the slot. This is the
// only path besides request-time compensation that writes seats_remaining
// upward.
type BookingExpirationJob struct {
	bookingRepo *repository.BookingRepository
	intentRepo  *repository.PaymentIntentRepository
	slotRepo    *repository.SlotRepository
	natsClient  *messaging.NATSClient
	ticker      *time.Ticker
	done        chan bool
}

func NewBookingExpirationJob(repos *repository.Repositories, natsClient *messaging.NATSClient) *BookingExpirationJob {
	return &BookingExpirationJob{
		bookingRepo: repos.Bookings,
		intentRepo:  repos.Intents,
		slotRepo:    repos.Slots,
		natsClient:  natsClient,
		done:        make(chan bool),
	}
}

// Start begins the background job that checks for expired bookings every 30 seconds
func (j *BookingExpirationJob) Start(ctx context.Context) {
	slog.Info("Starting booking expiration job", "check_interval", "30s", "timeout", BookingExpirationTimeout)

	j.ticker = time.NewTicker(30 * time.Second)

	go j.checkExpiredBookings(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.checkExpiredBookings(ctx)
			case <-j.done:
				slog.Info("Booking expiration job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *BookingExpirationJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *BookingExpirationJob) checkExpiredBookings(ctx context.Context) {
	cutoff := time.Now().Add(-BookingExpirationTimeout)

	expiredBookings, err := j.bookingRepo.GetExpiredPending(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to get expired bookings", "error", err)
		return
	}

	if len(expiredBookings) == 0 {
		return
	}

	slog.Info("Found expired bookings to process", "count", len(expiredBookings))

	for i := range expiredBookings {
		booking := &expiredBookings[i]
		if err := j.expireBooking(ctx, booking); err != nil {
			slog.Error("Failed to expire booking",
				"error", err,
				"booking_id", booking.ID,
				"slot_id", booking.SlotID,
				"created_at", booking.CreatedAt)
		} else {
			slog.Info("Expired booking",
				"booking_id", booking.ID,
				"slot_id", booking.SlotID,
				"elapsed_time", time.Since(booking.CreatedAt).String())
		}
	}
}

// expireBooking cancels one booking and releases its seats. The booking is
// cancelled before the seats are released so the slot's active-booking index
// frees up for the guest first.
func (j *BookingExpirationJob) expireBooking(ctx context.Context, booking *models.Booking) error {
	if err := j.bookingRepo.UpdateStatus(ctx, booking.ID, models.BookingStatusCancelled); err != nil {
		return err
	}

	intent, err := j.intentRepo.GetByBookingID(ctx, booking.ID)
	if err != nil {
		slog.Error("Failed to load payment intent during expiration", "error", err, "booking_id", booking.ID)
	} else if intent != nil {
		if err := j.intentRepo.UpdateStatus(ctx, intent.ID, models.IntentStatusFailed); err != nil {
			slog.Error("Failed to fail payment intent", "error", err, "intent_id", intent.ID)
		}
	}

	if _, err := j.slotRepo.Release(ctx, booking.SlotID, booking.Seats); err != nil {
		monitoring.SeatRollbacksTotal.WithLabelValues("failed").Inc()
		return err
	}
	monitoring.SeatRollbacksTotal.WithLabelValues("released").Inc()

	event := models.BookingExpiredEvent{
		BookingID: booking.ID,
		SlotID:    booking.SlotID,
		GuestID:   booking.GuestID,
		Seats:     booking.Seats,
		Reason:    "payment timeout exceeded",
		Timestamp: time.Now(),
	}

	if err := j.natsClient.Publish(models.EventBookingExpired, event); err != nil {
		// Expiration already took effect; the missed event only skips the
		// guest's notice mail.
		slog.Error("Failed to publish booking expired event", "error", err, "booking_id", booking.ID)
	}

	return nil
}
