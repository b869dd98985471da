package service

import (
	"context"
	"time"

	"supperclub/internal/messaging"
	"supperclub/internal/models"
	"supperclub/internal/repository"
	"supperclub/internal/search"
)

// SlotInventory is the authoritative seat counter for event slots. Reserve
// and Release are the only mutation paths for seats_remaining.
type SlotInventory interface {
	GetByID(ctx context.Context, id int64) (*models.EventSlot, error)
	TierPrices(ctx context.Context, slotID int64) ([]models.TierPrice, error)
	Reserve(ctx context.Context, slotID int64, seats int) (*models.SlotSnapshot, error)
	Release(ctx context.Context, slotID int64, seats int) (*models.SlotSnapshot, error)
}

// BookingLedger creates and removes durable booking records.
type BookingLedger interface {
	Create(ctx context.Context, input repository.CreateBookingInput) (*models.Booking, error)
	Delete(ctx context.Context, id int64) error
	ActiveSeats(ctx context.Context, guestID, slotID int64) (int, int, error)
}

// IntentIssuer creates the pending payment record for a booking.
type IntentIssuer interface {
	Create(ctx context.Context, bookingID, amount int64, currency string) (*models.PaymentIntent, error)
}

// IdentityDirectory resolves guest tier and host standing.
type IdentityDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Publisher is the broker used for fire-and-forget side-effect fan-out.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

type Services struct {
	Reservations *ReservationService
	Bookings     *BookingService
	Slots        *SlotService
}

func NewServices(repos *repository.Repositories, natsClient *messaging.NATSClient, esClient *search.ElasticsearchClient, completionTimeout time.Duration) *Services {
	dispatcher := NewSideEffectDispatcher(natsClient)
	compensator := NewCompensator(repos.Slots, repos.Bookings)
	eligibility := NewEligibilityChecker(repos.Bookings)

	reservationService := NewReservationService(
		repos.Slots, repos.Bookings, repos.Intents, repos.Users,
		eligibility, compensator, dispatcher, completionTimeout)
	bookingService := NewBookingService(repos.Bookings, repos.Intents)
	slotService := NewSlotService(repos.Slots, repos.Users, esClient, dispatcher)

	return &Services{
		Reservations: reservationService,
		Bookings:     bookingService,
		Slots:        slotService,
	}
}
