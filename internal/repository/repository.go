package repository

import (
	"supperclub/internal/database"
)

// Repositories holds all repository instances
type Repositories struct {
	Slots    *SlotRepository
	Bookings *BookingRepository
	Intents  *PaymentIntentRepository
	Users    *UserRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Slots:    NewSlotRepository(db),
		Bookings: NewBookingRepository(db),
		Intents:  NewPaymentIntentRepository(db),
		Users:    NewUserRepository(db),
	}
}
