package models

import (
	"time"
)

// EventSlot statuses. FULL holds exactly when seats_remaining is zero;
// CANCELLED and COMPLETED are terminal for reservations.
const (
	SlotStatusOpen      = "OPEN"
	SlotStatusFull      = "FULL"
	SlotStatusCancelled = "CANCELLED"
	SlotStatusCompleted = "COMPLETED"
)

// Booking statuses. A booking is created PAYMENT_PENDING and leaves that
// state only through payment confirmation or cancellation/refund.
const (
	BookingStatusPaymentPending = "PAYMENT_PENDING"
	BookingStatusConfirmed      = "CONFIRMED"
	BookingStatusCancelled      = "CANCELLED"
)

// PaymentIntent statuses.
const (
	IntentStatusPending = "PENDING"
	IntentStatusPaid    = "PAID"
	IntentStatusFailed  = "FAILED"
)

// GuestSeatCap is the cumulative seat limit per guest per event slot
// across non-cancelled bookings.
const GuestSeatCap = 2

// User represents a guest or host account
type User struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Surname      string    `json:"surname" db:"surname"`
	Role         string    `json:"role" db:"role"`
	Tier         string    `json:"tier" db:"tier"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	Suspended    bool      `json:"suspended" db:"suspended"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	LastLoggedIn time.Time `json:"last_logged_in" db:"last_logged_in"`
}

// EventSlot is one hosted dining offering with a finite seat counter.
// seats_remaining is mutated only through the inventory's conditional
// reserve/release statements.
type EventSlot struct {
	ID             int64     `json:"id" db:"id"`
	HostID         int64     `json:"host_id" db:"host_id"`
	Title          string    `json:"title" db:"title"`
	Description    *string   `json:"description" db:"description"`
	StartsAt       time.Time `json:"starts_at" db:"starts_at"`
	MaxGuests      int       `json:"max_guests" db:"max_guests"`
	SeatsRemaining int       `json:"seats_remaining" db:"seats_remaining"`
	Status         string    `json:"status" db:"status"`
	BasePrice      int64     `json:"base_price" db:"base_price"`
	Currency       string    `json:"currency" db:"currency"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// TierPrice overrides the slot base price for one guest tier.
// Prices are integer minor units.
type TierPrice struct {
	SlotID       int64  `json:"slot_id" db:"slot_id"`
	Tier         string `json:"tier" db:"tier"`
	PricePerSeat int64  `json:"price_per_seat" db:"price_per_seat"`
}

// Booking is one guest's reservation against one slot. Price and tier are
// snapshotted at booking time and never recomputed.
type Booking struct {
	ID             int64     `json:"id" db:"id"`
	SlotID         int64     `json:"slot_id" db:"slot_id"`
	GuestID        int64     `json:"guest_id" db:"guest_id"`
	Seats          int       `json:"seats" db:"seats"`
	GuestTier      string    `json:"guest_tier" db:"guest_tier"`
	PricePerSeat   int64     `json:"price_per_seat" db:"price_per_seat"`
	AmountTotal    int64     `json:"amount_total" db:"amount_total"`
	Currency       string    `json:"currency" db:"currency"`
	Status         string    `json:"status" db:"status"`
	PrimaryName    string    `json:"primary_name" db:"primary_name"`
	PrimaryContact string    `json:"primary_contact" db:"primary_contact"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	AdditionalGuests []AdditionalGuest `json:"additional_guests,omitempty"` // Not from bookings table, filled separately
}

// AdditionalGuest is one named non-primary guest on a booking.
type AdditionalGuest struct {
	ID        int64  `json:"id" db:"id"`
	BookingID int64  `json:"booking_id" db:"booking_id"`
	Position  int    `json:"position" db:"position"`
	FullName  string `json:"full_name" db:"full_name"`
	Contact   string `json:"contact" db:"contact"`
	Age       int    `json:"age" db:"age"`
	Gender    string `json:"gender" db:"gender"`
}

// PaymentIntent is the 1:1 pending-payment companion of a booking.
type PaymentIntent struct {
	ID        string    `json:"id" db:"id"`
	BookingID int64     `json:"booking_id" db:"booking_id"`
	Amount    int64     `json:"amount" db:"amount"`
	Currency  string    `json:"currency" db:"currency"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SlotSnapshot is the post-update view returned by a successful conditional
// reserve or release.
type SlotSnapshot struct {
	SlotID         int64  `json:"slot_id"`
	SeatsRemaining int    `json:"seats_remaining"`
	Status         string `json:"status"`
}
