package models

import "time"

// NATS subjects for side-effect fan-out.
const (
	EventReservationCreated = "reservation.created"
	EventSlotCancelled      = "slot.cancelled"
	EventBookingExpired     = "booking.expired"
)

// ReservationCreatedEvent is published after a booking and its payment
// intent are durably created. It contains enough information for the
// side-effect consumers to issue passes, mail the guest and notify the host
// without querying the primary database.
type ReservationCreatedEvent struct {
	BookingID       int64     `json:"booking_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	SlotID          int64     `json:"slot_id"`
	HostID          int64     `json:"host_id"`
	GuestID         int64     `json:"guest_id"`
	Seats           int       `json:"seats"`
	AmountTotal     int64     `json:"amount_total"`
	Currency        string    `json:"currency"`
	RecipientEmail  string    `json:"recipient_email"`
	Timestamp       time.Time `json:"timestamp"`
}

// SlotCancelledEvent is published when a host cancels a slot.
type SlotCancelledEvent struct {
	SlotID    int64     `json:"slot_id"`
	HostID    int64     `json:"host_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingExpiredEvent is published when the expiration job cancels a booking
// whose payment never arrived.
type BookingExpiredEvent struct {
	BookingID int64     `json:"booking_id"`
	SlotID    int64     `json:"slot_id"`
	GuestID   int64     `json:"guest_id"`
	Seats     int       `json:"seats"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
