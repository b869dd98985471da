package models

import "time"

// Request/response DTOs for the HTTP API.

// GuestInfo carries identity fields for a named guest on a booking.
type GuestInfo struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact"`
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
}

// CreateReservationRequest is the body of POST /api/reservations.
// The guest identity comes from authentication, never from the body.
type CreateReservationRequest struct {
	SlotID           int64       `json:"slot_id" binding:"required"`
	Seats            int         `json:"seats" binding:"required,min=1"`
	PrimaryGuest     GuestInfo   `json:"primary_guest" binding:"required"`
	AdditionalGuests []GuestInfo `json:"additional_guests"`
}

type CreateReservationResponse struct {
	BookingID       int64  `json:"booking_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	AmountTotal     int64  `json:"amount_total"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
}

type CreateSlotRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description *string          `json:"description"`
	StartsAt    time.Time        `json:"starts_at" binding:"required"`
	MaxGuests   int              `json:"max_guests" binding:"required,min=1"`
	BasePrice   int64            `json:"base_price" binding:"min=0"`
	TierPrices  map[string]int64 `json:"tier_prices"`
}

type CreateSlotResponse struct {
	ID int64 `json:"id"`
}

type CancelSlotRequest struct {
	SlotID int64 `json:"slot_id" binding:"required"`
}

type CompleteSlotRequest struct {
	SlotID int64 `json:"slot_id" binding:"required"`
}

// SlotSummary is the discovery-listing view of a slot.
type SlotSummary struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	StartsAt       time.Time `json:"starts_at"`
	SeatsRemaining int       `json:"seats_remaining"`
	Status         string    `json:"status"`
	BasePrice      int64     `json:"base_price"`
	Currency       string    `json:"currency"`
}

type ListSlotsResponse []SlotSummary

type ListBookingsResponseItem struct {
	ID          int64  `json:"id"`
	SlotID      int64  `json:"slot_id"`
	Seats       int    `json:"seats"`
	AmountTotal int64  `json:"amount_total"`
	Status      string `json:"status"`
}

type ListBookingsResponse []ListBookingsResponseItem

// ErrorResponse is the stable error envelope returned for business-rule
// failures.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
