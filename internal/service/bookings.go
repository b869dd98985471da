package service

import (
	"context"
	"fmt"

	apperrors "supperclub/internal/errors"
	"supperclub/internal/models"
	"supperclub/internal/repository"
)

// BookingService serves read access to a guest's bookings.
type BookingService struct {
	bookingRepo *repository.BookingRepository
	intentRepo  *repository.PaymentIntentRepository
}

func NewBookingService(bookingRepo *repository.BookingRepository, intentRepo *repository.PaymentIntentRepository) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		intentRepo:  intentRepo,
	}
}

func (s *BookingService) List(ctx context.Context, guestID int64) (models.ListBookingsResponse, error) {
	bookings, err := s.bookingRepo.GetByGuestID(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}

	result := make(models.ListBookingsResponse, len(bookings))
	for i, booking := range bookings {
		result[i] = models.ListBookingsResponseItem{
			ID:          booking.ID,
			SlotID:      booking.SlotID,
			Seats:       booking.Seats,
			AmountTotal: booking.AmountTotal,
			Status:      booking.Status,
		}
	}

	return result, nil
}

// Get returns one booking with its additional guests, scoped to the
// requesting guest.
func (s *BookingService) Get(ctx context.Context, guestID, bookingID int64) (*models.Booking, *models.PaymentIntent, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, nil, apperrors.ErrEventNotFound
	}
	if booking.GuestID != guestID {
		return nil, nil, apperrors.ErrForbidden
	}

	guests, err := s.bookingRepo.Guests(ctx, booking.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get booking guests: %w", err)
	}
	booking.AdditionalGuests = guests

	intent, err := s.intentRepo.GetByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	return booking, intent, nil
}
