package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"supperclub/internal/database"
	apperrors "supperclub/internal/errors"
	"supperclub/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateBookingInput carries everything the ledger snapshots at booking
// time. Seats is authoritative for pricing; the additional-guest list is
// stored as provided.
type CreateBookingInput struct {
	SlotID           int64
	GuestID          int64
	Seats            int
	GuestTier        string
	PricePerSeat     int64
	Currency         string
	PrimaryName      string
	PrimaryContact   string
	AdditionalGuests []models.GuestInfo
}

// Create inserts the booking in PAYMENT_PENDING together with its
// additional-guest rows. A violation of the active-booking unique index
// surfaces as ErrDuplicateBooking so callers can compensate and report it
// as a business outcome.
func (r *BookingRepository) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	booking := &models.Booking{
		SlotID:         input.SlotID,
		GuestID:        input.GuestID,
		Seats:          input.Seats,
		GuestTier:      input.GuestTier,
		PricePerSeat:   input.PricePerSeat,
		AmountTotal:    input.PricePerSeat * int64(input.Seats),
		Currency:       input.Currency,
		Status:         models.BookingStatusPaymentPending,
		PrimaryName:    input.PrimaryName,
		PrimaryContact: input.PrimaryContact,
	}

	query := `
		INSERT INTO bookings (slot_id, guest_id, seats, guest_tier, price_per_seat, amount_total, currency, status, primary_name, primary_contact)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		booking.SlotID,
		booking.GuestID,
		booking.Seats,
		booking.GuestTier,
		booking.PricePerSeat,
		booking.AmountTotal,
		booking.Currency,
		booking.Status,
		booking.PrimaryName,
		booking.PrimaryContact,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateBooking
		}
		return nil, err
	}

	for i, guest := range input.AdditionalGuests {
		ag := models.AdditionalGuest{
			BookingID: booking.ID,
			Position:  i + 1,
			FullName:  guest.Name,
			Contact:   guest.Contact,
			Age:       guest.Age,
			Gender:    guest.Gender,
		}
		insertQuery := `
			INSERT INTO booking_guests (booking_id, position, full_name, contact, age, gender)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`
		if err := tx.QueryRowContext(ctx, insertQuery,
			ag.BookingID, ag.Position, ag.FullName, ag.Contact, ag.Age, ag.Gender,
		).Scan(&ag.ID); err != nil {
			return nil, err
		}
		booking.AdditionalGuests = append(booking.AdditionalGuests, ag)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return booking, nil
}

// Delete removes a booking and its guest rows. Used only by compensation
// before a payment intent exists.
func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	return err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `
		SELECT id, slot_id, guest_id, seats, guest_tier, price_per_seat, amount_total, currency, status, primary_name, primary_contact, created_at, updated_at
		FROM bookings
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.SlotID,
		&booking.GuestID,
		&booking.Seats,
		&booking.GuestTier,
		&booking.PricePerSeat,
		&booking.AmountTotal,
		&booking.Currency,
		&booking.Status,
		&booking.PrimaryName,
		&booking.PrimaryContact,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return booking, err
}

func (r *BookingRepository) GetByGuestID(ctx context.Context, guestID int64) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `
		SELECT id, slot_id, guest_id, seats, guest_tier, price_per_seat, amount_total, currency, status, primary_name, primary_contact, created_at, updated_at
		FROM bookings
		WHERE guest_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var booking models.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.SlotID,
			&booking.GuestID,
			&booking.Seats,
			&booking.GuestTier,
			&booking.PricePerSeat,
			&booking.AmountTotal,
			&booking.Currency,
			&booking.Status,
			&booking.PrimaryName,
			&booking.PrimaryContact,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// ActiveSeats returns the number of non-cancelled bookings and the seat sum
// a guest holds on one slot. Both eligibility rules read from this single
// aggregate.
func (r *BookingRepository) ActiveSeats(ctx context.Context, guestID, slotID int64) (int, int, error) {
	var bookings, seats int
	query := `
		SELECT COUNT(*), COALESCE(SUM(seats), 0)
		FROM bookings
		WHERE guest_id = $1 AND slot_id = $2 AND status <> 'CANCELLED'`

	err := r.db.QueryRowContext(ctx, query, guestID, slotID).Scan(&bookings, &seats)
	if err != nil {
		return 0, 0, err
	}

	return bookings, seats, nil
}

// UpdateStatus moves a booking to the given lifecycle status.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	return err
}

// GetExpiredPending returns bookings created before cutoff that are still
// waiting on a payment intent in PENDING.
func (r *BookingRepository) GetExpiredPending(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `
		SELECT b.id, b.slot_id, b.guest_id, b.seats, b.guest_tier, b.price_per_seat, b.amount_total, b.currency, b.status, b.primary_name, b.primary_contact, b.created_at, b.updated_at
		FROM bookings b
		JOIN payment_intents pi ON pi.booking_id = b.id
		WHERE b.status = 'PAYMENT_PENDING' AND pi.status = 'PENDING' AND b.created_at < $1
		ORDER BY b.created_at`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var booking models.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.SlotID,
			&booking.GuestID,
			&booking.Seats,
			&booking.GuestTier,
			&booking.PricePerSeat,
			&booking.AmountTotal,
			&booking.Currency,
			&booking.Status,
			&booking.PrimaryName,
			&booking.PrimaryContact,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func (r *BookingRepository) Guests(ctx context.Context, bookingID int64) ([]models.AdditionalGuest, error) {
	var guests []models.AdditionalGuest
	query := `
		SELECT id, booking_id, position, full_name, contact, age, gender
		FROM booking_guests
		WHERE booking_id = $1
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var g models.AdditionalGuest
		if err := rows.Scan(&g.ID, &g.BookingID, &g.Position, &g.FullName, &g.Contact, &g.Age, &g.Gender); err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}

	return guests, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
