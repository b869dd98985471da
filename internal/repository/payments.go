package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"supperclub/internal/database"
	"supperclub/internal/models"
)

type PaymentIntentRepository struct {
	db *database.DB
}

func NewPaymentIntentRepository(db *database.DB) *PaymentIntentRepository {
	return &PaymentIntentRepository{db: db}
}

// Create inserts the single PENDING intent for a booking. The unique
// constraint on booking_id keeps the relation 1:1 even under retries.
func (r *PaymentIntentRepository) Create(ctx context.Context, bookingID, amount int64, currency string) (*models.PaymentIntent, error) {
	intent := &models.PaymentIntent{
		ID:        uuid.New().String(),
		BookingID: bookingID,
		Amount:    amount,
		Currency:  currency,
		Status:    models.IntentStatusPending,
	}

	query := `
		INSERT INTO payment_intents (id, booking_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		intent.ID,
		intent.BookingID,
		intent.Amount,
		intent.Currency,
		intent.Status,
	).Scan(&intent.CreatedAt, &intent.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return intent, nil
}

func (r *PaymentIntentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*models.PaymentIntent, error) {
	intent := &models.PaymentIntent{}
	query := `
		SELECT id, booking_id, amount, currency, status, created_at, updated_at
		FROM payment_intents
		WHERE booking_id = $1`

	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&intent.ID,
		&intent.BookingID,
		&intent.Amount,
		&intent.Currency,
		&intent.Status,
		&intent.CreatedAt,
		&intent.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return intent, err
}

func (r *PaymentIntentRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE payment_intents SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}
