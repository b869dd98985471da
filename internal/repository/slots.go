package repository

import (
	"context"
	"database/sql"
	"fmt"

	"supperclub/internal/database"
	apperrors "supperclub/internal/errors"
	"supperclub/internal/models"
)

type SlotRepository struct {
	db *database.DB
}

func NewSlotRepository(db *database.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

func (r *SlotRepository) Create(ctx context.Context, slot *models.EventSlot, tierPrices map[string]int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO event_slots (host_id, title, description, starts_at, max_guests, seats_remaining, status, base_price, currency)
		VALUES ($1, $2, $3, $4, $5, $5, 'OPEN', $6, $7)
		RETURNING id, status, seats_remaining, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		slot.HostID,
		slot.Title,
		slot.Description,
		slot.StartsAt,
		slot.MaxGuests,
		slot.BasePrice,
		slot.Currency,
	).Scan(&slot.ID, &slot.Status, &slot.SeatsRemaining, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		return err
	}

	for tier, price := range tierPrices {
		insertQuery := `INSERT INTO slot_tier_prices (slot_id, tier, price_per_seat) VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, insertQuery, slot.ID, tier, price); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*models.EventSlot, error) {
	slot := &models.EventSlot{}
	query := `
		SELECT id, host_id, title, description, starts_at, max_guests, seats_remaining, status, base_price, currency, created_at, updated_at
		FROM event_slots
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&slot.ID,
		&slot.HostID,
		&slot.Title,
		&slot.Description,
		&slot.StartsAt,
		&slot.MaxGuests,
		&slot.SeatsRemaining,
		&slot.Status,
		&slot.BasePrice,
		&slot.Currency,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return slot, err
}

func (r *SlotRepository) TierPrices(ctx context.Context, slotID int64) ([]models.TierPrice, error) {
	var prices []models.TierPrice
	query := `SELECT slot_id, tier, price_per_seat FROM slot_tier_prices WHERE slot_id = $1`

	rows, err := r.db.QueryContext(ctx, query, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.TierPrice
		if err := rows.Scan(&p.SlotID, &p.Tier, &p.PricePerSeat); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}

	return prices, rows.Err()
}

func (r *SlotRepository) List(ctx context.Context, page, pageSize int) ([]models.EventSlot, error) {
	var slots []models.EventSlot
	query := `
		SELECT id, host_id, title, description, starts_at, max_guests, seats_remaining, status, base_price, currency, created_at, updated_at
		FROM event_slots
		ORDER BY starts_at ASC`

	var args []interface{}
	if page > 0 && pageSize > 0 {
		offset := (page - 1) * pageSize
		query += " LIMIT $1 OFFSET $2"
		args = append(args, pageSize, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var slot models.EventSlot
		err := rows.Scan(
			&slot.ID,
			&slot.HostID,
			&slot.Title,
			&slot.Description,
			&slot.StartsAt,
			&slot.MaxGuests,
			&slot.SeatsRemaining,
			&slot.Status,
			&slot.BasePrice,
			&slot.Currency,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

// Reserve decrements seats_remaining by seats in a single conditional
// update. The WHERE clause re-checks status and availability at write time,
// so concurrent reservers are totally ordered by the store; no two can both
// succeed past the remaining capacity. Flips status to FULL exactly when
// the counter reaches zero.
func (r *SlotRepository) Reserve(ctx context.Context, slotID int64, seats int) (*models.SlotSnapshot, error) {
	if seats < 1 {
		return nil, fmt.Errorf("seats must be >= 1, got %d", seats)
	}

	snapshot := &models.SlotSnapshot{}
	query := `
		UPDATE event_slots
		SET seats_remaining = seats_remaining - $2,
		    status = CASE WHEN seats_remaining - $2 = 0 THEN 'FULL' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'OPEN' AND seats_remaining >= $2
		RETURNING id, seats_remaining, status`

	err := r.db.QueryRowContext(ctx, query, slotID, seats).Scan(
		&snapshot.SlotID,
		&snapshot.SeatsRemaining,
		&snapshot.Status,
	)
	if err == sql.ErrNoRows {
		return nil, r.classifyReserveFailure(ctx, slotID)
	}
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// classifyReserveFailure distinguishes why the conditional update matched no
// row: missing slot, terminal status, or losing the seat race. A re-read
// that finds FULL means a concurrent reserver took the last seats, which is
// a lost race, not a closed slot.
func (r *SlotRepository) classifyReserveFailure(ctx context.Context, slotID int64) error {
	slot, err := r.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot == nil {
		return apperrors.ErrEventNotFound
	}
	if slot.Status == models.SlotStatusCancelled || slot.Status == models.SlotStatusCompleted {
		return apperrors.ErrSlotNotOpen
	}
	return apperrors.ErrInsufficientSeats
}

// Release adds back seats that were actually reserved. Safe to call however
// the slot has changed since: the counter is capped at max_guests, and only
// FULL flips back to OPEN, so CANCELLED and COMPLETED slots keep their
// status while the counter is restored.
func (r *SlotRepository) Release(ctx context.Context, slotID int64, seats int) (*models.SlotSnapshot, error) {
	if seats < 1 {
		return nil, fmt.Errorf("seats must be >= 1, got %d", seats)
	}

	snapshot := &models.SlotSnapshot{}
	query := `
		UPDATE event_slots
		SET seats_remaining = LEAST(seats_remaining + $2, max_guests),
		    status = CASE WHEN status = 'FULL' THEN 'OPEN' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, seats_remaining, status`

	err := r.db.QueryRowContext(ctx, query, slotID, seats).Scan(
		&snapshot.SlotID,
		&snapshot.SeatsRemaining,
		&snapshot.Status,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// SetStatus moves a slot owned by hostID from an active status to CANCELLED
// or COMPLETED. Returns ErrForbidden when the slot exists but belongs to a
// different host.
func (r *SlotRepository) SetStatus(ctx context.Context, slotID, hostID int64, status string) (*models.EventSlot, error) {
	slot := &models.EventSlot{}
	query := `
		UPDATE event_slots
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND host_id = $2 AND status IN ('OPEN', 'FULL')
		RETURNING id, host_id, title, description, starts_at, max_guests, seats_remaining, status, base_price, currency, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, slotID, hostID, status).Scan(
		&slot.ID,
		&slot.HostID,
		&slot.Title,
		&slot.Description,
		&slot.StartsAt,
		&slot.MaxGuests,
		&slot.SeatsRemaining,
		&slot.Status,
		&slot.BasePrice,
		&slot.Currency,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		existing, lookupErr := r.GetByID(ctx, slotID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing == nil {
			return nil, apperrors.ErrEventNotFound
		}
		if existing.HostID != hostID {
			return nil, apperrors.ErrForbidden
		}
		return nil, apperrors.ErrSlotNotOpen
	}
	if err != nil {
		return nil, err
	}

	return slot, nil
}
