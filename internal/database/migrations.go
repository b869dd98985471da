package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createEventSlotsTable,
		createSlotTierPricesTable,
		createBookingsTable,
		createBookingGuestsTable,
		createPaymentIntentsTable,
		createActiveBookingIndex,
		createSlotsStartsAtIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    user_id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    first_name VARCHAR(100) NOT NULL,
    surname VARCHAR(100) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'GUEST',
    tier VARCHAR(30) NOT NULL DEFAULT 'STANDARD',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    suspended BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at TIMESTAMP NOT NULL DEFAULT NOW(),
    last_logged_in TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (role IN ('GUEST', 'HOST', 'ADMIN'))
);`

const createEventSlotsTable = `
CREATE TABLE IF NOT EXISTS event_slots (
    id SERIAL PRIMARY KEY,
    host_id INTEGER NOT NULL REFERENCES users(user_id),
    title VARCHAR(500) NOT NULL,
    description TEXT,
    starts_at TIMESTAMP NOT NULL,
    max_guests INTEGER NOT NULL CHECK (max_guests >= 1),
    seats_remaining INTEGER NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'OPEN',
    base_price BIGINT NOT NULL DEFAULT 0,
    currency CHAR(3) NOT NULL DEFAULT 'EUR',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('OPEN', 'FULL', 'CANCELLED', 'COMPLETED')),
    CHECK (seats_remaining >= 0 AND seats_remaining <= max_guests)
);`

const createSlotTierPricesTable = `
CREATE TABLE IF NOT EXISTS slot_tier_prices (
    slot_id INTEGER NOT NULL REFERENCES event_slots(id) ON DELETE CASCADE,
    tier VARCHAR(30) NOT NULL,
    price_per_seat BIGINT NOT NULL,

    UNIQUE(slot_id, tier)
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    slot_id INTEGER NOT NULL REFERENCES event_slots(id),
    guest_id INTEGER NOT NULL REFERENCES users(user_id),
    seats INTEGER NOT NULL CHECK (seats >= 1),
    guest_tier VARCHAR(30) NOT NULL,
    price_per_seat BIGINT NOT NULL,
    amount_total BIGINT NOT NULL,
    currency CHAR(3) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'PAYMENT_PENDING',
    primary_name VARCHAR(200) NOT NULL,
    primary_contact VARCHAR(200) NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('PAYMENT_PENDING', 'CONFIRMED', 'CANCELLED'))
);`

const createBookingGuestsTable = `
CREATE TABLE IF NOT EXISTS booking_guests (
    id SERIAL PRIMARY KEY,
    booking_id INTEGER NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    full_name VARCHAR(200) NOT NULL,
    contact VARCHAR(200) NOT NULL DEFAULT '',
    age INTEGER,
    gender VARCHAR(20),

    UNIQUE(booking_id, position)
);`

const createPaymentIntentsTable = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";
CREATE TABLE IF NOT EXISTS payment_intents (
    id UUID PRIMARY KEY,
    booking_id INTEGER NOT NULL UNIQUE REFERENCES bookings(id) ON DELETE CASCADE,
    amount BIGINT NOT NULL,
    currency CHAR(3) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('PENDING', 'PAID', 'FAILED'))
);`

// One active booking per (guest, slot); the store-level authority behind
// the duplicate-booking rule under concurrent first attempts.
const createActiveBookingIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_guest_slot_idx
ON bookings (guest_id, slot_id)
WHERE status <> 'CANCELLED';`

const createSlotsStartsAtIndex = `
CREATE INDEX IF NOT EXISTS event_slots_starts_at_idx
ON event_slots (starts_at);`
