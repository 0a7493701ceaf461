package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createCustomersTable,
		createFacilitiesTable,
		createEquipmentTable,
		createFacilityEquipmentTable,
		createBookingsTable,
		createBookingEquipmentTable,
		createMembershipsTable,
		createWaitlistTable,
		createBookingRangeIndex,
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

const createCustomersTable = `
CREATE TABLE IF NOT EXISTS customers (
    id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    name VARCHAR(200) NOT NULL,
    phone VARCHAR(50),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    registered_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createFacilitiesTable = `
CREATE TABLE IF NOT EXISTS facilities (
    id SERIAL PRIMARY KEY,
    name VARCHAR(200) UNIQUE NOT NULL,
    facility_type VARCHAR(20) NOT NULL,
    description TEXT,
    capacity INTEGER NOT NULL DEFAULT 1,
    hourly_rate DECIMAL(10,2) NOT NULL DEFAULT 0,
    location VARCHAR(255),
    operating_hours_start DOUBLE PRECISION NOT NULL DEFAULT 8.0,
    operating_hours_end DOUBLE PRECISION NOT NULL DEFAULT 22.0,
    status VARCHAR(20) NOT NULL DEFAULT 'available',
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (facility_type IN ('court', 'gym', 'pool', 'field')),
    CHECK (status IN ('available', 'maintenance')),
    CHECK (capacity >= 1),
    CHECK (hourly_rate >= 0),
    CHECK (operating_hours_start >= 0 AND operating_hours_start < 24),
    CHECK (operating_hours_end > 0 AND operating_hours_end <= 24),
    CHECK (operating_hours_start < operating_hours_end)
);`

const createEquipmentTable = `
CREATE TABLE IF NOT EXISTS equipment (
    id SERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    equipment_type VARCHAR(20) NOT NULL,
    condition VARCHAR(20) NOT NULL DEFAULT 'good',
    total_quantity INTEGER NOT NULL DEFAULT 0,
    quantity_available INTEGER NOT NULL DEFAULT 0,
    rental_rate DECIMAL(10,2) NOT NULL DEFAULT 0,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (equipment_type IN ('ball', 'racket', 'net', 'mat', 'weights')),
    CHECK (condition IN ('excellent', 'good', 'fair', 'poor')),
    CHECK (total_quantity >= 0),
    CHECK (quantity_available >= 0 AND quantity_available <= total_quantity),
    CHECK (rental_rate >= 0)
);`

const createFacilityEquipmentTable = `
CREATE TABLE IF NOT EXISTS facility_equipment (
    id SERIAL PRIMARY KEY,
    facility_id INTEGER NOT NULL REFERENCES facilities(id) ON DELETE CASCADE,
    equipment_id INTEGER NOT NULL REFERENCES equipment(id) ON DELETE CASCADE,

    UNIQUE(facility_id, equipment_id)
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    reference VARCHAR(20) UNIQUE NOT NULL,
    facility_id INTEGER NOT NULL REFERENCES facilities(id) ON DELETE RESTRICT,
    customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE RESTRICT,
    start_datetime TIMESTAMP NOT NULL,
    end_datetime TIMESTAMP NOT NULL,
    duration DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_cost DECIMAL(10,2) NOT NULL DEFAULT 0,
    status VARCHAR(20) NOT NULL DEFAULT 'draft',
    notes TEXT,
    is_recurring BOOLEAN NOT NULL DEFAULT FALSE,
    recurrence_type VARCHAR(10),
    recurrence_count INTEGER,
    recurrence_end_date TIMESTAMP,
    parent_booking_id INTEGER REFERENCES bookings(id) ON DELETE SET NULL,
    refund_percent DECIMAL(5,2),
    refund_note TEXT,
    reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('draft', 'confirmed', 'completed', 'cancelled')),
    CHECK (recurrence_type IS NULL OR recurrence_type IN ('daily', 'weekly', 'monthly')),
    CHECK (end_datetime > start_datetime)
);`

const createBookingEquipmentTable = `
CREATE TABLE IF NOT EXISTS booking_equipment (
    id SERIAL PRIMARY KEY,
    booking_id INTEGER NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    equipment_id INTEGER NOT NULL REFERENCES equipment(id) ON DELETE CASCADE,
    reserved_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(booking_id, equipment_id)
);`

const createMembershipsTable = `
CREATE TABLE IF NOT EXISTS memberships (
    id SERIAL PRIMARY KEY,
    customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
    membership_type VARCHAR(10) NOT NULL DEFAULT 'basic',
    start_date DATE NOT NULL,
    end_date DATE NOT NULL,
    discount_percentage DECIMAL(5,2) NOT NULL DEFAULT 0,
    payment_status VARCHAR(10) NOT NULL DEFAULT 'pending',
    status VARCHAR(10) NOT NULL DEFAULT 'active',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (membership_type IN ('basic', 'premium', 'vip')),
    CHECK (payment_status IN ('pending', 'paid')),
    CHECK (status IN ('active', 'expired', 'cancelled')),
    CHECK (discount_percentage >= 0 AND discount_percentage <= 100),
    CHECK (end_date > start_date)
);`

const createWaitlistTable = `
CREATE TABLE IF NOT EXISTS waitlist (
    id SERIAL PRIMARY KEY,
    customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
    facility_id INTEGER NOT NULL REFERENCES facilities(id) ON DELETE CASCADE,
    preferred_date DATE,
    preferred_time_start DOUBLE PRECISION,
    preferred_time_end DOUBLE PRECISION,
    status VARCHAR(10) NOT NULL DEFAULT 'waiting',
    notified_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('waiting', 'notified', 'booked', 'expired'))
);`

const createBookingRangeIndex = `
CREATE INDEX IF NOT EXISTS bookings_facility_range_idx
ON bookings (facility_id, start_datetime, end_datetime)
WHERE status IN ('draft', 'confirmed');`
