package repository

import (
	"context"
	"database/sql"
	"time"

	"courtbase/internal/database"
	"courtbase/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, reference, facility_id, customer_id, start_datetime, end_datetime,
	       duration, total_cost, status, notes, is_recurring, recurrence_type,
	       recurrence_count, recurrence_end_date, parent_booking_id,
	       refund_percent, refund_note, reminder_sent, active, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }, b *models.Booking) error {
	return row.Scan(
		&b.ID,
		&b.Reference,
		&b.FacilityID,
		&b.CustomerID,
		&b.StartDatetime,
		&b.EndDatetime,
		&b.Duration,
		&b.TotalCost,
		&b.Status,
		&b.Notes,
		&b.IsRecurring,
		&b.RecurrenceType,
		&b.RecurrenceCount,
		&b.RecurrenceEnd,
		&b.ParentBookingID,
		&b.RefundPercent,
		&b.RefundNote,
		&b.ReminderSent,
		&b.Active,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (reference, facility_id, customer_id, start_datetime, end_datetime,
		                      duration, total_cost, status, notes, is_recurring, recurrence_type,
		                      recurrence_count, recurrence_end_date, parent_booking_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		booking.Reference,
		booking.FacilityID,
		booking.CustomerID,
		booking.StartDatetime,
		booking.EndDatetime,
		booking.Duration,
		booking.TotalCost,
		booking.Status,
		booking.Notes,
		booking.IsRecurring,
		booking.RecurrenceType,
		booking.RecurrenceCount,
		booking.RecurrenceEnd,
		booking.ParentBookingID,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	err := scanBooking(r.db.QueryRowContext(ctx, query, id), booking)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return booking, err
}

func (r *BookingRepository) GetByCustomerID(ctx context.Context, customerID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE customer_id = $1 AND active = TRUE
		ORDER BY start_datetime DESC`

	return r.queryBookings(ctx, query, customerID)
}

func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET start_datetime = $1, end_datetime = $2, duration = $3, total_cost = $4,
		    status = $5, notes = $6, refund_percent = $7, refund_note = $8,
		    reminder_sent = $9, updated_at = NOW()
		WHERE id = $10`

	_, err := r.db.ExecContext(ctx, query,
		booking.StartDatetime,
		booking.EndDatetime,
		booking.Duration,
		booking.TotalCost,
		booking.Status,
		booking.Notes,
		booking.RefundPercent,
		booking.RefundNote,
		booking.ReminderSent,
		booking.ID,
	)

	return err
}

// FindOverlapping returns non-cancelled bookings of the facility whose
// [start, end) window intersects the given one. Half-open semantics:
// existing.start < end AND existing.end > start.
func (r *BookingRepository) FindOverlapping(ctx context.Context, facilityID int64, start, end time.Time, excludeID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE facility_id = $1
		  AND id != $2
		  AND status IN ('draft', 'confirmed')
		  AND start_datetime < $3
		  AND end_datetime > $4
		ORDER BY start_datetime`

	return r.queryBookings(ctx, query, facilityID, excludeID, end, start)
}

// ListForFacilityDay returns draft/confirmed bookings touching the given day,
// used for the availability computation.
func (r *BookingRepository) ListForFacilityDay(ctx context.Context, facilityID int64, dayStart, dayEnd time.Time) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE facility_id = $1
		  AND status IN ('draft', 'confirmed')
		  AND start_datetime < $2
		  AND end_datetime > $3
		ORDER BY start_datetime`

	return r.queryBookings(ctx, query, facilityID, dayEnd, dayStart)
}

func (r *BookingRepository) AddEquipment(ctx context.Context, bookingID, equipmentID int64) error {
	query := `INSERT INTO booking_equipment (booking_id, equipment_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, bookingID, equipmentID)
	return err
}

func (r *BookingRepository) ClearEquipment(ctx context.Context, bookingID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM booking_equipment WHERE booking_id = $1`, bookingID)
	return err
}

func (r *BookingRepository) GetEquipment(ctx context.Context, bookingID int64) ([]models.Equipment, error) {
	query := `
		SELECT e.id, e.name, e.equipment_type, e.condition, e.total_quantity,
		       e.quantity_available, e.rental_rate, e.active, e.created_at, e.updated_at
		FROM equipment e
		JOIN booking_equipment be ON e.id = be.equipment_id
		WHERE be.booking_id = $1
		ORDER BY e.name`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Equipment
	for rows.Next() {
		var equipment models.Equipment
		if err := scanEquipment(rows, &equipment); err != nil {
			return nil, err
		}
		items = append(items, equipment)
	}

	return items, rows.Err()
}

// GetChildren returns the child bookings generated from a recurring parent.
func (r *BookingRepository) GetChildren(ctx context.Context, parentID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE parent_booking_id = $1
		ORDER BY start_datetime`

	return r.queryBookings(ctx, query, parentID)
}

// GetUpcomingForReminder returns confirmed bookings starting within the lead
// window that have not been reminded yet.
func (r *BookingRepository) GetUpcomingForReminder(ctx context.Context, until time.Time) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'confirmed'
		  AND reminder_sent = FALSE
		  AND start_datetime > NOW()
		  AND start_datetime <= $1
		ORDER BY start_datetime ASC`

	return r.queryBookings(ctx, query, until)
}

// ArchiveFinished flags completed/cancelled bookings that ended before the
// cutoff as inactive. Safe to re-run.
func (r *BookingRepository) ArchiveFinished(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET active = FALSE, updated_at = NOW()
		WHERE status IN ('completed', 'cancelled')
		  AND active = TRUE
		  AND end_datetime < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var booking models.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}
