package repository

import (
	"context"
	"database/sql"
	"time"

	"courtbase/internal/database"
	"courtbase/internal/models"
)

type WaitlistRepository struct {
	db *database.DB
}

func NewWaitlistRepository(db *database.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

const waitlistColumns = `id, customer_id, facility_id, preferred_date, preferred_time_start,
	       preferred_time_end, status, notified_at, created_at, updated_at`

func scanWaitlistEntry(row interface{ Scan(...any) error }, w *models.WaitlistEntry) error {
	return row.Scan(
		&w.ID,
		&w.CustomerID,
		&w.FacilityID,
		&w.PreferredDate,
		&w.PreferredTimeStart,
		&w.PreferredTimeEnd,
		&w.Status,
		&w.NotifiedAt,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
}

func (r *WaitlistRepository) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	query := `
		INSERT INTO waitlist (customer_id, facility_id, preferred_date,
		                      preferred_time_start, preferred_time_end, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		entry.CustomerID,
		entry.FacilityID,
		entry.PreferredDate,
		entry.PreferredTimeStart,
		entry.PreferredTimeEnd,
		entry.Status,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *WaitlistRepository) GetByID(ctx context.Context, id int64) (*models.WaitlistEntry, error) {
	entry := &models.WaitlistEntry{}
	query := `SELECT ` + waitlistColumns + ` FROM waitlist WHERE id = $1`

	err := scanWaitlistEntry(r.db.QueryRowContext(ctx, query, id), entry)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return entry, err
}

func (r *WaitlistRepository) ListByFacility(ctx context.Context, facilityID int64) ([]models.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + `
		FROM waitlist
		WHERE facility_id = $1
		ORDER BY created_at ASC, id ASC`

	return r.queryEntries(ctx, query, facilityID)
}

// FindWaitingCandidates returns waiting entries for a facility whose
// preferred date is within the window (or who stated no preference),
// oldest first so notification order stays FIFO.
func (r *WaitlistRepository) FindWaitingCandidates(ctx context.Context, facilityID int64, windowStart, windowEnd time.Time) ([]models.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + `
		FROM waitlist
		WHERE facility_id = $1
		  AND status = 'waiting'
		  AND (preferred_date IS NULL
		       OR (preferred_date >= $2::date AND preferred_date <= $3::date))
		ORDER BY created_at ASC, id ASC`

	return r.queryEntries(ctx, query, facilityID, windowStart, windowEnd)
}

func (r *WaitlistRepository) UpdateStatus(ctx context.Context, id int64, status string, notifiedAt *time.Time) error {
	query := `
		UPDATE waitlist
		SET status = $1, notified_at = COALESCE($2, notified_at), updated_at = NOW()
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, notifiedAt, id)
	return err
}

// ExpireStale expires notified entries unanswered past the deadline and
// waiting entries whose preferred date has passed. Both sweeps are
// idempotent. Returns the number of entries touched.
func (r *WaitlistRepository) ExpireStale(ctx context.Context, notifiedBefore time.Time, today time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE waitlist
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'notified' AND notified_at < $1`, notifiedBefore)
	if err != nil {
		return 0, err
	}
	notifiedExpired, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	res, err = r.db.ExecContext(ctx, `
		UPDATE waitlist
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'waiting' AND preferred_date IS NOT NULL AND preferred_date < $1::date`, today)
	if err != nil {
		return notifiedExpired, err
	}
	waitingExpired, err := res.RowsAffected()
	if err != nil {
		return notifiedExpired, err
	}

	return notifiedExpired + waitingExpired, nil
}

func (r *WaitlistRepository) queryEntries(ctx context.Context, query string, args ...any) ([]models.WaitlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.WaitlistEntry
	for rows.Next() {
		var entry models.WaitlistEntry
		if err := scanWaitlistEntry(rows, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
