package repository

import (
	"context"
	"database/sql"

	"courtbase/internal/database"
	"courtbase/internal/models"
)

type FacilityRepository struct {
	db *database.DB
}

func NewFacilityRepository(db *database.DB) *FacilityRepository {
	return &FacilityRepository{db: db}
}

const facilityColumns = `id, name, facility_type, description, capacity, hourly_rate, location,
	       operating_hours_start, operating_hours_end, status, active, created_at, updated_at`

func scanFacility(row interface{ Scan(...any) error }, f *models.Facility) error {
	return row.Scan(
		&f.ID,
		&f.Name,
		&f.FacilityType,
		&f.Description,
		&f.Capacity,
		&f.HourlyRate,
		&f.Location,
		&f.OperatingHoursStart,
		&f.OperatingHoursEnd,
		&f.Status,
		&f.Active,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
}

func (r *FacilityRepository) Create(ctx context.Context, facility *models.Facility) error {
	query := `
		INSERT INTO facilities (name, facility_type, description, capacity, hourly_rate,
		                        location, operating_hours_start, operating_hours_end, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		facility.Name,
		facility.FacilityType,
		facility.Description,
		facility.Capacity,
		facility.HourlyRate,
		facility.Location,
		facility.OperatingHoursStart,
		facility.OperatingHoursEnd,
		facility.Status,
	).Scan(&facility.ID, &facility.CreatedAt, &facility.UpdatedAt)
}

func (r *FacilityRepository) GetByID(ctx context.Context, id int64) (*models.Facility, error) {
	facility := &models.Facility{}
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE id = $1`

	err := scanFacility(r.db.QueryRowContext(ctx, query, id), facility)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return facility, err
}

func (r *FacilityRepository) List(ctx context.Context, facilityType string) ([]models.Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE active = TRUE`
	args := []any{}

	if facilityType != "" {
		query += ` AND facility_type = $1`
		args = append(args, facilityType)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facilities []models.Facility
	for rows.Next() {
		var facility models.Facility
		if err := scanFacility(rows, &facility); err != nil {
			return nil, err
		}
		facilities = append(facilities, facility)
	}

	return facilities, rows.Err()
}

func (r *FacilityRepository) Update(ctx context.Context, facility *models.Facility) error {
	query := `
		UPDATE facilities
		SET name = $1, facility_type = $2, description = $3, capacity = $4,
		    hourly_rate = $5, location = $6, operating_hours_start = $7,
		    operating_hours_end = $8, status = $9, updated_at = NOW()
		WHERE id = $10`

	_, err := r.db.ExecContext(ctx, query,
		facility.Name,
		facility.FacilityType,
		facility.Description,
		facility.Capacity,
		facility.HourlyRate,
		facility.Location,
		facility.OperatingHoursStart,
		facility.OperatingHoursEnd,
		facility.Status,
		facility.ID,
	)

	return err
}

// Archive hides the facility from listings and availability queries.
func (r *FacilityRepository) Archive(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE facilities SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// Search is the SQL fallback used when Elasticsearch is not configured.
func (r *FacilityRepository) Search(ctx context.Context, text, facilityType string) ([]models.Facility, error) {
	query := `SELECT ` + facilityColumns + `
		FROM facilities
		WHERE active = TRUE
		  AND (name ILIKE '%' || $1 || '%'
		       OR description ILIKE '%' || $1 || '%'
		       OR location ILIKE '%' || $1 || '%')`
	args := []any{text}

	if facilityType != "" {
		query += ` AND facility_type = $2`
		args = append(args, facilityType)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facilities []models.Facility
	for rows.Next() {
		var facility models.Facility
		if err := scanFacility(rows, &facility); err != nil {
			return nil, err
		}
		facilities = append(facilities, facility)
	}

	return facilities, rows.Err()
}
