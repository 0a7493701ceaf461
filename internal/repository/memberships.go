package repository

import (
	"context"
	"database/sql"
	"time"

	"courtbase/internal/database"
	"courtbase/internal/models"
)

type MembershipRepository struct {
	db *database.DB
}

func NewMembershipRepository(db *database.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

const membershipColumns = `id, customer_id, membership_type, start_date, end_date,
	       discount_percentage, payment_status, status, created_at, updated_at`

func scanMembership(row interface{ Scan(...any) error }, m *models.Membership) error {
	return row.Scan(
		&m.ID,
		&m.CustomerID,
		&m.MembershipType,
		&m.StartDate,
		&m.EndDate,
		&m.DiscountPercentage,
		&m.PaymentStatus,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

func (r *MembershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	query := `
		INSERT INTO memberships (customer_id, membership_type, start_date, end_date,
		                         discount_percentage, payment_status, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		membership.CustomerID,
		membership.MembershipType,
		membership.StartDate,
		membership.EndDate,
		membership.DiscountPercentage,
		membership.PaymentStatus,
		membership.Status,
	).Scan(&membership.ID, &membership.CreatedAt, &membership.UpdatedAt)
}

func (r *MembershipRepository) GetByID(ctx context.Context, id int64) (*models.Membership, error) {
	membership := &models.Membership{}
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1`

	err := scanMembership(r.db.QueryRowContext(ctx, query, id), membership)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return membership, err
}

func (r *MembershipRepository) GetByCustomerID(ctx context.Context, customerID int64) ([]models.Membership, error) {
	query := `SELECT ` + membershipColumns + `
		FROM memberships
		WHERE customer_id = $1
		ORDER BY start_date DESC`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []models.Membership
	for rows.Next() {
		var membership models.Membership
		if err := scanMembership(rows, &membership); err != nil {
			return nil, err
		}
		memberships = append(memberships, membership)
	}

	return memberships, rows.Err()
}

func (r *MembershipRepository) Update(ctx context.Context, membership *models.Membership) error {
	query := `
		UPDATE memberships
		SET membership_type = $1, start_date = $2, end_date = $3,
		    discount_percentage = $4, payment_status = $5, status = $6, updated_at = NOW()
		WHERE id = $7`

	_, err := r.db.ExecContext(ctx, query,
		membership.MembershipType,
		membership.StartDate,
		membership.EndDate,
		membership.DiscountPercentage,
		membership.PaymentStatus,
		membership.Status,
		membership.ID,
	)

	return err
}

// GetActiveForCustomer returns the newest membership that grants a discount
// on the given day: status active, paid, day inside the date range.
func (r *MembershipRepository) GetActiveForCustomer(ctx context.Context, customerID int64, day time.Time) (*models.Membership, error) {
	membership := &models.Membership{}
	query := `SELECT ` + membershipColumns + `
		FROM memberships
		WHERE customer_id = $1
		  AND status = 'active'
		  AND payment_status = 'paid'
		  AND start_date <= $2::date
		  AND end_date >= $2::date
		ORDER BY start_date DESC
		LIMIT 1`

	err := scanMembership(r.db.QueryRowContext(ctx, query, customerID, day), membership)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return membership, err
}

// ExpireEnded flips active memberships whose end date has passed to expired
// and returns them so the caller can publish events.
func (r *MembershipRepository) ExpireEnded(ctx context.Context, today time.Time) ([]models.Membership, error) {
	query := `
		UPDATE memberships
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND end_date < $1::date
		RETURNING ` + membershipColumns

	rows, err := r.db.QueryContext(ctx, query, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []models.Membership
	for rows.Next() {
		var membership models.Membership
		if err := scanMembership(rows, &membership); err != nil {
			return nil, err
		}
		expired = append(expired, membership)
	}

	return expired, rows.Err()
}
