package repository

import (
	"context"
	"database/sql"

	"courtbase/internal/database"
	"courtbase/internal/models"
)

type CustomerRepository struct {
	db *database.DB
}

func NewCustomerRepository(db *database.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (email, password_hash, name, phone, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, registered_at`

	return r.db.QueryRowContext(ctx, query,
		customer.Email,
		customer.PasswordHash,
		customer.Name,
		customer.Phone,
		customer.IsActive,
	).Scan(&customer.ID, &customer.RegisteredAt)
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `
		SELECT id, email, password_hash, name, phone, is_active, registered_at
		FROM customers
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&customer.ID,
		&customer.Email,
		&customer.PasswordHash,
		&customer.Name,
		&customer.Phone,
		&customer.IsActive,
		&customer.RegisteredAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return customer, err
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `
		SELECT id, email, password_hash, name, phone, is_active, registered_at
		FROM customers
		WHERE email = $1`

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&customer.ID,
		&customer.Email,
		&customer.PasswordHash,
		&customer.Name,
		&customer.Phone,
		&customer.IsActive,
		&customer.RegisteredAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return customer, err
}
