package repository

import (
	"context"
	"database/sql"
	"fmt"

	"courtbase/internal/database"
	"courtbase/internal/models"
)

type EquipmentRepository struct {
	db *database.DB
}

func NewEquipmentRepository(db *database.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

const equipmentColumns = `id, name, equipment_type, condition, total_quantity,
	       quantity_available, rental_rate, active, created_at, updated_at`

func scanEquipment(row interface{ Scan(...any) error }, e *models.Equipment) error {
	return row.Scan(
		&e.ID,
		&e.Name,
		&e.EquipmentType,
		&e.Condition,
		&e.TotalQuantity,
		&e.QuantityAvailable,
		&e.RentalRate,
		&e.Active,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
}

func (r *EquipmentRepository) Create(ctx context.Context, equipment *models.Equipment) error {
	query := `
		INSERT INTO equipment (name, equipment_type, condition, total_quantity,
		                       quantity_available, rental_rate)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		equipment.Name,
		equipment.EquipmentType,
		equipment.Condition,
		equipment.TotalQuantity,
		equipment.QuantityAvailable,
		equipment.RentalRate,
	).Scan(&equipment.ID, &equipment.CreatedAt, &equipment.UpdatedAt)
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id int64) (*models.Equipment, error) {
	equipment := &models.Equipment{}
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`

	err := scanEquipment(r.db.QueryRowContext(ctx, query, id), equipment)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return equipment, err
}

// ListAvailable returns active equipment with stock, optionally filtered by
// type and by compatibility with a facility.
func (r *EquipmentRepository) ListAvailable(ctx context.Context, equipmentType string, facilityID int64) ([]models.Equipment, error) {
	query := `SELECT ` + equipmentColumns + `
		FROM equipment e
		WHERE e.active = TRUE AND e.quantity_available > 0`
	args := []any{}

	if equipmentType != "" {
		args = append(args, equipmentType)
		query += fmt.Sprintf(` AND e.equipment_type = $%d`, len(args))
	}
	if facilityID != 0 {
		args = append(args, facilityID)
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM facility_equipment fe
			WHERE fe.equipment_id = e.id AND fe.facility_id = $%d)`, len(args))
	}
	query += ` ORDER BY e.name`

	rows, err := r.db.QueryContext(ctx, query, args...)
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

func (r *EquipmentRepository) LinkFacility(ctx context.Context, equipmentID, facilityID int64) error {
	query := `
		INSERT INTO facility_equipment (facility_id, equipment_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, facilityID, equipmentID)
	return err
}

// IsCompatible reports whether the equipment is linked to the facility.
func (r *EquipmentRepository) IsCompatible(ctx context.Context, equipmentID, facilityID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM facility_equipment
			WHERE equipment_id = $1 AND facility_id = $2)`
	err := r.db.QueryRowContext(ctx, query, equipmentID, facilityID).Scan(&exists)
	return exists, err
}

// CheckoutAll decrements one unit of stock for every equipment id inside a
// single transaction. The conditional update keeps quantity_available >= 0;
// any item without stock rolls the whole checkout back.
func (r *EquipmentRepository) CheckoutAll(ctx context.Context, equipmentIDs []int64) error {
	if len(equipmentIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE equipment
		SET quantity_available = quantity_available - 1, updated_at = NOW()
		WHERE id = $1 AND quantity_available >= 1`

	for _, id := range equipmentIDs {
		res, err := tx.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("insufficient stock for equipment %d", id)
		}
	}

	return tx.Commit()
}

// ReturnAll restores one unit of stock for every equipment id. The update is
// capped at total_quantity so repeated returns cannot overshoot.
func (r *EquipmentRepository) ReturnAll(ctx context.Context, equipmentIDs []int64) error {
	if len(equipmentIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE equipment
		SET quantity_available = quantity_available + 1, updated_at = NOW()
		WHERE id = $1 AND quantity_available < total_quantity`

	for _, id := range equipmentIDs {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}
