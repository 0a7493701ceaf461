package service

import (
	"context"
	"fmt"

	"courtbase/internal/errors"
	"courtbase/internal/logger"
	"courtbase/internal/models"
	"courtbase/internal/repository"
)

type EquipmentService struct {
	equipmentRepo *repository.EquipmentRepository
	facilityRepo  *repository.FacilityRepository
}

func NewEquipmentService(equipmentRepo *repository.EquipmentRepository, facilityRepo *repository.FacilityRepository) *EquipmentService {
	return &EquipmentService{
		equipmentRepo: equipmentRepo,
		facilityRepo:  facilityRepo,
	}
}

// Create заводит позицию инвентаря и привязывает её к совместимым площадкам.
func (s *EquipmentService) Create(ctx context.Context, req *models.CreateEquipmentRequest) (*models.Equipment, error) {
	switch req.EquipmentType {
	case "ball", "racket", "net", "mat", "weights":
	default:
		return nil, errors.NewValidation("invalid equipment type: %s", req.EquipmentType)
	}
	if req.TotalQuantity < 1 {
		return nil, errors.NewValidation("total quantity must be at least 1")
	}
	if req.RentalRate < 0 {
		return nil, errors.NewValidation("rental rate cannot be negative")
	}

	condition := req.Condition
	if condition == "" {
		condition = "good"
	}
	switch condition {
	case "excellent", "good", "fair", "poor":
	default:
		return nil, errors.NewValidation("invalid equipment condition: %s", condition)
	}

	equipment := &models.Equipment{
		Name:              req.Name,
		EquipmentType:     req.EquipmentType,
		Condition:         condition,
		TotalQuantity:     req.TotalQuantity,
		QuantityAvailable: req.TotalQuantity,
		RentalRate:        req.RentalRate,
		Active:            true,
	}

	if err := s.equipmentRepo.Create(ctx, equipment); err != nil {
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}

	for _, facilityID := range req.FacilityIDs {
		facility, err := s.facilityRepo.GetByID(ctx, facilityID)
		if err != nil {
			return nil, fmt.Errorf("failed to load facility: %w", err)
		}
		if facility == nil || !facility.Active {
			return nil, errors.NewValidation("facility %d does not exist", facilityID)
		}
		if err := s.equipmentRepo.LinkFacility(ctx, equipment.ID, facilityID); err != nil {
			return nil, fmt.Errorf("failed to link equipment to facility: %w", err)
		}
	}

	logger.WithContext(ctx).Info("Equipment created",
		"equipment_id", equipment.ID,
		"name", equipment.Name,
		"total_quantity", equipment.TotalQuantity)
	return equipment, nil
}

func (s *EquipmentService) Get(ctx context.Context, id int64) (*models.Equipment, error) {
	equipment, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}
	if equipment == nil || !equipment.Active {
		return nil, errors.ErrNotFound
	}
	return equipment, nil
}

// ListAvailable возвращает инвентарь с остатком на складе, с фильтрами по
// типу и по совместимой площадке.
func (s *EquipmentService) ListAvailable(ctx context.Context, equipmentType string, facilityID int64) ([]models.Equipment, error) {
	items, err := s.equipmentRepo.ListAvailable(ctx, equipmentType, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	return items, nil
}
