package service

import (
	"context"
	"fmt"
	"time"

	"courtbase/internal/errors"
	"courtbase/internal/logger"
	"courtbase/internal/models"
	"courtbase/internal/pricing"
	"courtbase/internal/repository"
	"courtbase/internal/schedule"
	"courtbase/internal/search"
)

// Часы работы по умолчанию, когда при создании площадки они не заданы.
const (
	defaultOperatingHoursStart = 8.0
	defaultOperatingHoursEnd   = 22.0
)

type FacilityService struct {
	facilityRepo *repository.FacilityRepository
	bookingRepo  *repository.BookingRepository
	esClient     *search.Client
}

func NewFacilityService(facilityRepo *repository.FacilityRepository, bookingRepo *repository.BookingRepository, esClient *search.Client) *FacilityService {
	return &FacilityService{
		facilityRepo: facilityRepo,
		bookingRepo:  bookingRepo,
		esClient:     esClient,
	}
}

// Create заводит новую площадку и индексирует её в Elasticsearch.
func (s *FacilityService) Create(ctx context.Context, req *models.CreateFacilityRequest) (*models.Facility, error) {
	facility := &models.Facility{
		Name:                req.Name,
		FacilityType:        req.FacilityType,
		Description:         req.Description,
		Capacity:            req.Capacity,
		HourlyRate:          req.HourlyRate,
		Location:            req.Location,
		OperatingHoursStart: defaultOperatingHoursStart,
		OperatingHoursEnd:   defaultOperatingHoursEnd,
		Status:              models.FacilityStatusAvailable,
		Active:              true,
	}
	if req.OperatingHoursStart != nil {
		facility.OperatingHoursStart = *req.OperatingHoursStart
	}
	if req.OperatingHoursEnd != nil {
		facility.OperatingHoursEnd = *req.OperatingHoursEnd
	}
	if facility.Capacity == 0 {
		facility.Capacity = 1
	}

	if err := validateFacility(facility); err != nil {
		return nil, err
	}

	if err := s.facilityRepo.Create(ctx, facility); err != nil {
		return nil, fmt.Errorf("failed to create facility: %w", err)
	}
	s.indexFacility(ctx, facility)

	logger.WithContext(ctx).Info("Facility created",
		"facility_id", facility.ID,
		"name", facility.Name,
		"facility_type", facility.FacilityType)
	return facility, nil
}

func (s *FacilityService) Get(ctx context.Context, id int64) (*models.Facility, error) {
	facility, err := s.facilityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get facility: %w", err)
	}
	if facility == nil || !facility.Active {
		return nil, errors.ErrNotFound
	}
	return facility, nil
}

func (s *FacilityService) List(ctx context.Context, facilityType string) ([]models.Facility, error) {
	facilities, err := s.facilityRepo.List(ctx, facilityType)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	return facilities, nil
}

// Search ищет площадки по тексту. Сначала Elasticsearch (нечеткий поиск по
// названию и описанию), при его недоступности откат на ILIKE в Postgres.
func (s *FacilityService) Search(ctx context.Context, text, facilityType string) ([]models.Facility, error) {
	log := logger.WithContext(ctx)

	if s.esClient != nil {
		ids, err := s.esClient.SearchFacilityIDs(ctx, text, facilityType, 50)
		if err == nil {
			facilities := make([]models.Facility, 0, len(ids))
			for _, id := range ids {
				facility, err := s.facilityRepo.GetByID(ctx, id)
				if err != nil {
					return nil, fmt.Errorf("failed to load facility from search: %w", err)
				}
				if facility != nil && facility.Active {
					facilities = append(facilities, *facility)
				}
			}
			return facilities, nil
		}
		log.Warn("Elasticsearch search failed, falling back to SQL", "error", err)
	}

	facilities, err := s.facilityRepo.Search(ctx, text, facilityType)
	if err != nil {
		return nil, fmt.Errorf("failed to search facilities: %w", err)
	}
	return facilities, nil
}

func (s *FacilityService) Update(ctx context.Context, id int64, req *models.UpdateFacilityRequest) (*models.Facility, error) {
	facility, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		facility.Name = *req.Name
	}
	if req.FacilityType != nil {
		facility.FacilityType = *req.FacilityType
	}
	if req.Description != nil {
		facility.Description = req.Description
	}
	if req.Capacity != nil {
		facility.Capacity = *req.Capacity
	}
	if req.HourlyRate != nil {
		facility.HourlyRate = *req.HourlyRate
	}
	if req.Location != nil {
		facility.Location = req.Location
	}
	if req.OperatingHoursStart != nil {
		facility.OperatingHoursStart = *req.OperatingHoursStart
	}
	if req.OperatingHoursEnd != nil {
		facility.OperatingHoursEnd = *req.OperatingHoursEnd
	}
	if req.Status != nil {
		if *req.Status != models.FacilityStatusAvailable && *req.Status != models.FacilityStatusMaintenance {
			return nil, errors.NewValidation("invalid facility status: %s", *req.Status)
		}
		facility.Status = *req.Status
	}

	if err := validateFacility(facility); err != nil {
		return nil, err
	}

	if err := s.facilityRepo.Update(ctx, facility); err != nil {
		return nil, fmt.Errorf("failed to update facility: %w", err)
	}
	s.indexFacility(ctx, facility)
	return facility, nil
}

// Archive мягко удаляет площадку и убирает её из поискового индекса.
func (s *FacilityService) Archive(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.facilityRepo.Archive(ctx, id); err != nil {
		return fmt.Errorf("failed to archive facility: %w", err)
	}
	if s.esClient != nil {
		if err := s.esClient.DeleteFacility(ctx, id); err != nil {
			logger.WithContext(ctx).Warn("Failed to remove facility from search index", "facility_id", id, "error", err)
		}
	}
	return nil
}

// Availability возвращает свободные часовые слоты площадки на дату.
// Слот занят, если пересекается с любой черновой или подтверждённой бронью.
func (s *FacilityService) Availability(ctx context.Context, id int64, date time.Time) (*models.AvailabilityResponse, error) {
	facility, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	bookings, err := s.bookingRepo.ListForFacilityDay(ctx, facility.ID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for availability: %w", err)
	}

	busy := make([]schedule.Window, 0, len(bookings))
	for _, b := range bookings {
		busy = append(busy, schedule.Window{Start: b.StartDatetime, End: b.EndDatetime})
	}

	slots := schedule.FreeHourSlots(dayStart, facility.OperatingHoursStart, facility.OperatingHoursEnd, busy)
	response := &models.AvailabilityResponse{
		FacilityID:   facility.ID,
		FacilityName: facility.Name,
		Date:         dayStart.Format("2006-01-02"),
		HourlyRate:   facility.HourlyRate,
		Slots:        make([]models.TimeSlot, 0, len(slots)),
	}
	for _, slot := range slots {
		response.Slots = append(response.Slots, models.TimeSlot{
			Start:     schedule.FormatHour(slot.StartHour),
			End:       schedule.FormatHour(slot.EndHour),
			StartHour: slot.StartHour,
			EndHour:   slot.EndHour,
			Price:     pricing.Round2(facility.HourlyRate),
		})
	}
	return response, nil
}

func (s *FacilityService) indexFacility(ctx context.Context, facility *models.Facility) {
	if s.esClient == nil {
		return
	}
	if err := s.esClient.IndexFacility(ctx, facility); err != nil {
		logger.WithContext(ctx).Warn("Failed to index facility", "facility_id", facility.ID, "error", err)
	}
}

func validateFacility(facility *models.Facility) error {
	switch facility.FacilityType {
	case models.FacilityTypeCourt, models.FacilityTypeGym, models.FacilityTypePool, models.FacilityTypeField:
	default:
		return errors.NewValidation("invalid facility type: %s", facility.FacilityType)
	}
	if facility.Capacity < 1 {
		return errors.NewValidation("capacity must be at least 1")
	}
	if facility.HourlyRate < 0 {
		return errors.NewValidation("hourly rate cannot be negative")
	}
	if facility.OperatingHoursStart < 0 || facility.OperatingHoursEnd > 24 {
		return errors.NewValidation("operating hours must be within 0:00 - 24:00")
	}
	if facility.OperatingHoursStart >= facility.OperatingHoursEnd {
		return errors.NewValidation("operating hours start must be before end")
	}
	return nil
}
