package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"courtbase/internal/cache"
	"courtbase/internal/errors"
	"courtbase/internal/logger"
	"courtbase/internal/messaging"
	"courtbase/internal/models"
	"courtbase/internal/pricing"
	"courtbase/internal/repository"
	"courtbase/internal/schedule"
)

type BookingService struct {
	repos      *repository.Repositories
	natsClient *messaging.NATSClient
	cache      *cache.ValkeyClient
	waitlist   *WaitlistService
}

func NewBookingService(repos *repository.Repositories, natsClient *messaging.NATSClient, valkeyClient *cache.ValkeyClient, waitlistService *WaitlistService) *BookingService {
	return &BookingService{
		repos:      repos,
		natsClient: natsClient,
		cache:      valkeyClient,
		waitlist:   waitlistService,
	}
}

// Create регистрирует черновик брони после полной проверки окна и инвентаря.
func (s *BookingService) Create(ctx context.Context, customerID int64, req *models.CreateBookingRequest) (*models.Booking, error) {
	log := logger.WithContext(ctx)

	facility, err := s.repos.Facilities.GetByID(ctx, req.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load facility: %w", err)
	}
	if facility == nil || !facility.Active {
		return nil, errors.ErrNotFound
	}
	if facility.Status != models.FacilityStatusAvailable {
		return nil, errors.NewValidation("facility %s is not available for booking (status: %s)", facility.Name, facility.Status)
	}

	if err := s.validateWindow(ctx, facility, req.StartDatetime, req.EndDatetime, 0); err != nil {
		return nil, err
	}
	if err := validateRecurrence(req); err != nil {
		return nil, err
	}

	equipment, err := s.loadEquipmentForBooking(ctx, facility.ID, req.EquipmentIDs)
	if err != nil {
		return nil, err
	}

	duration := req.EndDatetime.Sub(req.StartDatetime).Hours()
	totalCost, err := s.computeCost(ctx, facility, customerID, equipment, duration)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Reference:       generateReference(),
		CustomerID:      customerID,
		FacilityID:      facility.ID,
		StartDatetime:   req.StartDatetime,
		EndDatetime:     req.EndDatetime,
		Duration:        duration,
		TotalCost:       totalCost,
		Status:          models.BookingStatusDraft,
		Notes:           req.Notes,
		IsRecurring:     req.IsRecurring,
		RecurrenceType:  req.RecurrenceType,
		RecurrenceCount: req.RecurrenceCount,
		RecurrenceEnd:   req.RecurrenceEndDate,
		Active:          true,
	}

	if err := s.repos.Bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	for _, eq := range equipment {
		if err := s.repos.Bookings.AddEquipment(ctx, booking.ID, eq.ID); err != nil {
			return nil, fmt.Errorf("failed to attach equipment: %w", err)
		}
	}
	booking.Equipment = equipment

	s.publish(models.EventBookingCreated, models.BookingCreatedEvent{
		BookingID:  booking.ID,
		Reference:  booking.Reference,
		FacilityID: booking.FacilityID,
		CustomerID: booking.CustomerID,
		Timestamp:  time.Now(),
	})
	s.invalidateAvailability(ctx, booking)

	log.Info("Booking created",
		"booking_id", booking.ID,
		"reference", booking.Reference,
		"facility_id", facility.ID,
		"total_cost", booking.TotalCost)

	return booking, nil
}

func (s *BookingService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.repos.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, errors.ErrNotFound
	}
	equipment, err := s.repos.Bookings.GetEquipment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking equipment: %w", err)
	}
	booking.Equipment = equipment
	return booking, nil
}

func (s *BookingService) ListByCustomer(ctx context.Context, customerID int64) ([]models.Booking, error) {
	bookings, err := s.repos.Bookings.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ListByFacilityDate возвращает все брони объекта за сутки независимо от владельца.
func (s *BookingService) ListByFacilityDate(ctx context.Context, facilityID int64, date time.Time) ([]models.Booking, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	bookings, err := s.repos.Bookings.ListForFacilityDay(ctx, facilityID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list facility bookings: %w", err)
	}
	return bookings, nil
}

// ListChildren возвращает повторы, созданные от родительской брони.
func (s *BookingService) ListChildren(ctx context.Context, parentID int64) ([]models.Booking, error) {
	children, err := s.repos.Bookings.GetChildren(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child bookings: %w", err)
	}
	return children, nil
}

// Update меняет черновик. Подтверждённые и завершённые брони не редактируются.
func (s *BookingService) Update(ctx context.Context, id int64, req *models.UpdateBookingRequest) (*models.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusDraft {
		return nil, errors.NewValidation("only draft bookings can be edited (current status: %s)", booking.Status)
	}

	facility, err := s.repos.Facilities.GetByID(ctx, booking.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load facility: %w", err)
	}

	if req.StartDatetime != nil {
		booking.StartDatetime = *req.StartDatetime
	}
	if req.EndDatetime != nil {
		booking.EndDatetime = *req.EndDatetime
	}
	if req.Notes != nil {
		booking.Notes = req.Notes
	}

	if err := s.validateWindow(ctx, facility, booking.StartDatetime, booking.EndDatetime, booking.ID); err != nil {
		return nil, err
	}

	equipment := booking.Equipment
	if req.EquipmentIDs != nil {
		equipment, err = s.loadEquipmentForBooking(ctx, facility.ID, req.EquipmentIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repos.Bookings.ClearEquipment(ctx, booking.ID); err != nil {
			return nil, fmt.Errorf("failed to clear equipment: %w", err)
		}
		for _, eq := range equipment {
			if err := s.repos.Bookings.AddEquipment(ctx, booking.ID, eq.ID); err != nil {
				return nil, fmt.Errorf("failed to attach equipment: %w", err)
			}
		}
		booking.Equipment = equipment
	}

	booking.Duration = booking.EndDatetime.Sub(booking.StartDatetime).Hours()
	totalCost, err := s.computeCost(ctx, facility, booking.CustomerID, equipment, booking.Duration)
	if err != nil {
		return nil, err
	}
	booking.TotalCost = totalCost

	if err := s.repos.Bookings.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	s.invalidateAvailability(ctx, booking)
	return booking, nil
}

// Confirm переводит черновик в confirmed: повторная проверка окна, списание
// инвентаря одной транзакцией и генерация повторяющихся броней.
func (s *BookingService) Confirm(ctx context.Context, id int64) (*models.Booking, error) {
	log := logger.WithContext(ctx)

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusDraft {
		return nil, errors.NewValidation("only draft bookings can be confirmed (current status: %s)", booking.Status)
	}

	facility, err := s.repos.Facilities.GetByID(ctx, booking.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load facility: %w", err)
	}
	if err := s.validateWindow(ctx, facility, booking.StartDatetime, booking.EndDatetime, booking.ID); err != nil {
		return nil, err
	}

	equipmentIDs := make([]int64, 0, len(booking.Equipment))
	for _, eq := range booking.Equipment {
		equipmentIDs = append(equipmentIDs, eq.ID)
	}
	if err := s.repos.Equipment.CheckoutAll(ctx, equipmentIDs); err != nil {
		if strings.Contains(err.Error(), "insufficient stock") {
			return nil, errors.NewValidation("%s", err.Error())
		}
		return nil, fmt.Errorf("failed to reserve equipment: %w", err)
	}

	booking.Status = models.BookingStatusConfirmed
	if err := s.repos.Bookings.Update(ctx, booking); err != nil {
		// вернуть списанный инвентарь, иначе остатки разъедутся
		if restoreErr := s.repos.Equipment.ReturnAll(ctx, equipmentIDs); restoreErr != nil {
			log.Error("Failed to restore equipment after confirm failure", "booking_id", booking.ID, "error", restoreErr)
		}
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	s.publish(models.EventBookingConfirmed, models.BookingConfirmedEvent{
		BookingID:  booking.ID,
		Reference:  booking.Reference,
		FacilityID: booking.FacilityID,
		CustomerID: booking.CustomerID,
		TotalCost:  booking.TotalCost,
		Timestamp:  time.Now(),
	})
	s.invalidateAvailability(ctx, booking)
	log.Info("Booking confirmed", "booking_id", booking.ID, "reference", booking.Reference)

	if booking.IsRecurring && booking.ParentBookingID == nil {
		// бронь уже подтверждена, событие отправлено; конфликт всех повторов
		// не откатывает подтверждение
		if err := s.generateChildren(ctx, booking, facility); err != nil {
			return nil, err
		}
	}

	return booking, nil
}

// Complete закрывает подтверждённую бронь и возвращает инвентарь на склад.
func (s *BookingService) Complete(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, errors.NewValidation("only confirmed bookings can be completed (current status: %s)", booking.Status)
	}

	if err := s.returnEquipment(ctx, booking); err != nil {
		return nil, err
	}

	booking.Status = models.BookingStatusCompleted
	if err := s.repos.Bookings.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to complete booking: %w", err)
	}

	s.publish(models.EventBookingCompleted, models.BookingCompletedEvent{
		BookingID: booking.ID,
		Reference: booking.Reference,
		Timestamp: time.Now(),
	})
	return booking, nil
}

// Cancel отменяет бронь: расчёт возврата по тарифной сетке, возврат инвентаря
// и уведомление первого подходящего кандидата из листа ожидания.
func (s *BookingService) Cancel(ctx context.Context, id int64, reason string) (*models.Booking, error) {
	log := logger.WithContext(ctx)

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingStatusCompleted {
		return nil, errors.NewValidation("completed bookings cannot be cancelled")
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil, errors.NewValidation("booking is already cancelled")
	}

	wasConfirmed := booking.Status == models.BookingStatusConfirmed
	if wasConfirmed {
		if err := s.returnEquipment(ctx, booking); err != nil {
			return nil, err
		}
	}

	percent := pricing.RefundPercent(time.Now(), booking.StartDatetime)
	note := refundNote(percent)
	booking.Status = models.BookingStatusCancelled
	booking.RefundPercent = &percent
	booking.RefundNote = &note

	if err := s.repos.Bookings.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.publish(models.EventBookingCancelled, models.BookingCancelledEvent{
		BookingID:     booking.ID,
		Reference:     booking.Reference,
		FacilityID:    booking.FacilityID,
		CustomerID:    booking.CustomerID,
		RefundPercent: percent,
		Reason:        reason,
		Timestamp:     time.Now(),
	})
	s.invalidateAvailability(ctx, booking)

	// освободившийся слот предлагаем листу ожидания
	if wasConfirmed {
		if err := s.waitlist.MatchCancelledSlot(ctx, booking); err != nil {
			log.Error("Waitlist matching failed", "booking_id", booking.ID, "error", err)
		}
	}

	log.Info("Booking cancelled",
		"booking_id", booking.ID,
		"reference", booking.Reference,
		"refund_percent", percent)
	return booking, nil
}

// ResetToDraft возвращает бронь в черновик для повторного оформления.
// Допустимо из любого статуса, кроме completed; у подтверждённой брони
// инвентарь возвращается на склад.
func (s *BookingService) ResetToDraft(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingStatusCompleted {
		return nil, errors.NewValidation("completed bookings cannot be reset to draft")
	}
	if booking.Status == models.BookingStatusConfirmed {
		if err := s.returnEquipment(ctx, booking); err != nil {
			return nil, err
		}
	}
	booking.Status = models.BookingStatusDraft
	booking.RefundPercent = nil
	booking.RefundNote = nil
	if err := s.repos.Bookings.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to reset booking: %w", err)
	}
	s.invalidateAvailability(ctx, booking)
	return booking, nil
}

// validateWindow проверяет окно брони: порядок дат, часы работы площадки и
// пересечения с активными бронями. excludeID исключает саму бронь при правке.
func (s *BookingService) validateWindow(ctx context.Context, facility *models.Facility, start, end time.Time, excludeID int64) error {
	if !end.After(start) {
		return errors.NewValidation("end time must be after start time")
	}
	if err := schedule.WithinOperatingHours(start, end, facility.OperatingHoursStart, facility.OperatingHoursEnd); err != nil {
		return errors.NewValidation("booking is outside facility operating hours: %s", err.Error())
	}

	overlapping, err := s.repos.Bookings.FindOverlapping(ctx, facility.ID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check overlaps: %w", err)
	}
	if len(overlapping) > 0 {
		verr := errors.NewValidation("facility %s is already booked for the selected time", facility.Name)
		for _, b := range overlapping {
			verr.Conflicts = append(verr.Conflicts, errors.Conflict{
				Reference: b.Reference,
				Start:     b.StartDatetime.Format(time.RFC3339),
				End:       b.EndDatetime.Format(time.RFC3339),
			})
		}
		return verr
	}
	return nil
}

func validateRecurrence(req *models.CreateBookingRequest) error {
	if !req.IsRecurring {
		return nil
	}
	if req.RecurrenceType == nil {
		return errors.NewValidation("recurring bookings need a recurrence type")
	}
	switch *req.RecurrenceType {
	case models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
	default:
		return errors.NewValidation("invalid recurrence type: %s", *req.RecurrenceType)
	}
	if req.RecurrenceCount == nil && req.RecurrenceEndDate == nil {
		return errors.NewValidation("recurring bookings need a repeat count or an end date")
	}
	if req.RecurrenceCount != nil && *req.RecurrenceCount < 1 {
		return errors.NewValidation("recurrence count must be at least 1")
	}
	if req.RecurrenceEndDate != nil && !req.RecurrenceEndDate.After(req.StartDatetime) {
		return errors.NewValidation("recurrence end date must be after the first booking")
	}
	return nil
}

// loadEquipmentForBooking загружает инвентарь и проверяет совместимость с площадкой.
func (s *BookingService) loadEquipmentForBooking(ctx context.Context, facilityID int64, equipmentIDs []int64) ([]models.Equipment, error) {
	equipment := make([]models.Equipment, 0, len(equipmentIDs))
	for _, eqID := range equipmentIDs {
		eq, err := s.repos.Equipment.GetByID(ctx, eqID)
		if err != nil {
			return nil, fmt.Errorf("failed to load equipment: %w", err)
		}
		if eq == nil || !eq.Active {
			return nil, errors.NewValidation("equipment %d does not exist", eqID)
		}
		compatible, err := s.repos.Equipment.IsCompatible(ctx, eqID, facilityID)
		if err != nil {
			return nil, fmt.Errorf("failed to check equipment compatibility: %w", err)
		}
		if !compatible {
			return nil, errors.NewValidation("equipment %s is not available at this facility", eq.Name)
		}
		equipment = append(equipment, *eq)
	}
	return equipment, nil
}

func (s *BookingService) computeCost(ctx context.Context, facility *models.Facility, customerID int64, equipment []models.Equipment, durationHours float64) (float64, error) {
	rates := make([]float64, 0, len(equipment))
	for _, eq := range equipment {
		rates = append(rates, eq.RentalRate)
	}

	discount := 0.0
	membership, err := s.repos.Memberships.GetActiveForCustomer(ctx, customerID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to check membership: %w", err)
	}
	if membership != nil {
		discount = membership.DiscountPercentage
	}

	return pricing.TotalCost(facility.HourlyRate, durationHours, rates, discount), nil
}

// generateChildren создаёт повторяющиеся брони-черновики. Занятые окна
// пропускаются; ошибка только когда не удалось создать ни одного повтора.
func (s *BookingService) generateChildren(ctx context.Context, parent *models.Booking, facility *models.Facility) error {
	log := logger.WithContext(ctx)

	starts := schedule.Occurrences(parent.StartDatetime, *parent.RecurrenceType, parent.RecurrenceCount, parent.RecurrenceEnd)
	if len(starts) == 0 {
		return nil
	}
	window := parent.EndDatetime.Sub(parent.StartDatetime)

	created := 0
	skipped := make([]string, 0)
	for _, start := range starts {
		end := start.Add(window)
		overlapping, err := s.repos.Bookings.FindOverlapping(ctx, facility.ID, start, end, 0)
		if err != nil {
			return fmt.Errorf("failed to check recurrence overlap: %w", err)
		}
		if len(overlapping) > 0 {
			skipped = append(skipped, start.Format("2006-01-02 15:04"))
			continue
		}

		child := &models.Booking{
			Reference:       generateReference(),
			CustomerID:      parent.CustomerID,
			FacilityID:      parent.FacilityID,
			StartDatetime:   start,
			EndDatetime:     end,
			Duration:        window.Hours(),
			TotalCost:       parent.TotalCost,
			Status:          models.BookingStatusDraft,
			Notes:           parent.Notes,
			ParentBookingID: &parent.ID,
			Active:          true,
		}
		if err := s.repos.Bookings.Create(ctx, child); err != nil {
			return fmt.Errorf("failed to create recurring booking: %w", err)
		}
		for _, eq := range parent.Equipment {
			if err := s.repos.Bookings.AddEquipment(ctx, child.ID, eq.ID); err != nil {
				return fmt.Errorf("failed to attach equipment to recurring booking: %w", err)
			}
		}
		created++
	}

	if len(skipped) > 0 {
		// фиксируем пропущенные повторы в заметке родительской брони
		note := "Skipped recurring slots (already booked): " + strings.Join(skipped, ", ")
		if parent.Notes != nil && *parent.Notes != "" {
			note = *parent.Notes + "\n" + note
		}
		parent.Notes = &note
		if err := s.repos.Bookings.Update(ctx, parent); err != nil {
			log.Error("Failed to record skipped occurrences", "booking_id", parent.ID, "error", err)
		}
		log.Warn("Some recurring slots were skipped",
			"parent_booking_id", parent.ID,
			"created", created,
			"skipped", skipped)
	}
	if created == 0 {
		return errors.NewValidation("all recurring slots conflict with existing bookings: %s", strings.Join(skipped, ", "))
	}
	return nil
}

func (s *BookingService) returnEquipment(ctx context.Context, booking *models.Booking) error {
	if len(booking.Equipment) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(booking.Equipment))
	for _, eq := range booking.Equipment {
		ids = append(ids, eq.ID)
	}
	if err := s.repos.Equipment.ReturnAll(ctx, ids); err != nil {
		return fmt.Errorf("failed to return equipment: %w", err)
	}
	return nil
}

func (s *BookingService) publish(subject string, payload any) {
	if s.natsClient == nil {
		return
	}
	if err := s.natsClient.Publish(subject, payload); err != nil {
		logger.Get().Error("Failed to publish event", "subject", subject, "error", err)
	}
}

func (s *BookingService) invalidateAvailability(ctx context.Context, booking *models.Booking) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAvailability(ctx, booking.FacilityID, booking.StartDatetime, booking.EndDatetime); err != nil {
		logger.WithContext(ctx).Warn("Failed to invalidate availability cache", "facility_id", booking.FacilityID, "error", err)
	}
}

func refundNote(percent float64) string {
	if percent == 0 {
		return "No refund: cancelled less than 12 hours before start"
	}
	return fmt.Sprintf("%.0f%% refund issued per cancellation policy", percent)
}

// generateReference выдаёт короткий код брони вида BK-3F2A9C1D.
func generateReference() string {
	id := uuid.New()
	return "BK-" + strings.ToUpper(id.String()[:8])
}
