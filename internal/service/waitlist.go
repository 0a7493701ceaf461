package service

import (
	"context"
	"fmt"
	"time"

	"courtbase/internal/errors"
	"courtbase/internal/logger"
	"courtbase/internal/messaging"
	"courtbase/internal/models"
	"courtbase/internal/repository"
	"courtbase/internal/schedule"
)

// Кандидат подходит под освободившийся слот, если его желаемая дата в
// пределах двух дней от даты слота (или не задана вовсе).
const waitlistDateWindowDays = 2

type WaitlistService struct {
	waitlistRepo  *repository.WaitlistRepository
	facilityRepo  *repository.FacilityRepository
	customerRepo  *repository.CustomerRepository
	natsClient    *messaging.NATSClient
	publicBaseURL string
}

func NewWaitlistService(waitlistRepo *repository.WaitlistRepository, facilityRepo *repository.FacilityRepository, customerRepo *repository.CustomerRepository, natsClient *messaging.NATSClient, publicBaseURL string) *WaitlistService {
	return &WaitlistService{
		waitlistRepo:  waitlistRepo,
		facilityRepo:  facilityRepo,
		customerRepo:  customerRepo,
		natsClient:    natsClient,
		publicBaseURL: publicBaseURL,
	}
}

// Join ставит клиента в очередь ожидания по площадке.
func (s *WaitlistService) Join(ctx context.Context, customerID int64, req *models.JoinWaitlistRequest) (*models.WaitlistEntry, error) {
	facility, err := s.facilityRepo.GetByID(ctx, req.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load facility: %w", err)
	}
	if facility == nil || !facility.Active {
		return nil, errors.ErrNotFound
	}

	entry := &models.WaitlistEntry{
		CustomerID: customerID,
		FacilityID: req.FacilityID,
		Status:     models.WaitlistStatusWaiting,
	}

	if req.PreferredDate != nil {
		preferredDate, err := time.Parse("2006-01-02", *req.PreferredDate)
		if err != nil {
			return nil, errors.NewValidation("invalid preferred date: %s", *req.PreferredDate)
		}
		today := time.Now().Truncate(24 * time.Hour)
		if preferredDate.Before(today) {
			return nil, errors.NewValidation("preferred date cannot be in the past")
		}
		entry.PreferredDate = &preferredDate
	}

	if req.PreferredTimeStart != nil || req.PreferredTimeEnd != nil {
		if req.PreferredTimeStart == nil || req.PreferredTimeEnd == nil {
			return nil, errors.NewValidation("preferred time start and end must be given together")
		}
		if *req.PreferredTimeStart < 0 || *req.PreferredTimeEnd > 24 {
			return nil, errors.NewValidation("preferred times must be within 0:00 - 24:00")
		}
		if *req.PreferredTimeStart >= *req.PreferredTimeEnd {
			return nil, errors.NewValidation("preferred time start must be before end")
		}
		entry.PreferredTimeStart = req.PreferredTimeStart
		entry.PreferredTimeEnd = req.PreferredTimeEnd
	}

	if err := s.waitlistRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to join waitlist: %w", err)
	}

	logger.WithContext(ctx).Info("Waitlist entry created",
		"entry_id", entry.ID,
		"customer_id", customerID,
		"facility_id", req.FacilityID)
	return entry, nil
}

func (s *WaitlistService) Get(ctx context.Context, id int64) (*models.WaitlistEntry, error) {
	entry, err := s.waitlistRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get waitlist entry: %w", err)
	}
	if entry == nil {
		return nil, errors.ErrNotFound
	}
	return entry, nil
}

func (s *WaitlistService) ListByFacility(ctx context.Context, facilityID int64) ([]models.WaitlistEntry, error) {
	entries, err := s.waitlistRepo.ListByFacility(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist: %w", err)
	}
	return entries, nil
}

// MarkBooked закрывает уведомлённую запись после того, как клиент забронировал.
func (s *WaitlistService) MarkBooked(ctx context.Context, id int64) (*models.WaitlistEntry, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != models.WaitlistStatusNotified {
		return nil, errors.NewValidation("only notified waitlist entries can be marked booked (current status: %s)", entry.Status)
	}
	if err := s.waitlistRepo.UpdateStatus(ctx, id, models.WaitlistStatusBooked, nil); err != nil {
		return nil, fmt.Errorf("failed to mark waitlist entry booked: %w", err)
	}
	entry.Status = models.WaitlistStatusBooked
	return entry, nil
}

// MatchCancelledSlot находит первого подходящего кандидата очереди (FIFO по
// времени постановки) для окна отменённой брони и уведомляет его.
func (s *WaitlistService) MatchCancelledSlot(ctx context.Context, booking *models.Booking) error {
	log := logger.WithContext(ctx)

	day := booking.StartDatetime.Truncate(24 * time.Hour)
	windowStart := day.AddDate(0, 0, -waitlistDateWindowDays)
	windowEnd := day.AddDate(0, 0, waitlistDateWindowDays)

	candidates, err := s.waitlistRepo.FindWaitingCandidates(ctx, booking.FacilityID, windowStart, windowEnd)
	if err != nil {
		return fmt.Errorf("failed to find waitlist candidates: %w", err)
	}

	slotStart := schedule.HourOf(booking.StartDatetime)
	slotEnd := slotStart + booking.EndDatetime.Sub(booking.StartDatetime).Hours()

	for _, candidate := range candidates {
		if candidate.PreferredTimeStart != nil && candidate.PreferredTimeEnd != nil {
			// желаемое время должно пересекаться с освободившимся слотом
			if *candidate.PreferredTimeStart >= slotEnd || *candidate.PreferredTimeEnd <= slotStart {
				continue
			}
		}

		now := time.Now()
		if err := s.waitlistRepo.UpdateStatus(ctx, candidate.ID, models.WaitlistStatusNotified, &now); err != nil {
			return fmt.Errorf("failed to mark waitlist entry notified: %w", err)
		}

		if s.natsClient != nil {
			event := models.WaitlistNotifiedEvent{
				EntryID:    candidate.ID,
				CustomerID: candidate.CustomerID,
				FacilityID: candidate.FacilityID,
				BookingURL: fmt.Sprintf("%s/api/facilities/%d/availability?date=%s",
					s.publicBaseURL, booking.FacilityID, day.Format("2006-01-02")),
				Timestamp: now,
			}
			if err := s.natsClient.Publish(models.EventWaitlistNotified, event); err != nil {
				log.Error("Failed to publish waitlist notification", "entry_id", candidate.ID, "error", err)
			}
		}

		log.Info("Waitlist candidate notified",
			"entry_id", candidate.ID,
			"customer_id", candidate.CustomerID,
			"facility_id", candidate.FacilityID)
		return nil
	}

	return nil
}

// ExpireStale чистит очередь: уведомлённые без ответа дольше лимита и
// ожидающие с прошедшей желаемой датой переводятся в expired.
func (s *WaitlistService) ExpireStale(ctx context.Context, notifiedBefore, today time.Time) (int64, error) {
	expired, err := s.waitlistRepo.ExpireStale(ctx, notifiedBefore, today)
	if err != nil {
		return 0, fmt.Errorf("failed to expire waitlist entries: %w", err)
	}
	return expired, nil
}
