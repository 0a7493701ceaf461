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
)

type MembershipService struct {
	membershipRepo *repository.MembershipRepository
	customerRepo   *repository.CustomerRepository
	natsClient     *messaging.NATSClient
}

func NewMembershipService(membershipRepo *repository.MembershipRepository, customerRepo *repository.CustomerRepository, natsClient *messaging.NATSClient) *MembershipService {
	return &MembershipService{
		membershipRepo: membershipRepo,
		customerRepo:   customerRepo,
		natsClient:     natsClient,
	}
}

// Create заводит абонемент. Без явной скидки подставляется значение по типу.
// Абонемент сразу active, но скидка начинает действовать только после оплаты.
func (s *MembershipService) Create(ctx context.Context, req *models.CreateMembershipRequest) (*models.Membership, error) {
	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil {
		return nil, errors.NewValidation("customer %d does not exist", req.CustomerID)
	}

	switch req.MembershipType {
	case models.MembershipTypeBasic, models.MembershipTypePremium, models.MembershipTypeVIP:
	default:
		return nil, errors.NewValidation("invalid membership type: %s", req.MembershipType)
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, errors.NewValidation("invalid start date: %s", req.StartDate)
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, errors.NewValidation("invalid end date: %s", req.EndDate)
	}
	if !endDate.After(startDate) {
		return nil, errors.NewValidation("end date must be after start date")
	}

	discount := models.DefaultDiscountForMembership(req.MembershipType)
	if req.DiscountPercentage != nil {
		if *req.DiscountPercentage < 0 || *req.DiscountPercentage > 100 {
			return nil, errors.NewValidation("discount percentage must be between 0 and 100")
		}
		discount = *req.DiscountPercentage
	}

	membership := &models.Membership{
		CustomerID:         req.CustomerID,
		MembershipType:     req.MembershipType,
		StartDate:          startDate,
		EndDate:            endDate,
		DiscountPercentage: discount,
		PaymentStatus:      models.PaymentStatusPending,
		Status:             models.MembershipStatusActive,
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	logger.WithContext(ctx).Info("Membership created",
		"membership_id", membership.ID,
		"customer_id", membership.CustomerID,
		"membership_type", membership.MembershipType,
		"discount_percentage", membership.DiscountPercentage)
	return membership, nil
}

func (s *MembershipService) Get(ctx context.Context, id int64) (*models.Membership, error) {
	membership, err := s.membershipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if membership == nil {
		return nil, errors.ErrNotFound
	}
	return membership, nil
}

func (s *MembershipService) ListByCustomer(ctx context.Context, customerID int64) ([]models.Membership, error) {
	memberships, err := s.membershipRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}

// MarkPaid фиксирует оплату абонемента, после чего скидка начинает действовать.
func (s *MembershipService) MarkPaid(ctx context.Context, id int64) (*models.Membership, error) {
	membership, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if membership.PaymentStatus == models.PaymentStatusPaid {
		return nil, errors.NewValidation("membership is already paid")
	}
	membership.PaymentStatus = models.PaymentStatusPaid
	if err := s.membershipRepo.Update(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to mark membership paid: %w", err)
	}
	return membership, nil
}

// Renew продлевает абонемент на N дней от текущей даты окончания.
// Оплата сбрасывается в pending: продление оплачивается отдельно.
func (s *MembershipService) Renew(ctx context.Context, id int64, durationDays int) (*models.Membership, error) {
	if durationDays < 1 {
		return nil, errors.NewValidation("renewal duration must be at least 1 day")
	}
	membership, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if membership.Status == models.MembershipStatusCancelled {
		return nil, errors.NewValidation("cancelled memberships cannot be renewed")
	}

	base := membership.EndDate
	if base.Before(time.Now()) {
		base = time.Now()
	}
	membership.EndDate = base.AddDate(0, 0, durationDays)
	membership.Status = models.MembershipStatusActive
	membership.PaymentStatus = models.PaymentStatusPending

	if err := s.membershipRepo.Update(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to renew membership: %w", err)
	}

	logger.WithContext(ctx).Info("Membership renewed",
		"membership_id", membership.ID,
		"new_end_date", membership.EndDate.Format("2006-01-02"))
	return membership, nil
}

// Cancel закрывает абонемент, скидка перестает действовать немедленно.
func (s *MembershipService) Cancel(ctx context.Context, id int64) (*models.Membership, error) {
	membership, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if membership.Status == models.MembershipStatusCancelled {
		return nil, errors.NewValidation("membership is already cancelled")
	}
	membership.Status = models.MembershipStatusCancelled
	if err := s.membershipRepo.Update(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to cancel membership: %w", err)
	}
	return membership, nil
}

// ExpireEnded переводит просроченные абонементы в expired и публикует события.
// Вызывается фоновой задачей раз в сутки.
func (s *MembershipService) ExpireEnded(ctx context.Context, today time.Time) (int, error) {
	expired, err := s.membershipRepo.ExpireEnded(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to expire memberships: %w", err)
	}
	for _, membership := range expired {
		if s.natsClient == nil {
			continue
		}
		event := models.MembershipExpiredEvent{
			MembershipID: membership.ID,
			CustomerID:   membership.CustomerID,
			Timestamp:    time.Now(),
		}
		if err := s.natsClient.Publish(models.EventMembershipExpired, event); err != nil {
			logger.Get().Error("Failed to publish membership expiry event",
				"membership_id", membership.ID, "error", err)
		}
	}
	return len(expired), nil
}
