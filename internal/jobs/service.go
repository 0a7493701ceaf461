// Package jobs runs the scheduled maintenance sweeps and the NATS
// notification consumers of the jobs binary.
package jobs

import (
	"context"
	"fmt"
	"time"

	"courtbase/internal/config"
	"courtbase/internal/database"
	"courtbase/internal/external"
	"courtbase/internal/logger"
	"courtbase/internal/messaging"
	"courtbase/internal/models"
	"courtbase/internal/repository"
	"courtbase/internal/service"
)

type JobService struct {
	cfg         *config.Config
	db          *database.DB
	nats        *messaging.NATSClient
	repos       *repository.Repositories
	memberships *service.MembershipService
	mailer      *external.MailerClient
	handlers    *Handlers
	done        chan struct{}
}

func NewJobService(cfg *config.Config) (*JobService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepositories(db)
	mailer := external.NewMailerClient(cfg.Mailer)
	handlers := NewHandlers(repos, mailer, cfg.PublicBaseURL)

	return &JobService{
		cfg:         cfg,
		db:          db,
		nats:        natsClient,
		repos:       repos,
		memberships: service.NewMembershipService(repos.Memberships, repos.Customers, natsClient),
		mailer:      mailer,
		handlers:    handlers,
		done:        make(chan struct{}),
	}, nil
}

// Start подписывает консьюмеры уведомлений и запускает фоновые задачи.
func (js *JobService) Start() error {
	log := logger.Get()
	log.Info("Starting notification consumers...")

	if _, err := js.nats.SubscribeQueue(models.EventBookingConfirmed, "jobs", js.handlers.HandleBookingConfirmed); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", models.EventBookingConfirmed, err)
	}
	if _, err := js.nats.SubscribeQueue(models.EventBookingCancelled, "jobs", js.handlers.HandleBookingCancelled); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", models.EventBookingCancelled, err)
	}
	if _, err := js.nats.SubscribeQueue(models.EventWaitlistNotified, "jobs", js.handlers.HandleWaitlistNotified); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", models.EventWaitlistNotified, err)
	}

	log.Info("Starting scheduled sweeps",
		"reminder_interval", js.cfg.ReminderInterval,
		"expiry_interval", js.cfg.ExpiryInterval,
		"archival_interval", js.cfg.ArchivalInterval)

	go js.runPeriodic(js.cfg.ReminderInterval, js.sendReminders)
	go js.runPeriodic(js.cfg.ExpiryInterval, js.expireMemberships)
	go js.runPeriodic(js.cfg.ExpiryInterval, js.expireWaitlist)
	go js.runPeriodic(js.cfg.ArchivalInterval, js.archiveBookings)

	return nil
}

func (js *JobService) runPeriodic(interval time.Duration, sweep func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), js.cfg.RequestTimeout)
			sweep(ctx)
			cancel()
		case <-js.done:
			return
		}
	}
}

// sendReminders рассылает напоминания о подтверждённых бронях, начинающихся
// в ближайшие ReminderLeadHours часов. Каждая бронь напоминается один раз.
func (js *JobService) sendReminders(ctx context.Context) {
	log := logger.Get()

	until := time.Now().Add(time.Duration(js.cfg.ReminderLeadHours) * time.Hour)
	bookings, err := js.repos.Bookings.GetUpcomingForReminder(ctx, until)
	if err != nil {
		log.Error("Reminder sweep failed", "error", err)
		return
	}

	for _, booking := range bookings {
		customer, err := js.repos.Customers.GetByID(ctx, booking.CustomerID)
		if err != nil || customer == nil {
			log.Error("Failed to load customer for reminder", "booking_id", booking.ID, "error", err)
			continue
		}

		err = js.mailer.Send(customer.Email, "Upcoming booking reminder", external.TemplateBookingReminder, map[string]string{
			"name":      customer.Name,
			"reference": booking.Reference,
			"start":     booking.StartDatetime.Format(time.RFC1123),
		})
		if err != nil {
			log.Error("Failed to send reminder", "booking_id", booking.ID, "error", err)
			continue
		}

		booking.ReminderSent = true
		if err := js.repos.Bookings.Update(ctx, &booking); err != nil {
			log.Error("Failed to mark reminder sent", "booking_id", booking.ID, "error", err)
		}
	}

	if len(bookings) > 0 {
		log.Info("Reminder sweep finished", "bookings", len(bookings))
	}
}

// expireMemberships переводит просроченные абонементы в expired.
func (js *JobService) expireMemberships(ctx context.Context) {
	log := logger.Get()

	expired, err := js.memberships.ExpireEnded(ctx, time.Now())
	if err != nil {
		log.Error("Membership expiry sweep failed", "error", err)
		return
	}

	if expired > 0 {
		log.Info("Membership expiry sweep finished", "expired", expired)
	}
}

// expireWaitlist чистит очередь ожидания: уведомлённые без ответа дольше
// 48 часов и ожидающие с прошедшей желаемой датой.
func (js *JobService) expireWaitlist(ctx context.Context) {
	log := logger.Get()

	notifiedBefore := time.Now().Add(-48 * time.Hour)
	expired, err := js.repos.Waitlist.ExpireStale(ctx, notifiedBefore, time.Now())
	if err != nil {
		log.Error("Waitlist expiry sweep failed", "error", err)
		return
	}

	if expired > 0 {
		log.Info("Waitlist expiry sweep finished", "expired", expired)
	}
}

// archiveBookings помечает давно завершённые и отменённые брони неактивными.
func (js *JobService) archiveBookings(ctx context.Context) {
	log := logger.Get()

	before := time.Now().AddDate(0, 0, -js.cfg.ArchiveAfterDays)
	archived, err := js.repos.Bookings.ArchiveFinished(ctx, before)
	if err != nil {
		log.Error("Archival sweep failed", "error", err)
		return
	}

	if archived > 0 {
		log.Info("Archival sweep finished", "archived", archived)
	}
}

func (js *JobService) Shutdown(ctx context.Context) error {
	log := logger.Get()
	log.Info("Shutting down job service...")

	close(js.done)

	if js.nats != nil {
		if err := js.nats.Close(); err != nil {
			log.Error("Error closing NATS connection", "error", err)
		}
	}

	if js.db != nil {
		if err := js.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
