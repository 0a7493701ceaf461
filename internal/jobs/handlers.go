package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/stan.go"

	"courtbase/internal/external"
	"courtbase/internal/models"
	"courtbase/internal/repository"
)

// Handlers переводят доменные события в письма клиентам.
type Handlers struct {
	repos         *repository.Repositories
	mailer        *external.MailerClient
	publicBaseURL string
}

func NewHandlers(repos *repository.Repositories, mailer *external.MailerClient, publicBaseURL string) *Handlers {
	return &Handlers{
		repos:         repos,
		mailer:        mailer,
		publicBaseURL: publicBaseURL,
	}
}

func (h *Handlers) HandleBookingConfirmed(m *stan.Msg) {
	var event models.BookingConfirmedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking confirmed event", "error", err)
		return
	}

	slog.Info("Processing booking confirmed event", "booking_id", event.BookingID)

	ctx := context.Background()
	customer, err := h.repos.Customers.GetByID(ctx, event.CustomerID)
	if err != nil || customer == nil {
		slog.Error("Failed to load customer", "customer_id", event.CustomerID, "error", err)
		return
	}

	err = h.mailer.Send(customer.Email, "Booking confirmed", external.TemplateBookingConfirmed, map[string]string{
		"name":       customer.Name,
		"reference":  event.Reference,
		"total_cost": fmt.Sprintf("%.2f", event.TotalCost),
	})
	if err != nil {
		slog.Error("Failed to send confirmation email", "booking_id", event.BookingID, "error", err)
		return
	}

	m.Ack()
}

func (h *Handlers) HandleBookingCancelled(m *stan.Msg) {
	var event models.BookingCancelledEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking cancelled event", "error", err)
		return
	}

	slog.Info("Processing booking cancelled event", "booking_id", event.BookingID)

	ctx := context.Background()
	customer, err := h.repos.Customers.GetByID(ctx, event.CustomerID)
	if err != nil || customer == nil {
		slog.Error("Failed to load customer", "customer_id", event.CustomerID, "error", err)
		return
	}

	err = h.mailer.Send(customer.Email, "Booking cancelled", external.TemplateBookingCancelled, map[string]string{
		"name":           customer.Name,
		"reference":      event.Reference,
		"refund_percent": fmt.Sprintf("%.0f", event.RefundPercent),
	})
	if err != nil {
		slog.Error("Failed to send cancellation email", "booking_id", event.BookingID, "error", err)
		return
	}

	m.Ack()
}

func (h *Handlers) HandleWaitlistNotified(m *stan.Msg) {
	var event models.WaitlistNotifiedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal waitlist notified event", "error", err)
		return
	}

	slog.Info("Processing waitlist notified event", "entry_id", event.EntryID)

	ctx := context.Background()
	customer, err := h.repos.Customers.GetByID(ctx, event.CustomerID)
	if err != nil || customer == nil {
		slog.Error("Failed to load customer", "customer_id", event.CustomerID, "error", err)
		return
	}

	err = h.mailer.Send(customer.Email, "A slot opened up", external.TemplateWaitlistSlotFree, map[string]string{
		"name":        customer.Name,
		"booking_url": event.BookingURL,
	})
	if err != nil {
		slog.Error("Failed to send waitlist email", "entry_id", event.EntryID, "error", err)
		return
	}

	m.Ack()
}
