package models

import "time"

// NATS Event Types
const (
	EventBookingCreated    = "booking.created"
	EventBookingConfirmed  = "booking.confirmed"
	EventBookingCompleted  = "booking.completed"
	EventBookingCancelled  = "booking.cancelled"
	EventWaitlistNotified  = "waitlist.notified"
	EventMembershipExpired = "membership.expired"
)

// BookingCreatedEvent represents a booking creation event
type BookingCreatedEvent struct {
	BookingID  int64     `json:"booking_id"`
	Reference  string    `json:"reference"`
	FacilityID int64     `json:"facility_id"`
	CustomerID int64     `json:"customer_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// BookingConfirmedEvent represents a booking confirmation event
type BookingConfirmedEvent struct {
	BookingID  int64     `json:"booking_id"`
	Reference  string    `json:"reference"`
	FacilityID int64     `json:"facility_id"`
	CustomerID int64     `json:"customer_id"`
	TotalCost  float64   `json:"total_cost"`
	Timestamp  time.Time `json:"timestamp"`
}

// BookingCompletedEvent represents a booking completion event
type BookingCompletedEvent struct {
	BookingID int64     `json:"booking_id"`
	Reference string    `json:"reference"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingCancelledEvent represents a booking cancellation event
type BookingCancelledEvent struct {
	BookingID     int64     `json:"booking_id"`
	Reference     string    `json:"reference"`
	FacilityID    int64     `json:"facility_id"`
	CustomerID    int64     `json:"customer_id"`
	RefundPercent float64   `json:"refund_percent"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}

// WaitlistNotifiedEvent represents a waitlist notification event
type WaitlistNotifiedEvent struct {
	EntryID    int64     `json:"entry_id"`
	CustomerID int64     `json:"customer_id"`
	FacilityID int64     `json:"facility_id"`
	BookingURL string    `json:"booking_url"`
	Timestamp  time.Time `json:"timestamp"`
}

// MembershipExpiredEvent represents a membership expiry event
type MembershipExpiredEvent struct {
	MembershipID int64     `json:"membership_id"`
	CustomerID   int64     `json:"customer_id"`
	Timestamp    time.Time `json:"timestamp"`
}
