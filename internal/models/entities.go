package models

import (
	"time"
)

// Facility statuses
const (
	FacilityStatusAvailable   = "available"
	FacilityStatusMaintenance = "maintenance"
)

// Facility types
const (
	FacilityTypeCourt = "court"
	FacilityTypeGym   = "gym"
	FacilityTypePool  = "pool"
	FacilityTypeField = "field"
)

// Booking statuses and their allowed transitions:
// draft -> confirmed -> completed; draft/confirmed -> cancelled
const (
	BookingStatusDraft     = "draft"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Recurrence types
const (
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// Membership types and statuses
const (
	MembershipTypeBasic   = "basic"
	MembershipTypePremium = "premium"
	MembershipTypeVIP     = "vip"

	MembershipStatusActive    = "active"
	MembershipStatusExpired   = "expired"
	MembershipStatusCancelled = "cancelled"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Waitlist statuses
const (
	WaitlistStatusWaiting  = "waiting"
	WaitlistStatusNotified = "notified"
	WaitlistStatusBooked   = "booked"
	WaitlistStatusExpired  = "expired"
)

// DefaultDiscountForMembership returns the default discount percentage for a
// membership type when none is given explicitly.
func DefaultDiscountForMembership(membershipType string) float64 {
	switch membershipType {
	case MembershipTypeBasic:
		return 5.0
	case MembershipTypePremium:
		return 15.0
	case MembershipTypeVIP:
		return 25.0
	default:
		return 0.0
	}
}

// Customer represents a customer account in the system
type Customer struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Phone        *string   `json:"phone" db:"phone"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}

// Facility represents a bookable physical resource
type Facility struct {
	ID                  int64     `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	FacilityType        string    `json:"facility_type" db:"facility_type"`
	Description         *string   `json:"description" db:"description"`
	Capacity            int       `json:"capacity" db:"capacity"`
	HourlyRate          float64   `json:"hourly_rate" db:"hourly_rate"`
	Location            *string   `json:"location" db:"location"`
	OperatingHoursStart float64   `json:"operating_hours_start" db:"operating_hours_start"`
	OperatingHoursEnd   float64   `json:"operating_hours_end" db:"operating_hours_end"`
	Status              string    `json:"status" db:"status"`
	Active              bool      `json:"active" db:"active"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// Equipment represents a quantity-tracked rentable item
type Equipment struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	EquipmentType     string    `json:"equipment_type" db:"equipment_type"`
	Condition         string    `json:"condition" db:"condition"`
	TotalQuantity     int       `json:"total_quantity" db:"total_quantity"`
	QuantityAvailable int       `json:"quantity_available" db:"quantity_available"`
	RentalRate        float64   `json:"rental_rate" db:"rental_rate"`
	Active            bool      `json:"active" db:"active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// QuantityInUse is the derived checked-out count.
func (e *Equipment) QuantityInUse() int {
	return e.TotalQuantity - e.QuantityAvailable
}

// Booking represents a facility reservation
type Booking struct {
	ID              int64       `json:"id" db:"id"`
	Reference       string      `json:"reference" db:"reference"`
	FacilityID      int64       `json:"facility_id" db:"facility_id"`
	CustomerID      int64       `json:"customer_id" db:"customer_id"`
	StartDatetime   time.Time   `json:"start_datetime" db:"start_datetime"`
	EndDatetime     time.Time   `json:"end_datetime" db:"end_datetime"`
	Duration        float64     `json:"duration" db:"duration"`
	TotalCost       float64     `json:"total_cost" db:"total_cost"`
	Status          string      `json:"status" db:"status"`
	Notes           *string     `json:"notes" db:"notes"`
	IsRecurring     bool        `json:"is_recurring" db:"is_recurring"`
	RecurrenceType  *string     `json:"recurrence_type" db:"recurrence_type"`
	RecurrenceCount *int        `json:"recurrence_count" db:"recurrence_count"`
	RecurrenceEnd   *time.Time  `json:"recurrence_end_date" db:"recurrence_end_date"`
	ParentBookingID *int64      `json:"parent_booking_id" db:"parent_booking_id"`
	RefundPercent   *float64    `json:"refund_percent" db:"refund_percent"`
	RefundNote      *string     `json:"refund_note" db:"refund_note"`
	ReminderSent    bool        `json:"reminder_sent" db:"reminder_sent"`
	Active          bool        `json:"active" db:"active"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
	Equipment       []Equipment `json:"equipment,omitempty"` // Not from DB, filled separately
}

// Membership represents a discount-eligibility record per customer
type Membership struct {
	ID                 int64     `json:"id" db:"id"`
	CustomerID         int64     `json:"customer_id" db:"customer_id"`
	MembershipType     string    `json:"membership_type" db:"membership_type"`
	StartDate          time.Time `json:"start_date" db:"start_date"`
	EndDate            time.Time `json:"end_date" db:"end_date"`
	DiscountPercentage float64   `json:"discount_percentage" db:"discount_percentage"`
	PaymentStatus      string    `json:"payment_status" db:"payment_status"`
	Status             string    `json:"status" db:"status"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// IsCurrentlyActive reports whether the membership grants a discount on the
// given day: status active, payment settled, day inside the date range.
func (m *Membership) IsCurrentlyActive(today time.Time) bool {
	if m.Status != MembershipStatusActive || m.PaymentStatus != PaymentStatusPaid {
		return false
	}
	y, mo, d := today.Date()
	day := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	ys, ms, ds := m.StartDate.Date()
	start := time.Date(ys, ms, ds, 0, 0, 0, 0, time.UTC)
	ye, me, de := m.EndDate.Date()
	end := time.Date(ye, me, de, 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}

// WaitlistEntry represents a customer awaiting a facility slot
type WaitlistEntry struct {
	ID                 int64      `json:"id" db:"id"`
	CustomerID         int64      `json:"customer_id" db:"customer_id"`
	FacilityID         int64      `json:"facility_id" db:"facility_id"`
	PreferredDate      *time.Time `json:"preferred_date" db:"preferred_date"`
	PreferredTimeStart *float64   `json:"preferred_time_start" db:"preferred_time_start"`
	PreferredTimeEnd   *float64   `json:"preferred_time_end" db:"preferred_time_end"`
	Status             string     `json:"status" db:"status"`
	NotifiedAt         *time.Time `json:"notified_at" db:"notified_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}
