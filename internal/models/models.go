package models

import "time"

// CreateFacilityRequest - модель для создания объекта
type CreateFacilityRequest struct {
	Name                string   `json:"name" binding:"required"`
	FacilityType        string   `json:"facility_type" binding:"required"`
	Description         *string  `json:"description,omitempty"`
	Capacity            int      `json:"capacity"`
	HourlyRate          float64  `json:"hourly_rate"`
	Location            *string  `json:"location,omitempty"`
	OperatingHoursStart *float64 `json:"operating_hours_start,omitempty"`
	OperatingHoursEnd   *float64 `json:"operating_hours_end,omitempty"`
}

// UpdateFacilityRequest - модель для обновления объекта
type UpdateFacilityRequest struct {
	Name                *string  `json:"name,omitempty"`
	FacilityType        *string  `json:"facility_type,omitempty"`
	Description         *string  `json:"description,omitempty"`
	Capacity            *int     `json:"capacity,omitempty"`
	HourlyRate          *float64 `json:"hourly_rate,omitempty"`
	Location            *string  `json:"location,omitempty"`
	OperatingHoursStart *float64 `json:"operating_hours_start,omitempty"`
	OperatingHoursEnd   *float64 `json:"operating_hours_end,omitempty"`
	Status              *string  `json:"status,omitempty"`
}

// CreateFacilityResponse - модель ответа при создании объекта
type CreateFacilityResponse struct {
	ID int64 `json:"id"`
}

// TimeSlot - свободный часовой интервал с ценой
type TimeSlot struct {
	Start     string  `json:"start"`
	End       string  `json:"end"`
	StartHour float64 `json:"start_hour"`
	EndHour   float64 `json:"end_hour"`
	Price     float64 `json:"price"`
}

// AvailabilityResponse - свободные слоты объекта на дату
type AvailabilityResponse struct {
	FacilityID   int64      `json:"facility_id"`
	FacilityName string     `json:"facility_name"`
	Date         string     `json:"date"`
	HourlyRate   float64    `json:"hourly_rate"`
	Slots        []TimeSlot `json:"available_slots"`
}

// CreateEquipmentRequest - модель для создания инвентаря
type CreateEquipmentRequest struct {
	Name          string  `json:"name" binding:"required"`
	EquipmentType string  `json:"equipment_type" binding:"required"`
	Condition     string  `json:"condition,omitempty"`
	TotalQuantity int     `json:"total_quantity"`
	RentalRate    float64 `json:"rental_rate"`
	FacilityIDs   []int64 `json:"facility_ids,omitempty"`
}

// CreateEquipmentResponse - модель ответа при создании инвентаря
type CreateEquipmentResponse struct {
	ID int64 `json:"id"`
}

// CreateBookingRequest - модель для создания бронирования
type CreateBookingRequest struct {
	FacilityID        int64      `json:"facility_id" binding:"required"`
	StartDatetime     time.Time  `json:"start_datetime" binding:"required"`
	EndDatetime       time.Time  `json:"end_datetime" binding:"required"`
	EquipmentIDs      []int64    `json:"equipment_ids,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	IsRecurring       bool       `json:"is_recurring,omitempty"`
	RecurrenceType    *string    `json:"recurrence_type,omitempty"`
	RecurrenceCount   *int       `json:"recurrence_count,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date,omitempty"`
}

// UpdateBookingRequest - модель для изменения черновика бронирования
type UpdateBookingRequest struct {
	StartDatetime *time.Time `json:"start_datetime,omitempty"`
	EndDatetime   *time.Time `json:"end_datetime,omitempty"`
	EquipmentIDs  []int64    `json:"equipment_ids,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// CreateBookingResponse - модель ответа при создании бронирования
type CreateBookingResponse struct {
	ID        int64   `json:"id"`
	Reference string  `json:"reference"`
	TotalCost float64 `json:"total_cost"`
}

// ListBookingsResponseItem - элемент списка бронирований
type ListBookingsResponseItem struct {
	ID            int64     `json:"id"`
	Reference     string    `json:"reference"`
	FacilityID    int64     `json:"facility_id"`
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	TotalCost     float64   `json:"total_cost"`
	Status        string    `json:"status"`
}

// ListBookingsResponse - список бронирований
type ListBookingsResponse []ListBookingsResponseItem

// CancelBookingResponse - результат отмены с расчетом возврата
type CancelBookingResponse struct {
	ID            int64   `json:"id"`
	Status        string  `json:"status"`
	RefundPercent float64 `json:"refund_percent"`
	RefundNote    string  `json:"refund_note"`
}

// CreateMembershipRequest - модель для создания абонемента
type CreateMembershipRequest struct {
	CustomerID         int64    `json:"customer_id" binding:"required"`
	MembershipType     string   `json:"membership_type" binding:"required"`
	StartDate          string   `json:"start_date" binding:"required"`
	EndDate            string   `json:"end_date" binding:"required"`
	DiscountPercentage *float64 `json:"discount_percentage,omitempty"`
}

// CreateMembershipResponse - модель ответа при создании абонемента
type CreateMembershipResponse struct {
	ID                 int64   `json:"id"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

// RenewMembershipRequest - модель для продления абонемента
type RenewMembershipRequest struct {
	DurationDays int `json:"duration_days"`
}

// JoinWaitlistRequest - модель для постановки в очередь ожидания
type JoinWaitlistRequest struct {
	FacilityID         int64    `json:"facility_id" binding:"required"`
	PreferredDate      *string  `json:"preferred_date,omitempty"`
	PreferredTimeStart *float64 `json:"preferred_time_start,omitempty"`
	PreferredTimeEnd   *float64 `json:"preferred_time_end,omitempty"`
}

// JoinWaitlistResponse - модель ответа при постановке в очередь
type JoinWaitlistResponse struct {
	ID int64 `json:"id"`
}
