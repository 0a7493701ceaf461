package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"courtbase/internal/cache"
	apperrors "courtbase/internal/errors"
	"courtbase/internal/models"
	"courtbase/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
	}
}

// customerID достает id аутентифицированного клиента из контекста gin.
func customerID(c *gin.Context) int64 {
	if v, exists := c.Get("customer_id"); exists {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// respondError переводит доменные ошибки в HTTP статусы: ошибки валидации в
// 422 с деталями конфликтов, отсутствующие записи в 404, остальное в 500.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		body := gin.H{"error": verr.Message}
		if len(verr.Conflicts) > 0 {
			body["conflicts"] = verr.Conflicts
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	slog.Error(fallback, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

// Facilities handlers

// CreateFacility - POST /api/facilities
// Создать площадку
func (h *Handlers) CreateFacility(c *gin.Context) {
	var req models.CreateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	facility, err := h.services.Facilities.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create facility")
		return
	}

	c.JSON(http.StatusCreated, models.CreateFacilityResponse{ID: facility.ID})
}

// ListFacilities - GET /api/facilities
// Получить список площадок, с опциональным текстовым поиском
func (h *Handlers) ListFacilities(c *gin.Context) {
	query := c.Query("query")
	facilityType := c.Query("type")

	var facilities []models.Facility
	var err error
	if query != "" {
		facilities, err = h.services.Facilities.Search(c.Request.Context(), query, facilityType)
	} else {
		facilities, err = h.services.Facilities.List(c.Request.Context(), facilityType)
	}
	if err != nil {
		respondError(c, err, "Failed to list facilities")
		return
	}

	c.JSON(http.StatusOK, facilities)
}

// GetFacility - GET /api/facilities/:id
func (h *Handlers) GetFacility(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	facility, err := h.services.Facilities.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get facility")
		return
	}

	c.JSON(http.StatusOK, facility)
}

// UpdateFacility - PATCH /api/facilities/:id
// Обновить площадку
func (h *Handlers) UpdateFacility(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	facility, err := h.services.Facilities.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update facility")
		return
	}

	c.JSON(http.StatusOK, facility)
}

// ArchiveFacility - DELETE /api/facilities/:id
// Мягкое удаление площадки
func (h *Handlers) ArchiveFacility(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.services.Facilities.Archive(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to archive facility")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetAvailability - GET /api/facilities/:id/availability?date=YYYY-MM-DD
// Свободные часовые слоты площадки на дату
func (h *Handlers) GetAvailability(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	dateParam := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	// Сначала пробуем кеш: ответ хранится как сырой JSON
	if h.valkeyClient != nil {
		rawJSON, err := h.valkeyClient.GetAvailabilityRaw(c.Request.Context(), id, dateParam)
		if err == nil {
			c.Data(http.StatusOK, "application/json", rawJSON)
			return
		}
	}

	response, err := h.services.Facilities.Availability(c.Request.Context(), id, date)
	if err != nil {
		respondError(c, err, "Failed to compute availability")
		return
	}

	if h.valkeyClient != nil {
		if err := h.valkeyClient.SetAvailability(c.Request.Context(), id, dateParam, response); err != nil {
			slog.Warn("Failed to cache availability", "facility_id", id, "error", err)
		}
	}

	c.JSON(http.StatusOK, response)
}

// Equipment handlers

// CreateEquipment - POST /api/equipment
// Завести позицию инвентаря
func (h *Handlers) CreateEquipment(c *gin.Context) {
	var req models.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	equipment, err := h.services.Equipment.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create equipment")
		return
	}

	c.JSON(http.StatusCreated, models.CreateEquipmentResponse{ID: equipment.ID})
}

// ListEquipment - GET /api/equipment
// Инвентарь с остатком на складе
func (h *Handlers) ListEquipment(c *gin.Context) {
	equipmentType := c.Query("type")

	var facilityID int64
	if facilityParam := c.Query("facility_id"); facilityParam != "" {
		id, err := strconv.ParseInt(facilityParam, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid facility_id"})
			return
		}
		facilityID = id
	}

	items, err := h.services.Equipment.ListAvailable(c.Request.Context(), equipmentType, facilityID)
	if err != nil {
		respondError(c, err, "Failed to list equipment")
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetEquipment - GET /api/equipment/:id
func (h *Handlers) GetEquipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	equipment, err := h.services.Equipment.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get equipment")
		return
	}

	c.JSON(http.StatusOK, equipment)
}

// Bookings handlers

// CreateBooking - POST /api/bookings
// Создать черновик бронирования
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.services.Bookings.Create(c.Request.Context(), customerID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, models.CreateBookingResponse{
		ID:        booking.ID,
		Reference: booking.Reference,
		TotalCost: booking.TotalCost,
	})
}

// ListBookings - GET /api/bookings
// Бронирования текущего клиента
func (h *Handlers) ListBookings(c *gin.Context) {
	var bookings []models.Booking
	var err error

	// С facility_id отдаем расписание объекта целиком, без фильтра по владельцу
	if raw := c.Query("facility_id"); raw != "" {
		facilityID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil || facilityID < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid facility_id"})
			return
		}
		date := time.Now()
		if dateStr := c.Query("date"); dateStr != "" {
			date, parseErr = time.Parse("2006-01-02", dateStr)
			if parseErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
				return
			}
		}
		bookings, err = h.services.Bookings.ListByFacilityDate(c.Request.Context(), facilityID, date)
	} else {
		bookings, err = h.services.Bookings.ListByCustomer(c.Request.Context(), customerID(c))
	}
	if err != nil {
		respondError(c, err, "Failed to list bookings")
		return
	}

	response := make(models.ListBookingsResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, models.ListBookingsResponseItem{
			ID:            b.ID,
			Reference:     b.Reference,
			FacilityID:    b.FacilityID,
			StartDatetime: b.StartDatetime,
			EndDatetime:   b.EndDatetime,
			TotalCost:     b.TotalCost,
			Status:        b.Status,
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	booking, err := h.services.Bookings.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get booking")
		return
	}
	if booking.CustomerID != customerID(c) {
		respondError(c, apperrors.ErrForbidden, "Forbidden")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// UpdateBooking - PATCH /api/bookings/:id
// Изменить черновик бронирования
func (h *Handlers) UpdateBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.services.Bookings.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ConfirmBooking - PATCH /api/bookings/:id/confirm
// Подтвердить бронирование
func (h *Handlers) ConfirmBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	booking, err := h.services.Bookings.Confirm(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to confirm booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CompleteBooking - PATCH /api/bookings/:id/complete
// Завершить бронирование
func (h *Handlers) CompleteBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	booking, err := h.services.Bookings.Complete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to complete booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking - PATCH /api/bookings/:id/cancel
// Отменить бронирование с расчетом возврата
func (h *Handlers) CancelBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	// Тело опционально: {"reason": "..."}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	booking, err := h.services.Bookings.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err, "Failed to cancel booking")
		return
	}

	response := models.CancelBookingResponse{
		ID:     booking.ID,
		Status: booking.Status,
	}
	if booking.RefundPercent != nil {
		response.RefundPercent = *booking.RefundPercent
	}
	if booking.RefundNote != nil {
		response.RefundNote = *booking.RefundNote
	}

	c.JSON(http.StatusOK, response)
}

// ResetBooking - PATCH /api/bookings/:id/reset
// Вернуть бронирование в черновик (недоступно для завершенных)
func (h *Handlers) ResetBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	booking, err := h.services.Bookings.ResetToDraft(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to reset booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListBookingOccurrences - GET /api/bookings/:id/occurrences
// Повторы, созданные от родительского бронирования
func (h *Handlers) ListBookingOccurrences(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	children, err := h.services.Bookings.ListChildren(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to list booking occurrences")
		return
	}

	c.JSON(http.StatusOK, children)
}

// Memberships handlers

// CreateMembership - POST /api/memberships
// Завести абонемент
func (h *Handlers) CreateMembership(c *gin.Context) {
	var req models.CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.services.Memberships.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create membership")
		return
	}

	c.JSON(http.StatusCreated, models.CreateMembershipResponse{
		ID:                 membership.ID,
		DiscountPercentage: membership.DiscountPercentage,
	})
}

// ListMemberships - GET /api/memberships
// Абонементы текущего клиента
func (h *Handlers) ListMemberships(c *gin.Context) {
	memberships, err := h.services.Memberships.ListByCustomer(c.Request.Context(), customerID(c))
	if err != nil {
		respondError(c, err, "Failed to list memberships")
		return
	}

	c.JSON(http.StatusOK, memberships)
}

// GetMembership - GET /api/memberships/:id
func (h *Handlers) GetMembership(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	membership, err := h.services.Memberships.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get membership")
		return
	}

	c.JSON(http.StatusOK, membership)
}

// PayMembership - PATCH /api/memberships/:id/pay
// Зафиксировать оплату абонемента
func (h *Handlers) PayMembership(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	membership, err := h.services.Memberships.MarkPaid(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to mark membership paid")
		return
	}

	c.JSON(http.StatusOK, membership)
}

// RenewMembership - PATCH /api/memberships/:id/renew
// Продлить абонемент
func (h *Handlers) RenewMembership(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.RenewMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.services.Memberships.Renew(c.Request.Context(), id, req.DurationDays)
	if err != nil {
		respondError(c, err, "Failed to renew membership")
		return
	}

	c.JSON(http.StatusOK, membership)
}

// CancelMembership - PATCH /api/memberships/:id/cancel
// Закрыть абонемент
func (h *Handlers) CancelMembership(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	membership, err := h.services.Memberships.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to cancel membership")
		return
	}

	c.JSON(http.StatusOK, membership)
}

// Waitlist handlers

// JoinWaitlist - POST /api/waitlist
// Встать в очередь ожидания по площадке
func (h *Handlers) JoinWaitlist(c *gin.Context) {
	var req models.JoinWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.services.Waitlist.Join(c.Request.Context(), customerID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to join waitlist")
		return
	}

	c.JSON(http.StatusCreated, models.JoinWaitlistResponse{ID: entry.ID})
}

// ListWaitlist - GET /api/waitlist?facility_id=N
// Очередь ожидания по площадке
func (h *Handlers) ListWaitlist(c *gin.Context) {
	facilityID, err := strconv.ParseInt(c.Query("facility_id"), 10, 64)
	if err != nil || facilityID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "facility_id is required"})
		return
	}

	entries, err := h.services.Waitlist.ListByFacility(c.Request.Context(), facilityID)
	if err != nil {
		respondError(c, err, "Failed to list waitlist")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// BookWaitlistEntry - PATCH /api/waitlist/:id/book
// Закрыть уведомленную запись очереди после бронирования
func (h *Handlers) BookWaitlistEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	entry, err := h.services.Waitlist.MarkBooked(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to update waitlist entry")
		return
	}

	c.JSON(http.StatusOK, entry)
}
