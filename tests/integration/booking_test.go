package integration

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"courtbase/internal/models"
)

func TestBookingLifecycle(t *testing.T) {
	RequireServer(t)
	client := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)

	facilityID := client.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Court A"),
		FacilityType: "court",
		Capacity:     4,
		HourlyRate:   50,
	})

	start := TomorrowAt(10)
	end := start.Add(2 * time.Hour)

	booking := client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: start,
		EndDatetime:   end,
	})

	if booking.Reference == "" {
		t.Fatal("Booking reference should not be empty")
	}
	// 2 часа по 50 без скидки
	if booking.TotalCost != 100 {
		t.Fatalf("Expected total cost 100, got %.2f", booking.TotalCost)
	}

	full := client.GetBooking(t, booking.ID)
	if full.Status != "draft" {
		t.Fatalf("New booking should be draft, got %s", full.Status)
	}

	confirmed := client.ConfirmBooking(t, booking.ID)
	if confirmed.Status != "confirmed" {
		t.Fatalf("Expected status confirmed, got %s", confirmed.Status)
	}

	completed := client.CompleteBooking(t, booking.ID)
	if completed.Status != "completed" {
		t.Fatalf("Expected status completed, got %s", completed.Status)
	}
}

func TestBookingOverlapRejected(t *testing.T) {
	RequireServer(t)
	client := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)

	facilityID := client.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Court B"),
		FacilityType: "court",
		Capacity:     2,
		HourlyRate:   40,
	})

	start := TomorrowAt(12)
	end := start.Add(2 * time.Hour)

	client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: start,
		EndDatetime:   end,
	})

	// Пересекающееся окно должно быть отклонено
	status := client.TryCreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: start.Add(time.Hour),
		EndDatetime:   end.Add(time.Hour),
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422 for overlapping booking, got %d", status)
	}

	// Смежное окно (конец = начало) конфликтом не считается
	status = client.TryCreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: end,
		EndDatetime:   end.Add(time.Hour),
	})
	if status != http.StatusCreated {
		t.Fatalf("Expected status 201 for back-to-back booking, got %d", status)
	}
}

func TestBookingOutsideOperatingHoursRejected(t *testing.T) {
	RequireServer(t)
	client := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)

	facilityID := client.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Court C"),
		FacilityType: "court",
		Capacity:     2,
		HourlyRate:   40,
	})

	// Часы работы по умолчанию 8:00-22:00
	start := TomorrowAt(6)
	status := client.TryCreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: start,
		EndDatetime:   start.Add(time.Hour),
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422 for booking before opening, got %d", status)
	}
}

func TestCancelWithFullRefund(t *testing.T) {
	RequireServer(t)
	client := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)

	facilityID := client.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Court D"),
		FacilityType: "court",
		Capacity:     2,
		HourlyRate:   60,
	})

	// Старт через 3 дня: отмена попадает в полный возврат (>= 48 часов)
	future := time.Now().AddDate(0, 0, 3)
	start := time.Date(future.Year(), future.Month(), future.Day(), 10, 0, 0, 0, time.Local)

	booking := client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: start,
		EndDatetime:   start.Add(time.Hour),
	})
	client.ConfirmBooking(t, booking.ID)

	cancelled := client.CancelBooking(t, booking.ID)
	if cancelled.Status != "cancelled" {
		t.Fatalf("Expected status cancelled, got %s", cancelled.Status)
	}
	if cancelled.RefundPercent != 100 {
		t.Fatalf("Expected 100%% refund for early cancellation, got %.0f%%", cancelled.RefundPercent)
	}
}

func TestAvailabilityReflectsBookings(t *testing.T) {
	RequireServer(t)
	client := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)

	facilityID := client.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Court E"),
		FacilityType: "court",
		Capacity:     2,
		HourlyRate:   45,
	})

	start := TomorrowAt(14)
	date := start.Format("2006-01-02")

	before := client.GetAvailability(t, facilityID, date)
	AssertSlotFree(t, before, 14)

	client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: start,
		EndDatetime:   start.Add(2 * time.Hour),
	})

	after := client.GetAvailability(t, facilityID, date)
	AssertSlotBusy(t, after, 14)
	AssertSlotBusy(t, after, 15)
	AssertSlotFree(t, after, 16)
}

func TestRecurringBookingGeneratesChildren(t *testing.T) {
	RequireServer(t)
	client := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)

	facilityID := client.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Court F"),
		FacilityType: "court",
		Capacity:     2,
		HourlyRate:   30,
	})

	start := TomorrowAt(9)
	recurrenceType := "weekly"
	count := 3

	booking := client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:      facilityID,
		StartDatetime:   start,
		EndDatetime:     start.Add(time.Hour),
		IsRecurring:     true,
		RecurrenceType:  &recurrenceType,
		RecurrenceCount: &count,
	})
	client.ConfirmBooking(t, booking.ID)

	resp := client.makeRequest(t, "GET", "/api/bookings/"+itoa(booking.ID)+"/occurrences", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 listing occurrences, got %d", resp.StatusCode)
	}

	var children []models.Booking
	decodeBody(t, resp, &children)
	if len(children) != count {
		t.Fatalf("Expected %d child bookings, got %d", count, len(children))
	}
	for _, child := range children {
		if child.Status != "draft" {
			t.Fatalf("Child booking %d should be draft, got %s", child.ID, child.Status)
		}
		if child.ParentBookingID == nil || *child.ParentBookingID != booking.ID {
			t.Fatalf("Child booking %d should point to parent %d", child.ID, booking.ID)
		}
	}
}

func TestRecurringConfirmKeepsParentWhenAllSlotsBusy(t *testing.T) {
	RequireServer(t)
	client := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)

	facilityID := client.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Court G"),
		FacilityType: "court",
		Capacity:     2,
		HourlyRate:   30,
	})

	// Единственный повтор (через неделю) занят заранее
	start := TomorrowAt(9)
	blockerStart := start.AddDate(0, 0, 7)
	blocker := client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: blockerStart,
		EndDatetime:   blockerStart.Add(time.Hour),
	})
	client.ConfirmBooking(t, blocker.ID)

	recurrenceType := "weekly"
	count := 1
	parent := client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:      facilityID,
		StartDatetime:   start,
		EndDatetime:     start.Add(time.Hour),
		IsRecurring:     true,
		RecurrenceType:  &recurrenceType,
		RecurrenceCount: &count,
	})

	status := client.TryConfirmBooking(t, parent.ID)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422 when every occurrence conflicts, got %d", status)
	}

	// Родительская бронь остаётся подтверждённой, конфликт повторов её не откатывает
	confirmed := client.GetBooking(t, parent.ID)
	if confirmed.Status != "confirmed" {
		t.Fatalf("Parent should stay confirmed, got %s", confirmed.Status)
	}
	if confirmed.Notes == nil || !strings.Contains(*confirmed.Notes, "Skipped recurring slots") {
		t.Fatal("Parent notes should record the skipped occurrences")
	}
}
