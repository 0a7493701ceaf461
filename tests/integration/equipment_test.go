package integration

import (
	"net/http"
	"testing"
	"time"

	"courtbase/internal/models"
)

func TestStockExhaustionBlocksConfirm(t *testing.T) {
	RequireServer(t)
	client := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)

	facilityID := client.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Court S"),
		FacilityType: "court",
		Capacity:     4,
		HourlyRate:   40,
	})

	// Единственный экземпляр на весь объект
	equipmentID := client.CreateEquipment(t, models.CreateEquipmentRequest{
		Name:          UniqueName("Net"),
		EquipmentType: "net",
		TotalQuantity: 1,
		RentalRate:    5,
		FacilityIDs:   []int64{facilityID},
	})

	first := TomorrowAt(10)
	second := TomorrowAt(14)

	firstBooking := client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: first,
		EndDatetime:   first.Add(time.Hour),
		EquipmentIDs:  []int64{equipmentID},
	})
	secondBooking := client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: second,
		EndDatetime:   second.Add(time.Hour),
		EquipmentIDs:  []int64{equipmentID},
	})

	client.ConfirmBooking(t, firstBooking.ID)

	equipment := client.GetEquipment(t, equipmentID)
	if equipment.QuantityAvailable != 0 {
		t.Fatalf("Expected 0 available after checkout, got %d", equipment.QuantityAvailable)
	}

	// Второе подтверждение должно упасть: остаток исчерпан
	status := client.TryConfirmBooking(t, secondBooking.ID)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422 for exhausted stock, got %d", status)
	}

	booking := client.GetBooking(t, secondBooking.ID)
	if booking.Status != "draft" {
		t.Fatalf("Failed confirmation should leave booking in draft, got %s", booking.Status)
	}

	// Завершение первой брони возвращает остаток ровно до исходного
	client.CompleteBooking(t, firstBooking.ID)

	equipment = client.GetEquipment(t, equipmentID)
	if equipment.QuantityAvailable != 1 {
		t.Fatalf("Expected stock restored to 1 after completion, got %d", equipment.QuantityAvailable)
	}

	client.ConfirmBooking(t, secondBooking.ID)
}

func TestCancelRestoresStock(t *testing.T) {
	RequireServer(t)
	client := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)

	facilityID := client.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Court R"),
		FacilityType: "court",
		Capacity:     4,
		HourlyRate:   40,
	})
	equipmentID := client.CreateEquipment(t, models.CreateEquipmentRequest{
		Name:          UniqueName("Racket"),
		EquipmentType: "racket",
		TotalQuantity: 3,
		RentalRate:    4,
		FacilityIDs:   []int64{facilityID},
	})

	start := TomorrowAt(12)
	booking := client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: start,
		EndDatetime:   start.Add(time.Hour),
		EquipmentIDs:  []int64{equipmentID},
	})
	client.ConfirmBooking(t, booking.ID)

	equipment := client.GetEquipment(t, equipmentID)
	if equipment.QuantityAvailable != 2 {
		t.Fatalf("Expected 2 available after checkout, got %d", equipment.QuantityAvailable)
	}

	client.CancelBooking(t, booking.ID)

	equipment = client.GetEquipment(t, equipmentID)
	if equipment.QuantityAvailable != 3 {
		t.Fatalf("Expected stock restored to 3 after cancellation, got %d", equipment.QuantityAvailable)
	}
}

func TestResetFromConfirmedRestoresStock(t *testing.T) {
	RequireServer(t)
	client := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)

	facilityID := client.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Court Q"),
		FacilityType: "court",
		Capacity:     4,
		HourlyRate:   40,
	})
	equipmentID := client.CreateEquipment(t, models.CreateEquipmentRequest{
		Name:          UniqueName("Mat"),
		EquipmentType: "mat",
		TotalQuantity: 2,
		RentalRate:    3,
		FacilityIDs:   []int64{facilityID},
	})

	start := TomorrowAt(16)
	booking := client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: start,
		EndDatetime:   start.Add(time.Hour),
		EquipmentIDs:  []int64{equipmentID},
	})
	client.ConfirmBooking(t, booking.ID)

	equipment := client.GetEquipment(t, equipmentID)
	if equipment.QuantityAvailable != 1 {
		t.Fatalf("Expected 1 available after checkout, got %d", equipment.QuantityAvailable)
	}

	// Возврат подтверждённой брони в черновик освобождает инвентарь
	resp := client.makeRequest(t, "PATCH", "/api/bookings/"+itoa(booking.ID)+"/reset", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 resetting booking, got %d", resp.StatusCode)
	}

	reset := client.GetBooking(t, booking.ID)
	if reset.Status != "draft" {
		t.Fatalf("Expected draft after reset, got %s", reset.Status)
	}

	equipment = client.GetEquipment(t, equipmentID)
	if equipment.QuantityAvailable != 2 {
		t.Fatalf("Expected stock restored to 2 after reset, got %d", equipment.QuantityAvailable)
	}
}
