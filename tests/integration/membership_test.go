package integration

import (
	"testing"
	"time"

	"courtbase/internal/models"
)

func TestMembershipDiscountAppliesAfterPayment(t *testing.T) {
	RequireServer(t)
	client := NewTestClient(APIBaseURL, "member@courtbase.local", TestCustomerPassword)

	facilityID := client.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Gym A"),
		FacilityType: "gym",
		Capacity:     20,
		HourlyRate:   100,
	})

	// Узнаем id клиента через его бронирование
	probe := client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    probeStart(t, client, facilityID),
		StartDatetime: TomorrowAt(8),
		EndDatetime:   TomorrowAt(9),
	})
	customerID := client.GetBooking(t, probe.ID).CustomerID

	membership := client.CreateMembership(t, models.CreateMembershipRequest{
		CustomerID:     customerID,
		MembershipType: "premium",
		StartDate:      time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
		EndDate:        time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
	})
	if membership.DiscountPercentage != 15 {
		t.Fatalf("Expected default premium discount 15, got %.0f", membership.DiscountPercentage)
	}

	// Неоплаченный абонемент скидки не дает
	unpaid := client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: TomorrowAt(10),
		EndDatetime:   TomorrowAt(11),
	})
	if unpaid.TotalCost != 100 {
		t.Fatalf("Unpaid membership must not discount: expected 100, got %.2f", unpaid.TotalCost)
	}

	client.PayMembership(t, membership.ID)

	// После оплаты цена снижается на 15%
	discounted := client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: TomorrowAt(12),
		EndDatetime:   TomorrowAt(13),
	})
	if discounted.TotalCost != 85 {
		t.Fatalf("Expected discounted cost 85, got %.2f", discounted.TotalCost)
	}
}

// probeStart создает отдельную площадку, чтобы пробная бронь не занимала
// слоты основной площадки теста.
func probeStart(t *testing.T, client *TestClient, _ int64) int64 {
	return client.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Probe"),
		FacilityType: "court",
		Capacity:     1,
		HourlyRate:   10,
	})
}

func TestEquipmentAddsToCost(t *testing.T) {
	RequireServer(t)
	client := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)

	facilityID := client.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Court G"),
		FacilityType: "court",
		Capacity:     4,
		HourlyRate:   50,
	})
	equipmentID := client.CreateEquipment(t, models.CreateEquipmentRequest{
		Name:          UniqueName("Racket"),
		EquipmentType: "racket",
		TotalQuantity: 2,
		RentalRate:    10,
		FacilityIDs:   []int64{facilityID},
	})

	start := TomorrowAt(16)
	booking := client.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: start,
		EndDatetime:   start.Add(2 * time.Hour),
		EquipmentIDs:  []int64{equipmentID},
	})

	// (50 + 10) * 2 часа
	if booking.TotalCost != 120 {
		t.Fatalf("Expected total cost 120 with equipment, got %.2f", booking.TotalCost)
	}
}
