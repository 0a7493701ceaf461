package integration

import (
	"testing"
	"time"

	"courtbase/internal/models"
)

func TestWaitlistNotifiedOnCancellation(t *testing.T) {
	RequireServer(t)
	booker := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)
	waiter := NewTestClient(APIBaseURL, "member@courtbase.local", TestCustomerPassword)

	facilityID := booker.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Pool A"),
		FacilityType: "pool",
		Capacity:     10,
		HourlyRate:   80,
	})

	start := TomorrowAt(11)
	booking := booker.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: start,
		EndDatetime:   start.Add(time.Hour),
	})
	booker.ConfirmBooking(t, booking.ID)

	preferredDate := start.Format("2006-01-02")
	entryID := waiter.JoinWaitlist(t, models.JoinWaitlistRequest{
		FacilityID:    facilityID,
		PreferredDate: &preferredDate,
	})

	booker.CancelBooking(t, booking.ID)

	// Первый подходящий кандидат очереди должен быть уведомлен
	entries := waiter.ListWaitlist(t, facilityID)
	for _, entry := range entries {
		if entry.ID == entryID {
			if entry.Status != "notified" {
				t.Fatalf("Expected waitlist entry to be notified, got %s", entry.Status)
			}
			if entry.NotifiedAt == nil {
				t.Fatal("Notified entry should have notified_at set")
			}
			return
		}
	}
	t.Fatalf("Waitlist entry %d not found", entryID)
}

func TestWaitlistTimePreferenceFiltersSlot(t *testing.T) {
	RequireServer(t)
	booker := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)
	waiter := NewTestClient(APIBaseURL, "member@courtbase.local", TestCustomerPassword)

	facilityID := booker.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Pool B"),
		FacilityType: "pool",
		Capacity:     10,
		HourlyRate:   80,
	})

	// Бронь утром, кандидат хочет только вечер: уведомления быть не должно
	start := TomorrowAt(9)
	booking := booker.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: start,
		EndDatetime:   start.Add(time.Hour),
	})
	booker.ConfirmBooking(t, booking.ID)

	preferredDate := start.Format("2006-01-02")
	eveningStart := 18.0
	eveningEnd := 21.0
	entryID := waiter.JoinWaitlist(t, models.JoinWaitlistRequest{
		FacilityID:         facilityID,
		PreferredDate:      &preferredDate,
		PreferredTimeStart: &eveningStart,
		PreferredTimeEnd:   &eveningEnd,
	})

	booker.CancelBooking(t, booking.ID)

	entries := waiter.ListWaitlist(t, facilityID)
	for _, entry := range entries {
		if entry.ID == entryID {
			if entry.Status != "waiting" {
				t.Fatalf("Entry outside preferred time should stay waiting, got %s", entry.Status)
			}
			return
		}
	}
	t.Fatalf("Waitlist entry %d not found", entryID)
}

func TestWaitlistFIFONotifyOrder(t *testing.T) {
	RequireServer(t)
	booker := NewTestClient(APIBaseURL, TestCustomerEmail, TestCustomerPassword)
	waiter := NewTestClient(APIBaseURL, "member@courtbase.local", TestCustomerPassword)

	facilityID := booker.CreateFacility(t, models.CreateFacilityRequest{
		Name:         UniqueName("Pool C"),
		FacilityType: "pool",
		Capacity:     10,
		HourlyRate:   80,
	})

	start := TomorrowAt(15)
	booking := booker.CreateBooking(t, models.CreateBookingRequest{
		FacilityID:    facilityID,
		StartDatetime: start,
		EndDatetime:   start.Add(time.Hour),
	})
	booker.ConfirmBooking(t, booking.ID)

	preferredDate := start.Format("2006-01-02")
	firstEntryID := waiter.JoinWaitlist(t, models.JoinWaitlistRequest{
		FacilityID:    facilityID,
		PreferredDate: &preferredDate,
	})
	secondEntryID := waiter.JoinWaitlist(t, models.JoinWaitlistRequest{
		FacilityID:    facilityID,
		PreferredDate: &preferredDate,
	})

	booker.CancelBooking(t, booking.ID)

	// Уведомляется только самая ранняя запись очереди
	statuses := map[int64]string{}
	for _, entry := range waiter.ListWaitlist(t, facilityID) {
		statuses[entry.ID] = entry.Status
	}
	if statuses[firstEntryID] != "notified" {
		t.Fatalf("Expected first entry notified, got %s", statuses[firstEntryID])
	}
	if statuses[secondEntryID] != "waiting" {
		t.Fatalf("Expected second entry still waiting, got %s", statuses[secondEntryID])
	}
}
