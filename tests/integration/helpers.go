package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"courtbase/internal/models"
)

const (
	APIBaseURL = "http://localhost:8081"

	// Test customer seeded by scripts/seed.sql
	TestCustomerEmail    = "test@courtbase.local"
	TestCustomerPassword = "test123"
)

// RequireServer skips the test when the API is not reachable, so the
// integration suite can live next to the unit tests.
func RequireServer(t *testing.T) {
	t.Helper()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(APIBaseURL + "/health")
	if err != nil {
		t.Skipf("API server not reachable at %s: %v", APIBaseURL, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("API server unhealthy at %s: status %d", APIBaseURL, resp.StatusCode)
	}
}

// TomorrowAt returns tomorrow's date at the given hour, formatted windows
// are always inside default operating hours (8:00-22:00).
func TomorrowAt(hour int) time.Time {
	tomorrow := time.Now().AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), hour, 0, 0, 0, time.Local)
}

// UniqueName appends a timestamp suffix to keep test fixtures distinct
// between runs against the same database.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}

// AssertSlotFree checks that a slot starting at the given hour is free
func AssertSlotFree(t *testing.T, availability *models.AvailabilityResponse, startHour float64) {
	t.Helper()
	for _, slot := range availability.Slots {
		if slot.StartHour == startHour {
			return
		}
	}
	t.Fatalf("Slot starting at %.0f:00 not free on %s, slots: %+v", startHour, availability.Date, availability.Slots)
}

// AssertSlotBusy checks that no free slot starts at the given hour
func AssertSlotBusy(t *testing.T, availability *models.AvailabilityResponse, startHour float64) {
	t.Helper()
	for _, slot := range availability.Slots {
		if slot.StartHour == startHour {
			t.Fatalf("Slot starting at %.0f:00 unexpectedly free on %s", startHour, availability.Date)
		}
	}
}
