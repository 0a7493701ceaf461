package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"courtbase/internal/models"
)

// TestClient provides methods for testing the API
type TestClient struct {
	BaseURL    string
	Username   string
	Password   string
	HTTPClient *http.Client
}

// NewTestClient creates a new test client authenticating as the given customer
func NewTestClient(baseURL, username, password string) *TestClient {
	return &TestClient{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// makeRequest makes an HTTP request and returns the response
func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.Username, c.Password)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

// CreateFacility creates a facility and returns its id
func (c *TestClient) CreateFacility(t *testing.T, req models.CreateFacilityRequest) int64 {
	resp := c.makeRequest(t, "POST", "/api/facilities", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var created models.CreateFacilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode facility response: %v", err)
	}

	return created.ID
}

// ListFacilities lists facilities, optionally filtered by search query
func (c *TestClient) ListFacilities(t *testing.T, query string) []models.Facility {
	path := "/api/facilities"
	if query != "" {
		path += "?query=" + query
	}
	resp := c.makeRequest(t, "GET", path, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var facilities []models.Facility
	if err := json.NewDecoder(resp.Body).Decode(&facilities); err != nil {
		t.Fatalf("Failed to decode facilities response: %v", err)
	}

	return facilities
}

// GetAvailability returns a facility's free slots for a date
func (c *TestClient) GetAvailability(t *testing.T, facilityID int64, date string) *models.AvailabilityResponse {
	path := fmt.Sprintf("/api/facilities/%d/availability?date=%s", facilityID, date)
	resp := c.makeRequest(t, "GET", path, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var availability models.AvailabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&availability); err != nil {
		t.Fatalf("Failed to decode availability response: %v", err)
	}

	return &availability
}

// CreateEquipment creates an equipment item and returns its id
func (c *TestClient) CreateEquipment(t *testing.T, req models.CreateEquipmentRequest) int64 {
	resp := c.makeRequest(t, "POST", "/api/equipment", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var created models.CreateEquipmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode equipment response: %v", err)
	}

	return created.ID
}

// GetEquipment fetches a single equipment item by id
func (c *TestClient) GetEquipment(t *testing.T, id int64) *models.Equipment {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/equipment/%d", id), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var equipment models.Equipment
	if err := json.NewDecoder(resp.Body).Decode(&equipment); err != nil {
		t.Fatalf("Failed to decode equipment response: %v", err)
	}

	return &equipment
}

// CreateBooking creates a draft booking
func (c *TestClient) CreateBooking(t *testing.T, req models.CreateBookingRequest) *models.CreateBookingResponse {
	resp := c.makeRequest(t, "POST", "/api/bookings", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var booking models.CreateBookingResponse
	if err := json.NewDecoder(resp.Body).Decode(&booking); err != nil {
		t.Fatalf("Failed to decode booking response: %v", err)
	}

	return &booking
}

// TryCreateBooking creates a booking without failing the test on errors,
// returning the raw status code
func (c *TestClient) TryCreateBooking(t *testing.T, req models.CreateBookingRequest) int {
	resp := c.makeRequest(t, "POST", "/api/bookings", req)
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

// GetBooking fetches a booking by id
func (c *TestClient) GetBooking(t *testing.T, id int64) *models.Booking {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/bookings/%d", id), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var booking models.Booking
	if err := json.NewDecoder(resp.Body).Decode(&booking); err != nil {
		t.Fatalf("Failed to decode booking response: %v", err)
	}

	return &booking
}

// ConfirmBooking confirms a draft booking
func (c *TestClient) ConfirmBooking(t *testing.T, id int64) *models.Booking {
	resp := c.makeRequest(t, "PATCH", fmt.Sprintf("/api/bookings/%d/confirm", id), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var booking models.Booking
	if err := json.NewDecoder(resp.Body).Decode(&booking); err != nil {
		t.Fatalf("Failed to decode booking response: %v", err)
	}

	return &booking
}

// TryConfirmBooking attempts confirmation and returns the status code
func (c *TestClient) TryConfirmBooking(t *testing.T, id int64) int {
	resp := c.makeRequest(t, "PATCH", fmt.Sprintf("/api/bookings/%d/confirm", id), nil)
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

// CompleteBooking completes a confirmed booking
func (c *TestClient) CompleteBooking(t *testing.T, id int64) *models.Booking {
	resp := c.makeRequest(t, "PATCH", fmt.Sprintf("/api/bookings/%d/complete", id), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var booking models.Booking
	if err := json.NewDecoder(resp.Body).Decode(&booking); err != nil {
		t.Fatalf("Failed to decode booking response: %v", err)
	}

	return &booking
}

// CancelBooking cancels a booking and returns the refund calculation
func (c *TestClient) CancelBooking(t *testing.T, id int64) *models.CancelBookingResponse {
	resp := c.makeRequest(t, "PATCH", fmt.Sprintf("/api/bookings/%d/cancel", id), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var cancelled models.CancelBookingResponse
	if err := json.NewDecoder(resp.Body).Decode(&cancelled); err != nil {
		t.Fatalf("Failed to decode cancel response: %v", err)
	}

	return &cancelled
}

// CreateMembership creates a membership for a customer
func (c *TestClient) CreateMembership(t *testing.T, req models.CreateMembershipRequest) *models.CreateMembershipResponse {
	resp := c.makeRequest(t, "POST", "/api/memberships", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var created models.CreateMembershipResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode membership response: %v", err)
	}

	return &created
}

// PayMembership marks a membership as paid
func (c *TestClient) PayMembership(t *testing.T, id int64) *models.Membership {
	resp := c.makeRequest(t, "PATCH", fmt.Sprintf("/api/memberships/%d/pay", id), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var membership models.Membership
	if err := json.NewDecoder(resp.Body).Decode(&membership); err != nil {
		t.Fatalf("Failed to decode membership response: %v", err)
	}

	return &membership
}

// JoinWaitlist puts the customer on a facility waitlist
func (c *TestClient) JoinWaitlist(t *testing.T, req models.JoinWaitlistRequest) int64 {
	resp := c.makeRequest(t, "POST", "/api/waitlist", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var created models.JoinWaitlistResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode waitlist response: %v", err)
	}

	return created.ID
}

// ListWaitlist lists the waitlist of a facility
func (c *TestClient) ListWaitlist(t *testing.T, facilityID int64) []models.WaitlistEntry {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/waitlist?facility_id=%d", facilityID), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var entries []models.WaitlistEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("Failed to decode waitlist response: %v", err)
	}

	return entries
}
