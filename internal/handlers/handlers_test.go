package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "courtbase/internal/errors"
)

func testContext(method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c, w
}

func TestRespondErrorValidation(t *testing.T) {
	c, w := testContext("POST", "/api/bookings")

	verr := apperrors.NewValidation("facility Court A is already booked for the selected time")
	verr.Conflicts = append(verr.Conflicts, apperrors.Conflict{
		Reference: "BK-12345678",
		Start:     "2026-09-01T10:00:00Z",
		End:       "2026-09-01T12:00:00Z",
	})

	respondError(c, verr, "Failed to create booking")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "already booked")

	conflicts, ok := body["conflicts"].([]any)
	assert.True(t, ok)
	assert.Len(t, conflicts, 1)
}

func TestRespondErrorNotFound(t *testing.T) {
	c, w := testContext("GET", "/api/facilities/999")

	respondError(c, apperrors.ErrNotFound, "Failed to get facility")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRespondErrorForbidden(t *testing.T) {
	c, w := testContext("GET", "/api/bookings/7")

	respondError(c, apperrors.ErrForbidden, "Forbidden")

	assert.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Forbidden", body["error"])
}

func TestRespondErrorInternal(t *testing.T) {
	c, w := testContext("GET", "/api/bookings")

	respondError(c, assert.AnError, "Failed to list bookings")

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	// Внутренние детали ошибки наружу не уходят
	assert.Equal(t, "Failed to list bookings", body["error"])
}

func TestPathID(t *testing.T) {
	c, _ := testContext("GET", "/api/bookings/42")
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	id, ok := pathID(c)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestPathIDInvalid(t *testing.T) {
	for _, bad := range []string{"abc", "0", "-5", ""} {
		c, w := testContext("GET", "/api/bookings/"+bad)
		c.Params = gin.Params{{Key: "id", Value: bad}}

		_, ok := pathID(c)
		assert.False(t, ok, "value %q should be rejected", bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestCustomerIDDefaultsToZero(t *testing.T) {
	c, _ := testContext("GET", "/api/bookings")
	assert.Equal(t, int64(0), customerID(c))

	c.Set("customer_id", int64(7))
	assert.Equal(t, int64(7), customerID(c))
}
