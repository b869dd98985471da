package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "supperclub/internal/errors"
	"supperclub/internal/models"
)

func TestRespondErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"event not found", apperrors.ErrEventNotFound, http.StatusNotFound, "EVENT_NOT_FOUND"},
		{"slot not open", apperrors.ErrSlotNotOpen, http.StatusConflict, "SLOT_NOT_OPEN"},
		{"insufficient seats", apperrors.ErrInsufficientSeats, http.StatusConflict, "INSUFFICIENT_SEATS"},
		{"duplicate booking", apperrors.ErrDuplicateBooking, http.StatusConflict, "DUPLICATE_BOOKING"},
		{"quota exceeded", apperrors.ErrQuotaExceeded, http.StatusConflict, "QUOTA_EXCEEDED"},
		{"host suspended", apperrors.ErrHostSuspended, http.StatusForbidden, "HOST_SUSPENDED"},
		{"invalid price", apperrors.ErrInvalidPrice, http.StatusInternalServerError, "INVALID_PRICE"},
		{"persistence failure", apperrors.ErrPersistenceFailure, http.StatusInternalServerError, "PERSISTENCE_FAILURE"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, ""},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			if tc.code != "" {
				assert.Equal(t, tc.code, resp.Code)
			}
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRespondErrorWrappedErrorsStillMap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	wrapped := errors.Join(errors.New("reserve seats failed after 3 attempts"), apperrors.ErrInsufficientSeats)
	respondError(c, wrapped)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func setupReservationRouter(authUserID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := NewHandlers(nil)

	r.POST("/api/reservations", func(c *gin.Context) {
		if authUserID != 0 {
			c.Set("user_id", authUserID)
		}
		h.CreateReservation(c)
	})

	return r
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateReservationRejectsMalformedBody(t *testing.T) {
	r := setupReservationRouter(20)

	req, _ := http.NewRequest("POST", "/api/reservations", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReservationRejectsZeroSeats(t *testing.T) {
	r := setupReservationRouter(20)

	w := postJSON(r, "/api/reservations", models.CreateReservationRequest{
		SlotID:       1,
		Seats:        0,
		PrimaryGuest: models.GuestInfo{Name: "Nino B"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReservationRejectsTooManyAdditionalGuests(t *testing.T) {
	r := setupReservationRouter(20)

	// Two seats fit the primary guest plus one more, not two more.
	w := postJSON(r, "/api/reservations", models.CreateReservationRequest{
		SlotID:       1,
		Seats:        2,
		PrimaryGuest: models.GuestInfo{Name: "Nino B"},
		AdditionalGuests: []models.GuestInfo{
			{Name: "Guest One"},
			{Name: "Guest Two"},
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReservationRequiresAuthenticatedUser(t *testing.T) {
	r := setupReservationRouter(0)

	w := postJSON(r, "/api/reservations", models.CreateReservationRequest{
		SlotID:       1,
		Seats:        1,
		PrimaryGuest: models.GuestInfo{Name: "Nino B"},
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetBookingRejectsBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandlers(nil)
	r.GET("/api/bookings/:id", h.GetBooking)

	req, _ := http.NewRequest("GET", "/api/bookings/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSlotsValidatesPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandlers(nil)
	r.GET("/api/slots", h.ListSlots)

	req, _ := http.NewRequest("GET", "/api/slots?page=0", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req, _ = http.NewRequest("GET", "/api/slots?pageSize=100", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
