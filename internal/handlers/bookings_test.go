package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sol1corejz/trailerent/cmd/config"
	"github.com/sol1corejz/trailerent/internal/models"
	"github.com/sol1corejz/trailerent/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingApp(t *testing.T, userID uuid.UUID) (*fiber.App, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	storage.DB = db

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	app.Post("/api/bookings", CreateBookingHandler)
	return app, mock
}

func mustTime(t *testing.T, value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func TestCreateBookingHandlerRegistersRentalPayment(t *testing.T) {
	userID := uuid.New()
	app, mock := newBookingApp(t, userID)

	received := make(chan gatewayCreateRequest, 1)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gatewayCreateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		received <- req
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(gateway.Close)

	config.PaymentGatewayAddress = gateway.URL
	t.Cleanup(func() { config.PaymentGatewayAddress = "" })

	mock.ExpectQuery("FROM trailers WHERE id").WithArgs(int64(7)).
		WillReturnRows(trailerRow())
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM trailers").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("AVAILABLE"))
	mock.ExpectQuery("SELECT start_time, end_time, status FROM bookings").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"start_time", "end_time", "status"}))
	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(mustTime(t, "2025-06-01T09:00:00Z"), mustTime(t, "2025-06-01T09:00:00Z")))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), userID, models.PaymentTypeRental, int64(600), models.PaymentPending).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	payload, err := json.Marshal(map[string]interface{}{
		"trailerId":  7,
		"startTime":  "2025-06-01T10:00:00Z",
		"endTime":    "2025-06-01T13:00:00Z",
		"rentalType": "HOURLY",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/bookings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, true, decoded["success"])

	data := decoded["data"].(map[string]interface{})
	paymentID, _ := data["paymentId"].(string)
	require.NotEmpty(t, paymentID)

	// the gateway saw the same rental payment the client was told to poll
	got := <-received
	assert.Equal(t, paymentID, got.PaymentID)
	assert.Equal(t, models.PaymentTypeRental, got.Type)
	assert.Equal(t, int64(600), got.Amount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingHandlerGatewayDown(t *testing.T) {
	userID := uuid.New()
	app, mock := newBookingApp(t, userID)

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(gateway.Close)

	config.PaymentGatewayAddress = gateway.URL
	t.Cleanup(func() { config.PaymentGatewayAddress = "" })

	mock.ExpectQuery("FROM trailers WHERE id").WithArgs(int64(7)).
		WillReturnRows(trailerRow())
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM trailers").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("AVAILABLE"))
	mock.ExpectQuery("SELECT start_time, end_time, status FROM bookings").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"start_time", "end_time", "status"}))
	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(mustTime(t, "2025-06-01T09:00:00Z"), mustTime(t, "2025-06-01T09:00:00Z")))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), userID, models.PaymentTypeRental, int64(600), models.PaymentPending).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	payload, err := json.Marshal(map[string]interface{}{
		"trailerId":  7,
		"startTime":  "2025-06-01T10:00:00Z",
		"endTime":    "2025-06-01T13:00:00Z",
		"rentalType": "HOURLY",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/bookings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
