package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sol1corejz/trailerent/internal/domain"
	"github.com/sol1corejz/trailerent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) sqlmock.Sqlmock {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	DB = db
	return mock
}

func at(hour int) time.Time {
	return time.Date(2025, 6, 1, hour, 0, 0, 0, time.UTC)
}

func testBooking(userID uuid.UUID) models.Booking {
	return models.Booking{
		UserID:         userID,
		TrailerID:      7,
		StartTime:      at(10),
		EndTime:        at(13),
		RentalType:     models.RentalTypeHourly,
		BaseCost:       600,
		AdditionalCost: 0,
		Deposit:        5000,
		Total:          600,
	}
}

func bookingRows(b models.Booking) *sqlmock.Rows {
	return sqlmock.NewRows(strings.Split(bookingColumns, ", ")).
		AddRow(b.ID.String(), b.UserID.String(), b.TrailerID, b.StartTime, b.EndTime,
			b.RentalType, b.Pickup, b.BaseCost, b.AdditionalCost, b.Deposit, b.Total,
			b.Status, b.CreatedAt, b.UpdatedAt)
}

func paymentRows(p models.Payment) *sqlmock.Rows {
	return sqlmock.NewRows(strings.Split(paymentColumns, ", ")).
		AddRow(p.ID.String(), p.BookingID.String(), p.UserID.String(), p.Type,
			p.Amount, p.Status, p.CreatedAt, p.UpdatedAt)
}

func TestCreateBookingSuccess(t *testing.T) {
	mock := newMock(t)
	userID := uuid.New()
	booking := testBooking(userID)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM trailers").WithArgs(booking.TrailerID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("AVAILABLE"))
	mock.ExpectQuery("SELECT start_time, end_time, status FROM bookings").WithArgs(booking.TrailerID).
		WillReturnRows(sqlmock.NewRows([]string{"start_time", "end_time", "status"}))
	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(at(9), at(9)))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), userID, models.PaymentTypeRental, booking.Total, models.PaymentPending).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	payment, err := CreateBooking(context.Background(), &booking)
	require.NoError(t, err)

	assert.Equal(t, models.BookingPendingPayment, booking.Status)
	assert.NotEqual(t, uuid.Nil, booking.ID)
	assert.NotEqual(t, uuid.Nil, payment.ID)
	assert.Equal(t, booking.ID, payment.BookingID)
	assert.Equal(t, models.PaymentTypeRental, payment.Type)
	assert.Equal(t, booking.Total, payment.Amount)
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingConflict(t *testing.T) {
	mock := newMock(t)
	booking := testBooking(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM trailers").WithArgs(booking.TrailerID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("AVAILABLE"))
	mock.ExpectQuery("SELECT start_time, end_time, status FROM bookings").WithArgs(booking.TrailerID).
		WillReturnRows(sqlmock.NewRows([]string{"start_time", "end_time", "status"}).
			AddRow(at(12), at(14), models.BookingPaid))
	mock.ExpectRollback()

	_, err := CreateBooking(context.Background(), &booking)
	assert.ErrorAs(t, err, &domain.ConflictError{})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingAdjacentWindowConflicts(t *testing.T) {
	mock := newMock(t)
	booking := testBooking(uuid.New())

	// existing booking ends exactly when the new one starts
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM trailers").WithArgs(booking.TrailerID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("AVAILABLE"))
	mock.ExpectQuery("SELECT start_time, end_time, status FROM bookings").WithArgs(booking.TrailerID).
		WillReturnRows(sqlmock.NewRows([]string{"start_time", "end_time", "status"}).
			AddRow(at(8), at(10), models.BookingActive))
	mock.ExpectRollback()

	_, err := CreateBooking(context.Background(), &booking)
	assert.ErrorAs(t, err, &domain.ConflictError{})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingTrailerUnderMaintenance(t *testing.T) {
	mock := newMock(t)
	booking := testBooking(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM trailers").WithArgs(booking.TrailerID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("MAINTENANCE"))
	mock.ExpectRollback()

	_, err := CreateBooking(context.Background(), &booking)
	assert.ErrorAs(t, err, &domain.ConflictError{})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingTrailerMissing(t *testing.T) {
	mock := newMock(t)
	booking := testBooking(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM trailers").WithArgs(booking.TrailerID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	_, err := CreateBooking(context.Background(), &booking)
	assert.ErrorAs(t, err, &domain.NotFoundError{})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingStatusInvalidTransition(t *testing.T) {
	mock := newMock(t)
	booking := testBooking(uuid.New())
	booking.ID = uuid.New()
	booking.Status = models.BookingActive

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs(booking.ID).
		WillReturnRows(bookingRows(booking))
	mock.ExpectRollback()

	_, err := UpdateBookingStatus(context.Background(), booking.ID, models.BookingCancelled)
	assert.ErrorAs(t, err, &domain.InvalidTransitionError{})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingStatusCloseRefundsDeposit(t *testing.T) {
	mock := newMock(t)
	booking := testBooking(uuid.New())
	booking.ID = uuid.New()
	booking.Status = models.BookingReturned

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs(booking.ID).
		WillReturnRows(bookingRows(booking))
	mock.ExpectQuery("UPDATE bookings SET status").WithArgs(models.BookingClosed, booking.ID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(at(18)))
	mock.ExpectExec("UPDATE payments SET status = 'REFUNDED'").WithArgs(booking.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := UpdateBookingStatus(context.Background(), booking.ID, models.BookingClosed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingClosed, updated.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingStatusCancelVoidsPayments(t *testing.T) {
	mock := newMock(t)
	booking := testBooking(uuid.New())
	booking.ID = uuid.New()
	booking.Status = models.BookingPendingPayment

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs(booking.ID).
		WillReturnRows(bookingRows(booking))
	mock.ExpectQuery("UPDATE bookings SET status").WithArgs(models.BookingCancelled, booking.ID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(at(18)))
	mock.ExpectExec("UPDATE payments SET status = 'CANCELLED'").WithArgs(booking.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := UpdateBookingStatus(context.Background(), booking.ID, models.BookingCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, updated.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPaymentStatusCompletedRental(t *testing.T) {
	mock := newMock(t)

	booking := testBooking(uuid.New())
	booking.ID = uuid.New()
	booking.Status = models.BookingPendingPayment

	payment := models.Payment{
		ID:        uuid.New(),
		BookingID: booking.ID,
		UserID:    booking.UserID,
		Type:      models.PaymentTypeRental,
		Amount:    booking.Total,
		Status:    models.PaymentPending,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM payments WHERE id").WithArgs(payment.ID).
		WillReturnRows(paymentRows(payment))
	mock.ExpectQuery("UPDATE payments SET status").WithArgs(models.PaymentCompleted, payment.ID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(at(11)))
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs(booking.ID).
		WillReturnRows(bookingRows(booking))
	mock.ExpectQuery("UPDATE bookings SET status").WithArgs(models.BookingPaid, booking.ID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(at(11)))
	mock.ExpectCommit()

	updatedPayment, updatedBooking, err := ApplyPaymentStatus(context.Background(), payment.ID, models.PaymentCompleted)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentCompleted, updatedPayment.Status)
	assert.Equal(t, models.BookingPaid, updatedBooking.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPaymentStatusCompletedDepositActivates(t *testing.T) {
	mock := newMock(t)

	booking := testBooking(uuid.New())
	booking.ID = uuid.New()
	booking.Status = models.BookingPaid

	payment := models.Payment{
		ID:        uuid.New(),
		BookingID: booking.ID,
		UserID:    booking.UserID,
		Type:      models.PaymentTypeDepositHold,
		Amount:    booking.Deposit,
		Status:    models.PaymentProcessing,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM payments WHERE id").WithArgs(payment.ID).
		WillReturnRows(paymentRows(payment))
	mock.ExpectQuery("UPDATE payments SET status").WithArgs(models.PaymentCompleted, payment.ID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(at(11)))
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs(booking.ID).
		WillReturnRows(bookingRows(booking))
	mock.ExpectQuery("UPDATE bookings SET status").WithArgs(models.BookingActive, booking.ID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(at(11)))
	mock.ExpectCommit()

	_, updatedBooking, err := ApplyPaymentStatus(context.Background(), payment.ID, models.PaymentCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.BookingActive, updatedBooking.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPaymentStatusNoChange(t *testing.T) {
	mock := newMock(t)

	payment := models.Payment{
		ID:        uuid.New(),
		BookingID: uuid.New(),
		UserID:    uuid.New(),
		Type:      models.PaymentTypeRental,
		Status:    models.PaymentPending,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM payments WHERE id").WithArgs(payment.ID).
		WillReturnRows(paymentRows(payment))
	mock.ExpectRollback()

	updated, booking, err := ApplyPaymentStatus(context.Background(), payment.ID, models.PaymentPending)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, updated.Status)
	assert.Equal(t, uuid.Nil, booking.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsTrailerAvailableFailsClosed(t *testing.T) {
	mock := newMock(t)

	// trailer under maintenance reads as unavailable for any window
	trailerCols := strings.Split(trailerColumns, ", ")
	mock.ExpectQuery("FROM trailers WHERE id").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(trailerCols).
			AddRow(int64(7), int64(1), "Cargo 750", "", "MAINTENANCE",
				int64(2), int64(500), int64(100), int64(900), int64(5000), int64(500), at(0)))

	available, err := IsTrailerAvailable(context.Background(), 7, at(10), at(12))
	require.NoError(t, err)
	assert.False(t, available)

	// missing trailer also reads as unavailable
	mock.ExpectQuery("FROM trailers WHERE id").WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(trailerCols))

	available, err = IsTrailerAvailable(context.Background(), 8, at(10), at(12))
	require.NoError(t, err)
	assert.False(t, available)

	assert.NoError(t, mock.ExpectationsWereMet())
}
