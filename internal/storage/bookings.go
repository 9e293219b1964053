package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sol1corejz/trailerent/internal/availability"
	"github.com/sol1corejz/trailerent/internal/domain"
	"github.com/sol1corejz/trailerent/internal/models"
)

const bookingColumns = `id, user_id, trailer_id, start_time, end_time, rental_type, pickup, base_cost, additional_cost, deposit, total, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.TrailerID, &b.StartTime, &b.EndTime,
		&b.RentalType, &b.Pickup, &b.BaseCost, &b.AdditionalCost, &b.Deposit,
		&b.Total, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

const paymentColumns = `id, booking_id, user_id, type, amount, status, created_at, updated_at`

func scanPayment(row interface{ Scan(...interface{}) error }) (models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.BookingID, &p.UserID, &p.Type, &p.Amount,
		&p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateBooking inserts the booking and its PENDING rental payment in one
// transaction and returns the payment so the caller can announce it to the
// gateway and hand its ID to the client. The trailer row is locked first, so
// the availability check and the insert are atomic with respect to concurrent
// attempts on the same trailer: of two overlapping requests exactly one
// commits.
func CreateBooking(ctx context.Context, booking *models.Booking) (models.Payment, error) {
	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Payment{}, err
	}

	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM trailers WHERE id = $1 FOR UPDATE;
	`, booking.TrailerID).Scan(&status)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "trailer", Err: err}
		}
		return models.Payment{}, err
	}

	if status != models.TrailerAvailable {
		tx.Rollback()
		return models.Payment{}, domain.ConflictError{Resource: "trailer", Msg: "not available for rental"}
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT start_time, end_time, status FROM bookings
		WHERE trailer_id = $1 AND status NOT IN ('CLOSED', 'CANCELLED');
	`, booking.TrailerID)
	if err != nil {
		tx.Rollback()
		return models.Payment{}, err
	}

	var existing []models.Booking
	for rows.Next() {
		var b models.Booking
		if err = rows.Scan(&b.StartTime, &b.EndTime, &b.Status); err != nil {
			rows.Close()
			tx.Rollback()
			return models.Payment{}, err
		}
		existing = append(existing, b)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		tx.Rollback()
		return models.Payment{}, err
	}
	rows.Close()

	if availability.Conflicts(existing, booking.StartTime, booking.EndTime) {
		tx.Rollback()
		return models.Payment{}, domain.ConflictError{Resource: "booking", Msg: "trailer is already booked for this period"}
	}

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.Status = models.BookingPendingPayment

	err = tx.QueryRowContext(ctx, `
		INSERT INTO bookings (id, user_id, trailer_id, start_time, end_time, rental_type, pickup, base_cost, additional_cost, deposit, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at;
	`, booking.ID, booking.UserID, booking.TrailerID, booking.StartTime, booking.EndTime,
		booking.RentalType, booking.Pickup, booking.BaseCost, booking.AdditionalCost,
		booking.Deposit, booking.Total, booking.Status).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		tx.Rollback()
		return models.Payment{}, err
	}

	payment := models.Payment{
		ID:        uuid.New(),
		BookingID: booking.ID,
		UserID:    booking.UserID,
		Type:      models.PaymentTypeRental,
		Amount:    booking.Total,
		Status:    models.PaymentPending,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, booking_id, user_id, type, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6);
	`, payment.ID, payment.BookingID, payment.UserID, payment.Type, payment.Amount, payment.Status)
	if err != nil {
		tx.Rollback()
		return models.Payment{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Payment{}, err
	}

	return payment, nil
}

// IsTrailerAvailable answers the read-only availability question outside the
// booking transaction. Fails closed on missing or non-AVAILABLE trailers.
func IsTrailerAvailable(ctx context.Context, trailerID int64, start, end time.Time) (bool, error) {
	trailer, err := GetTrailerByID(ctx, trailerID)
	if err != nil {
		var notFound domain.NotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	if trailer.Status != models.TrailerAvailable {
		return false, nil
	}

	rows, err := DB.QueryContext(ctx, `
		SELECT start_time, end_time, status FROM bookings
		WHERE trailer_id = $1 AND status NOT IN ('CLOSED', 'CANCELLED');
	`, trailerID)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var existing []models.Booking
	for rows.Next() {
		var b models.Booking
		if err = rows.Scan(&b.StartTime, &b.EndTime, &b.Status); err != nil {
			return false, err
		}
		existing = append(existing, b)
	}
	if err = rows.Err(); err != nil {
		return false, err
	}

	return !availability.Conflicts(existing, start, end), nil
}

func GetBookingByID(ctx context.Context, bookingID uuid.UUID) (models.Booking, error) {
	booking, err := scanBooking(DB.QueryRowContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings WHERE id = $1;
	`, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, err
	}
	return booking, nil
}

func GetUserBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	return queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC;
	`, userID)
}

func GetAllBookings(ctx context.Context, status string) ([]models.Booking, error) {
	if status != "" {
		return queryBookings(ctx, `
			SELECT `+bookingColumns+` FROM bookings WHERE status = $1 ORDER BY created_at DESC;
		`, status)
	}
	return queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC;
	`)
}

func queryBookings(ctx context.Context, query string, args ...interface{}) ([]models.Booking, error) {
	rows, err := DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

// UpdateBookingStatus applies one lifecycle transition. Illegal transitions
// are rejected before anything is written. Closing a booking releases the
// deposit hold; cancelling voids any unfinished payments.
func UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, newStatus string) (models.Booking, error) {
	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Booking{}, err
	}

	booking, err := scanBooking(tx.QueryRowContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE;
	`, bookingID))
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, err
	}

	if !models.BookingCanTransition(booking.Status, newStatus) {
		tx.Rollback()
		return models.Booking{}, domain.InvalidTransitionError{From: booking.Status, To: newStatus}
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE bookings SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2 RETURNING updated_at;
	`, newStatus, bookingID).Scan(&booking.UpdatedAt)
	if err != nil {
		tx.Rollback()
		return models.Booking{}, err
	}
	booking.Status = newStatus

	switch newStatus {
	case models.BookingClosed:
		_, err = tx.ExecContext(ctx, `
			UPDATE payments SET status = 'REFUNDED', updated_at = CURRENT_TIMESTAMP
			WHERE booking_id = $1 AND type = 'DEPOSIT_HOLD' AND status = 'COMPLETED';
		`, bookingID)
	case models.BookingCancelled:
		_, err = tx.ExecContext(ctx, `
			UPDATE payments SET status = 'CANCELLED', updated_at = CURRENT_TIMESTAMP
			WHERE booking_id = $1 AND status IN ('PENDING', 'PROCESSING');
		`, bookingID)
	}
	if err != nil {
		tx.Rollback()
		return models.Booking{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Booking{}, err
	}

	return booking, nil
}

func CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.Status = models.PaymentPending

	return DB.QueryRowContext(ctx, `
		INSERT INTO payments (id, booking_id, user_id, type, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at;
	`, payment.ID, payment.BookingID, payment.UserID, payment.Type, payment.Amount,
		payment.Status).Scan(&payment.CreatedAt, &payment.UpdatedAt)
}

func GetPaymentByID(ctx context.Context, paymentID uuid.UUID) (models.Payment, error) {
	payment, err := scanPayment(DB.QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE id = $1;
	`, paymentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment", Err: err}
		}
		return models.Payment{}, err
	}
	return payment, nil
}

func GetUnfinishedPayments(ctx context.Context) ([]models.Payment, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE status IN ('PENDING', 'PROCESSING');
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

// ApplyPaymentStatus persists a gateway-reported payment status and drives
// the owning booking through its matching transition: a completed RENTAL
// payment moves the booking to PAID, a completed DEPOSIT_HOLD to ACTIVE, and
// a failed RENTAL payment cancels it. Payment and booking change in one
// transaction. The returned booking is the zero value when it did not change.
func ApplyPaymentStatus(ctx context.Context, paymentID uuid.UUID, newStatus string) (models.Payment, models.Booking, error) {
	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Payment{}, models.Booking{}, err
	}

	payment, err := scanPayment(tx.QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE;
	`, paymentID))
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, models.Booking{}, domain.NotFoundError{Resource: "payment", Err: err}
		}
		return models.Payment{}, models.Booking{}, err
	}

	if payment.Status == newStatus {
		tx.Rollback()
		return payment, models.Booking{}, nil
	}

	if !models.PaymentCanTransition(payment.Status, newStatus) {
		tx.Rollback()
		return models.Payment{}, models.Booking{}, domain.InvalidTransitionError{From: payment.Status, To: newStatus}
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE payments SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2 RETURNING updated_at;
	`, newStatus, paymentID).Scan(&payment.UpdatedAt)
	if err != nil {
		tx.Rollback()
		return models.Payment{}, models.Booking{}, err
	}
	payment.Status = newStatus

	var bookingStatus string
	switch {
	case newStatus == models.PaymentCompleted && payment.Type == models.PaymentTypeRental:
		bookingStatus = models.BookingPaid
	case newStatus == models.PaymentCompleted && payment.Type == models.PaymentTypeDepositHold:
		bookingStatus = models.BookingActive
	case newStatus == models.PaymentFailed && payment.Type == models.PaymentTypeRental:
		bookingStatus = models.BookingCancelled
	}

	var booking models.Booking
	if bookingStatus != "" {
		booking, err = scanBooking(tx.QueryRowContext(ctx, `
			SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE;
		`, payment.BookingID))
		if err != nil {
			tx.Rollback()
			return models.Payment{}, models.Booking{}, err
		}

		if models.BookingCanTransition(booking.Status, bookingStatus) {
			err = tx.QueryRowContext(ctx, `
				UPDATE bookings SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2 RETURNING updated_at;
			`, bookingStatus, booking.ID).Scan(&booking.UpdatedAt)
			if err != nil {
				tx.Rollback()
				return models.Payment{}, models.Booking{}, err
			}
			booking.Status = bookingStatus
		} else {
			booking = models.Booking{}
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Payment{}, models.Booking{}, err
	}

	return payment, booking, nil
}
