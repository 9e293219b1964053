package models

import (
	"time"

	"github.com/google/uuid"
)

var (
	TrailerAvailable   = "AVAILABLE"
	TrailerRented      = "RENTED"
	TrailerMaintenance = "MAINTENANCE"
)

var (
	RentalTypeHourly = "HOURLY"
	RentalTypeDaily  = "DAILY"
)

var (
	BookingPendingPayment = "PENDING_PAYMENT"
	BookingPaid           = "PAID"
	BookingActive         = "ACTIVE"
	BookingReturned       = "RETURNED"
	BookingClosed         = "CLOSED"
	BookingCancelled      = "CANCELLED"
)

var (
	PaymentTypeRental      = "RENTAL"
	PaymentTypeDepositHold = "DEPOSIT_HOLD"
)

var (
	PaymentPending    = "PENDING"
	PaymentProcessing = "PROCESSING"
	PaymentCompleted  = "COMPLETED"
	PaymentFailed     = "FAILED"
	PaymentCancelled  = "CANCELLED"
	PaymentRefunded   = "REFUNDED"
)

var (
	VerificationPending  = "PENDING"
	VerificationVerified = "VERIFIED"
	VerificationRejected = "REJECTED"
)

// bookingTransitions is the rental lifecycle. CANCELLED is only reachable
// before the trailer is handed over.
var bookingTransitions = map[string][]string{
	BookingPendingPayment: {BookingPaid, BookingCancelled},
	BookingPaid:           {BookingActive, BookingCancelled},
	BookingActive:         {BookingReturned},
	BookingReturned:       {BookingClosed},
}

func BookingCanTransition(from, to string) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

var paymentTransitions = map[string][]string{
	PaymentPending:    {PaymentProcessing, PaymentCompleted, PaymentFailed, PaymentCancelled},
	PaymentProcessing: {PaymentCompleted, PaymentFailed, PaymentCancelled},
	PaymentCompleted:  {PaymentRefunded},
}

func PaymentCanTransition(from, to string) bool {
	for _, allowed := range paymentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func IsTerminalBooking(status string) bool {
	return status == BookingClosed || status == BookingCancelled
}

type Location struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}

type Trailer struct {
	ID          int64     `db:"id"`
	LocationID  int64     `db:"location_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	MinHours    int64     `db:"min_hours"`
	MinCost     int64     `db:"min_cost"`
	HourPrice   int64     `db:"hour_price"`
	DayPrice    int64     `db:"day_price"`
	Deposit     int64     `db:"deposit"`
	PickupPrice int64     `db:"pickup_price"`
	CreatedAt   time.Time `db:"created_at"`
}

type User struct {
	ID                      uuid.UUID `db:"id"`
	TelegramID              int64     `db:"telegram_id"`
	FirstName               string    `db:"first_name"`
	LastName                string    `db:"last_name"`
	Username                string    `db:"username"`
	Phone                   string    `db:"phone"`
	PhoneVerificationStatus string    `db:"phone_verification_status"`
	VerificationStatus      string    `db:"verification_status"`
	CreatedAt               time.Time `db:"created_at"`
}

type Admin struct {
	ID           uuid.UUID `db:"id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Booking keeps the pricing snapshot taken at creation time. The snapshot is
// never recomputed, even if the trailer rate card changes later.
type Booking struct {
	ID             uuid.UUID `db:"id"`
	UserID         uuid.UUID `db:"user_id"`
	TrailerID      int64     `db:"trailer_id"`
	StartTime      time.Time `db:"start_time"`
	EndTime        time.Time `db:"end_time"`
	RentalType     string    `db:"rental_type"`
	Pickup         bool      `db:"pickup"`
	BaseCost       int64     `db:"base_cost"`
	AdditionalCost int64     `db:"additional_cost"`
	Deposit        int64     `db:"deposit"`
	Total          int64     `db:"total"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type Payment struct {
	ID        uuid.UUID `db:"id"`
	BookingID uuid.UUID `db:"booking_id"`
	UserID    uuid.UUID `db:"user_id"`
	Type      string    `db:"type"`
	Amount    int64     `db:"amount"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
