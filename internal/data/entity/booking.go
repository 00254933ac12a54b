package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

type Booking struct {
	Base
	UserID        uuid.UUID     `db:"user_id"`
	ShowID        uuid.UUID     `db:"show_id"`
	NumberOfSeats int           `db:"number_of_seats"`
	TotalAmount   float64       `db:"total_amount"`
	Status        BookingStatus `db:"status"`
	ExpiresAt     time.Time     `db:"expires_at"`
	ConfirmedAt   *time.Time    `db:"confirmed_at"`
	CancelledAt   *time.Time    `db:"cancelled_at"`
}
