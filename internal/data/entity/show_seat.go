package entity

import (
	"time"

	"github.com/google/uuid"
)

type ShowSeatStatus string

const (
	ShowSeatStatusAvailable ShowSeatStatus = "available"
	ShowSeatStatusHeld      ShowSeatStatus = "held"
	ShowSeatStatusBooked    ShowSeatStatus = "booked"
)

func (s ShowSeatStatus) Valid() bool {
	switch s {
	case ShowSeatStatusAvailable, ShowSeatStatusHeld, ShowSeatStatusBooked:
		return true
	}
	return false
}

// ShowSeat is one physical seat instantiated for one show. BookingID is set
// only while the seat is held or booked.
type ShowSeat struct {
	Base
	ShowID    uuid.UUID      `db:"show_id"`
	SeatID    uuid.UUID      `db:"seat_id"`
	Price     float64        `db:"price"`
	Status    ShowSeatStatus `db:"status"`
	BookingID *uuid.UUID     `db:"booking_id"`
	HeldUntil *time.Time     `db:"held_until"`
}
