package entity

import "github.com/google/uuid"

// BookingSeat is the line item of a booking. Seat number, type and price are
// copied at hold time so the booking keeps its history after the seat is released.
type BookingSeat struct {
	BaseSimple
	BookingID  uuid.UUID `db:"booking_id"`
	ShowSeatID uuid.UUID `db:"show_seat_id"`
	SeatNumber string    `db:"seat_number"`
	SeatType   SeatType  `db:"seat_type"`
	Price      float64   `db:"price"`
}
