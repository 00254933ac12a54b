package entity

import "github.com/google/uuid"

type SeatType string

const (
	SeatTypeGolden SeatType = "golden"
	SeatTypeSilver SeatType = "silver"
	SeatTypeVIP    SeatType = "vip"
)

// SeatTypes lists every seat type a hall layout may use.
var SeatTypes = []SeatType{SeatTypeGolden, SeatTypeSilver, SeatTypeVIP}

func (t SeatType) Valid() bool {
	for _, st := range SeatTypes {
		if st == t {
			return true
		}
	}
	return false
}

// Seat is a physical seat in a hall, shared by every show in that hall.
type Seat struct {
	Base
	HallID     uuid.UUID `db:"hall_id"`
	SeatNumber string    `db:"seat_number"` // A1, A2, B1, etc.
	SeatType   SeatType  `db:"seat_type"`
}
