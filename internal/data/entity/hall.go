package entity

import "github.com/google/uuid"

type Hall struct {
	Base
	CinemaID   uuid.UUID `db:"cinema_id"`
	Name       string    `db:"name"`
	TotalSeats int       `db:"total_seats"`
}
