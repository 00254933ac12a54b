package entity

import (
	"time"

	"github.com/google/uuid"
)

type Show struct {
	Base
	MovieID   uuid.UUID `db:"movie_id"`
	HallID    uuid.UUID `db:"hall_id"`
	ShowDate  time.Time `db:"show_date"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`
	BasePrice float64   `db:"base_price"`
}

// Overlaps reports whether the show's [start, end) window intersects [start, end).
func (s *Show) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && start.Before(s.EndTime)
}
