package entity

import (
	"time"
)

type Movie struct {
	Base
	Title             string    `db:"title"`
	Description       string    `db:"description"`
	DurationInMinutes int       `db:"duration_in_minutes"`
	Language          string    `db:"language"`
	Country           string    `db:"country"`
	Genre             string    `db:"genre"`
	ReleaseDate       time.Time `db:"release_date"`
}

// Duration returns the running time of the movie.
func (m *Movie) Duration() time.Duration {
	return time.Duration(m.DurationInMinutes) * time.Minute
}
