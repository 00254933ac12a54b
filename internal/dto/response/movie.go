package response

import (
	"time"

	"cinema-reservation/internal/data/entity"
)

type MovieResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	DurationInMinutes int       `json:"duration_in_minutes"`
	Language          string    `json:"language"`
	Country           string    `json:"country,omitempty"`
	Genre             string    `json:"genre,omitempty"`
	ReleaseDate       string    `json:"release_date"`
	CreatedAt         time.Time `json:"created_at"`
}

func MovieToResponse(movie *entity.Movie) MovieResponse {
	return MovieResponse{
		ID:                movie.ID.String(),
		Title:             movie.Title,
		Description:       movie.Description,
		DurationInMinutes: movie.DurationInMinutes,
		Language:          movie.Language,
		Country:           movie.Country,
		Genre:             movie.Genre,
		ReleaseDate:       movie.ReleaseDate.Format("2006-01-02"),
		CreatedAt:         movie.CreatedAt,
	}
}
