package response

import (
	"time"

	"cinema-reservation/internal/data/entity"
)

type CinemaResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	City       string    `json:"city"`
	TotalHalls int       `json:"total_halls"`
	CreatedAt  time.Time `json:"created_at"`
}

type HallResponse struct {
	ID         string         `json:"id"`
	CinemaID   string         `json:"cinema_id"`
	Name       string         `json:"name"`
	TotalSeats int            `json:"total_seats"`
	Seats      []SeatResponse `json:"seats,omitempty"`
}

type SeatResponse struct {
	ID         string          `json:"id"`
	SeatNumber string          `json:"seat_number"`
	SeatType   entity.SeatType `json:"seat_type"`
}

// Helper converters
func CinemaToResponse(cinema *entity.Cinema) CinemaResponse {
	return CinemaResponse{
		ID:         cinema.ID.String(),
		Name:       cinema.Name,
		City:       cinema.City,
		TotalHalls: cinema.TotalHalls,
		CreatedAt:  cinema.CreatedAt,
	}
}

func HallToResponse(hall *entity.Hall, seats []*entity.Seat) HallResponse {
	resp := HallResponse{
		ID:         hall.ID.String(),
		CinemaID:   hall.CinemaID.String(),
		Name:       hall.Name,
		TotalSeats: hall.TotalSeats,
	}
	for _, seat := range seats {
		resp.Seats = append(resp.Seats, SeatToResponse(seat))
	}
	return resp
}

func SeatToResponse(seat *entity.Seat) SeatResponse {
	return SeatResponse{
		ID:         seat.ID.String(),
		SeatNumber: seat.SeatNumber,
		SeatType:   seat.SeatType,
	}
}
