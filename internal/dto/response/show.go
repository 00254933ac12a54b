package response

import (
	"time"

	"cinema-reservation/internal/data/entity"
)

type ShowResponse struct {
	ID             string    `json:"id"`
	MovieID        string    `json:"movie_id"`
	HallID         string    `json:"hall_id"`
	ShowDate       string    `json:"show_date"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	BasePrice      float64   `json:"base_price"`
	AvailableSeats *int      `json:"available_seats,omitempty"`
}

// ShowSeatResponse is one row of a show's seat map. The booking holding the
// seat is not exposed.
type ShowSeatResponse struct {
	ID         string                `json:"id"`
	SeatID     string                `json:"seat_id"`
	SeatNumber string                `json:"seat_number"`
	SeatType   entity.SeatType       `json:"seat_type"`
	Price      float64               `json:"price"`
	Status     entity.ShowSeatStatus `json:"status"`
	HeldUntil  *time.Time            `json:"held_until,omitempty"`
}

func ShowToResponse(show *entity.Show) ShowResponse {
	return ShowResponse{
		ID:        show.ID.String(),
		MovieID:   show.MovieID.String(),
		HallID:    show.HallID.String(),
		ShowDate:  show.ShowDate.Format("2006-01-02"),
		StartTime: show.StartTime,
		EndTime:   show.EndTime,
		BasePrice: show.BasePrice,
	}
}

func ShowSeatToResponse(ss *entity.ShowSeat, seat *entity.Seat) ShowSeatResponse {
	resp := ShowSeatResponse{
		ID:        ss.ID.String(),
		SeatID:    ss.SeatID.String(),
		Price:     ss.Price,
		Status:    ss.Status,
		HeldUntil: ss.HeldUntil,
	}
	if seat != nil {
		resp.SeatNumber = seat.SeatNumber
		resp.SeatType = seat.SeatType
	}
	return resp
}
