package response

import (
	"time"

	"cinema-reservation/internal/data/entity"
)

type BookingResponse struct {
	ID            string                `json:"id"`
	UserID        string                `json:"user_id"`
	ShowID        string                `json:"show_id"`
	NumberOfSeats int                   `json:"number_of_seats"`
	TotalAmount   float64               `json:"total_amount"`
	Status        entity.BookingStatus  `json:"status"`
	ExpiresAt     time.Time             `json:"expires_at"`
	ConfirmedAt   *time.Time            `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty"`
	Seats         []BookingSeatResponse `json:"seats"`
	CreatedAt     time.Time             `json:"created_at"`
}

type BookingSeatResponse struct {
	ShowSeatID string          `json:"show_seat_id"`
	SeatNumber string          `json:"seat_number"`
	SeatType   entity.SeatType `json:"seat_type"`
	Price      float64         `json:"price"`
}

type BookingDetailResponse struct {
	BookingResponse
	ShowDetails ShowDetails `json:"show_details"`
}

type ShowDetails struct {
	MovieTitle string    `json:"movie_title"`
	HallName   string    `json:"hall_name"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

// BookingToResponse derives number_of_seats from the line items.
func BookingToResponse(booking *entity.Booking, items []*entity.BookingSeat) BookingResponse {
	seats := make([]BookingSeatResponse, len(items))
	for i, it := range items {
		seats[i] = BookingSeatResponse{
			ShowSeatID: it.ShowSeatID.String(),
			SeatNumber: it.SeatNumber,
			SeatType:   it.SeatType,
			Price:      it.Price,
		}
	}

	return BookingResponse{
		ID:            booking.ID.String(),
		UserID:        booking.UserID.String(),
		ShowID:        booking.ShowID.String(),
		NumberOfSeats: len(items),
		TotalAmount:   booking.TotalAmount,
		Status:        booking.Status,
		ExpiresAt:     booking.ExpiresAt,
		ConfirmedAt:   booking.ConfirmedAt,
		CancelledAt:   booking.CancelledAt,
		Seats:         seats,
		CreatedAt:     booking.CreatedAt,
	}
}
