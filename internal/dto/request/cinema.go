package request

type CinemaRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	City string `json:"city" validate:"required,min=1,max=100"`
}

// HallRequest configures a hall and its seat layout in one go; the layout
// cannot be changed afterwards.
type HallRequest struct {
	Name  string        `json:"name" validate:"required,min=1,max=100"`
	Seats []SeatRequest `json:"seats" validate:"required,min=1,max=1000,dive"`
}

type SeatRequest struct {
	SeatNumber string `json:"seat_number" validate:"required,max=10"`
	SeatType   string `json:"seat_type" validate:"required,oneof=golden silver vip"`
}
