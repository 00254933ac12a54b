package request

type CreateBookingRequest struct {
	ShowID     string   `json:"show_id" validate:"required,uuid4"`
	SeatIDs    []string `json:"seat_ids" validate:"required,min=1,max=20,unique,dive,uuid4"`
	TTLSeconds int      `json:"ttl_seconds,omitempty" validate:"min=0"`
}
