package request

type ShowRequest struct {
	MovieID   string  `json:"movie_id" validate:"required,uuid4"`
	HallID    string  `json:"hall_id" validate:"required,uuid4"`
	StartTime string  `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	BasePrice float64 `json:"base_price" validate:"required,gt=0"`
}

type RepriceRequest struct {
	BasePrice float64 `json:"base_price" validate:"required,gt=0"`
}

// ShowFilter carries the raw query parameters of GET /api/shows.
type ShowFilter struct {
	MovieID  string
	HallID   string
	From     string
	To       string
	Bookable bool
}
