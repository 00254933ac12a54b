package request

type MovieRequest struct {
	Title             string `json:"title" validate:"required,min=1,max=200"`
	Description       string `json:"description" validate:"max=2000"`
	DurationInMinutes int    `json:"duration_in_minutes" validate:"required,min=1,max=999"`
	Language          string `json:"language" validate:"required,max=50"`
	Country           string `json:"country" validate:"max=100"`
	Genre             string `json:"genre" validate:"max=50"`
	ReleaseDate       string `json:"release_date" validate:"required,datetime=2006-01-02"`
}
