package wire

import (
	"cinema-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireCinema(r chi.Router, cinemaHandler *adaptor.CinemaHandler) {
	r.Get("/api/halls/{id}/layout", cinemaHandler.GetSeatLayout)

	r.Route("/api/admin/cinemas", func(r chi.Router) {
		r.Post("/", cinemaHandler.CreateCinema)         // POST /api/admin/cinemas
		r.Post("/{id}/halls", cinemaHandler.CreateHall) // POST /api/admin/cinemas/{id}/halls
	})
}
