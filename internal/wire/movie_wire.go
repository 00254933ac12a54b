package wire

import (
	"cinema-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireMovie(r chi.Router, movieHandler *adaptor.MovieHandler) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/movies", movieHandler.ListMovies)
	r.Get("/api/movies/{id}", movieHandler.GetMovie)

	// ==================== ADMIN ROUTES ====================
	// admin auth is enforced in front of this service
	r.Route("/api/admin/movies", func(r chi.Router) {
		r.Post("/", movieHandler.CreateMovie)       // POST /api/admin/movies
		r.Delete("/{id}", movieHandler.DeleteMovie) // DELETE /api/admin/movies/{id}
	})
}
