package wire

import (
	"cinema-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireShow(r chi.Router, showHandler *adaptor.ShowHandler) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/shows", showHandler.ListShows)
	r.Get("/api/shows/{id}", showHandler.GetShow)
	r.Get("/api/shows/{id}/seats", showHandler.GetShowSeats)
	r.Get("/api/shows/{id}/seats/available", showHandler.GetAvailableSeats)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/shows", func(r chi.Router) {
		r.Post("/", showHandler.ScheduleShow)         // POST /api/admin/shows
		r.Put("/{id}/price", showHandler.RepriceShow) // PUT /api/admin/shows/{id}/price
		r.Delete("/{id}", showHandler.DeleteShow)     // DELETE /api/admin/shows/{id}
	})
}
