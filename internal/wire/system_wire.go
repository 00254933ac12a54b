package wire

import (
	"cinema-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireSystem(r chi.Router, systemHandler *adaptor.SystemHandler) {
	r.Get("/health", systemHandler.Health)
	r.Get("/api/admin/expiry/stats", systemHandler.ExpiryStats)
}
