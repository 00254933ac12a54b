package wire

import (
	"cinema-reservation/internal/adaptor"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/internal/worker"
	"cinema-reservation/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router *chi.Mux
}

// Wiring builds the handlers and the router on top of the services.
func Wiring(service *usecase.Service, expiry *worker.ExpiryWorker, logger *zap.Logger) *App {
	handler := adaptor.NewHandler(service, expiry, logger)

	return &App{
		Router: setupRouter(handler, logger),
	}
}

// setupRouter konfigurasi Chi router
func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	// Apply routes
	wireMovie(r, handler.Movie)
	wireCinema(r, handler.Cinema)
	wireShow(r, handler.Show)
	wireBooking(r, handler.Booking, logger)
	wireSystem(r, handler.System)

	return r
}
