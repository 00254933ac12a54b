package adaptor

import (
	"net/http"

	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CinemaHandler struct {
	service usecase.CatalogService
	log     *zap.Logger
}

func NewCinemaHandler(service usecase.CatalogService, log *zap.Logger) *CinemaHandler {
	return &CinemaHandler{
		service: service,
		log:     log.With(zap.String("handler", "cinema")),
	}
}

// CreateCinema handles POST /api/admin/cinemas
func (h *CinemaHandler) CreateCinema(w http.ResponseWriter, r *http.Request) {
	var req request.CinemaRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	cinema, err := h.service.CreateCinema(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create cinema")
		return
	}

	utils.ResponseCreated(w, "Cinema created successfully", cinema)
}

// CreateHall handles POST /api/admin/cinemas/{id}/halls
func (h *CinemaHandler) CreateHall(w http.ResponseWriter, r *http.Request) {
	var req request.HallRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	hall, err := h.service.CreateHall(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create hall")
		return
	}

	utils.ResponseCreated(w, "Hall created successfully", hall)
}

// GetSeatLayout handles GET /api/halls/{id}/layout
func (h *CinemaHandler) GetSeatLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := h.service.GetSeatLayout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get seat layout")
		return
	}

	utils.ResponseSuccess(w, "Seat layout retrieved successfully", layout)
}
