package adaptor

import (
	"net/http"
	"strconv"

	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ShowHandler struct {
	catalog usecase.CatalogService
	ledger  usecase.LedgerService
	log     *zap.Logger
}

func NewShowHandler(catalog usecase.CatalogService, ledger usecase.LedgerService, log *zap.Logger) *ShowHandler {
	return &ShowHandler{
		catalog: catalog,
		ledger:  ledger,
		log:     log.With(zap.String("handler", "show")),
	}
}

// ListShows handles GET /api/shows?movie_id=&hall_id=&from=&to=&bookable=true
func (h *ShowHandler) ListShows(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	bookable, _ := strconv.ParseBool(query.Get("bookable"))

	shows, err := h.catalog.ListShows(r.Context(), request.ShowFilter{
		MovieID:  query.Get("movie_id"),
		HallID:   query.Get("hall_id"),
		From:     query.Get("from"),
		To:       query.Get("to"),
		Bookable: bookable,
	})
	if err != nil {
		writeServiceError(w, h.log, err, "list shows")
		return
	}

	utils.ResponseSuccess(w, "success", shows)
}

// GetShow handles GET /api/shows/{id}
func (h *ShowHandler) GetShow(w http.ResponseWriter, r *http.Request) {
	show, err := h.catalog.GetShow(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get show")
		return
	}

	utils.ResponseSuccess(w, "Show retrieved successfully", show)
}

// GetShowSeats handles GET /api/shows/{id}/seats?status=
func (h *ShowHandler) GetShowSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := h.ledger.SeatsForShow(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, h.log, err, "get show seats")
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}

// GetAvailableSeats handles GET /api/shows/{id}/seats/available
func (h *ShowHandler) GetAvailableSeats(w http.ResponseWriter, r *http.Request) {
	ids, err := h.ledger.AvailableSeats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get available seats")
		return
	}

	utils.ResponseSuccess(w, "success", map[string]any{"seat_ids": ids})
}

// ScheduleShow handles POST /api/admin/shows
func (h *ShowHandler) ScheduleShow(w http.ResponseWriter, r *http.Request) {
	var req request.ShowRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	show, err := h.catalog.ScheduleShow(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "schedule show")
		return
	}

	utils.ResponseCreated(w, "Show scheduled successfully", show)
}

// RepriceShow handles PUT /api/admin/shows/{id}/price
func (h *ShowHandler) RepriceShow(w http.ResponseWriter, r *http.Request) {
	var req request.RepriceRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	show, err := h.catalog.RepriceShow(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "reprice show")
		return
	}

	utils.ResponseSuccess(w, "Show repriced successfully", show)
}

// DeleteShow handles DELETE /api/admin/shows/{id}
func (h *ShowHandler) DeleteShow(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteShow(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete show")
		return
	}

	utils.ResponseSuccess(w, "Show deleted successfully", nil)
}
