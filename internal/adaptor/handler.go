package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"cinema-reservation/internal/domain"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/internal/worker"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Movie   *MovieHandler
	Cinema  *CinemaHandler
	Show    *ShowHandler
	Booking *BookingHandler
	System  *SystemHandler
}

func NewHandler(service *usecase.Service, expiry *worker.ExpiryWorker, log *zap.Logger) *Handler {
	return &Handler{
		Movie:   NewMovieHandler(service.Catalog, log),
		Cinema:  NewCinemaHandler(service.Catalog, log),
		Show:    NewShowHandler(service.Catalog, service.Ledger, log),
		Booking: NewBookingHandler(service.Booking, log),
		System:  NewSystemHandler(expiry, log),
	}
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var (
		validation  *domain.ValidationError
		unavailable *domain.SeatUnavailableError
	)

	switch {
	case errors.As(err, &validation):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", validation.Fields)

	case errors.As(err, &unavailable):
		log.Info(operation+" failed - seats unavailable", zap.Error(err))
		ids := make([]string, len(unavailable.SeatIDs))
		for i, id := range unavailable.SeatIDs {
			ids[i] = id.String()
		}
		utils.ResponseConflict(w, "Seats are not available", map[string][]string{"unavailable": ids})

	case domain.IsNotFoundError(err):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case domain.IsInvalidStateError(err):
		log.Warn(operation+" failed - invalid state", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), nil)

	case domain.IsHoldExpiredError(err):
		log.Info(operation+" failed - hold expired", zap.Error(err))
		utils.ResponseGone(w, err.Error())

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Warn(operation+" interrupted", zap.Error(err))
		utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Request timed out", nil, nil)

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// userIDFrom returns the caller id set by middleware.Identity.
func userIDFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "User not authenticated")
		return "", false
	}
	return userID.String(), true
}
