package adaptor

import (
	"net/http"

	"cinema-reservation/internal/worker"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

type SystemHandler struct {
	expiry *worker.ExpiryWorker
	log    *zap.Logger
}

func NewSystemHandler(expiry *worker.ExpiryWorker, log *zap.Logger) *SystemHandler {
	return &SystemHandler{
		expiry: expiry,
		log:    log.With(zap.String("handler", "system")),
	}
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// ExpiryStats handles GET /api/admin/expiry/stats
func (h *SystemHandler) ExpiryStats(w http.ResponseWriter, r *http.Request) {
	if h.expiry == nil {
		utils.ResponseNotFound(w, "Expiry worker is not running")
		return
	}
	utils.ResponseSuccess(w, "success", h.expiry.GetStats())
}
