package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "airlinekpi/internal/errors"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	service      HealthServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service HealthServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *HealthHandler {
	return &HealthHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "health")),
		errorHandler: errorHandler,
	}
}

// Routes returns the health routes
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HealthCheck)
	r.Get("/ready", h.ReadinessCheck)
	r.Get("/live", h.LivenessCheck)
	r.Get("/stats", h.SystemStats)
	r.Get("/detailed", h.DetailedHealth)
	return r
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.HealthCheck(r.Context()))
}

// ReadinessCheck handles GET /api/health/ready. Probes read the status
// code, so a dashboard without loadable KPI files answers 503.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.service.ReadinessCheck(r.Context())
	if status.Status != "ready" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}

// LivenessCheck handles GET /api/health/live
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.LivenessCheck(r.Context()))
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}

// SystemStats handles GET /api/health/stats
func (h *HealthHandler) SystemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.SystemStats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to collect system stats",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, stats)
}

// DetailedHealth handles GET /api/health/detailed
func (h *HealthHandler) DetailedHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.GetDetailedHealth(r.Context()))
}
