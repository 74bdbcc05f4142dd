package http

import (
	"net/http"

	apierrors "airlinekpi/internal/errors"
)

// MetricsHandler exposes the Prometheus registry fed by OpenTelemetry
type MetricsHandler struct {
	exporter     http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps the Prometheus exporter. A nil exporter means
// metrics are disabled and the endpoint answers 503.
func NewMetricsHandler(exporter http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{
		exporter:     exporter,
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		h.errorHandler.HandleError(w, r, apierrors.New(http.StatusServiceUnavailable,
			apierrors.CodeServiceUnavailable, "metrics are disabled"))
		return
	}
	h.exporter.ServeHTTP(w, r)
}
