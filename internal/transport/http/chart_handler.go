package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"airlinekpi/internal/charts"
	apierrors "airlinekpi/internal/errors"
	"airlinekpi/internal/middleware"
	"airlinekpi/internal/services"
)

// ChartHandler serves the dashboard charts as SVG
type ChartHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		validator:    middleware.NewQueryParamValidator(logger),
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/airlines/volume.svg", h.serve(services.ChartAirlineVolume))
	r.Get("/airlines/delay.svg", h.serve(services.ChartAirlineDelay))
	r.Get("/routes/top.svg", h.serve(services.ChartRouteTop))
	r.Get("/airports/volume.svg", h.serve(services.ChartAirportVolume))
	r.Get("/airports/delay.svg", h.serve(services.ChartAirportDelay))
	r.Get("/trends.svg", h.serve(services.ChartTrends))
	return r
}

func (h *ChartHandler) serve(id services.ChartID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := h.validator.ParseViewQuery(r, DefaultViewQuery)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		svg, err := h.service.Chart(r.Context(), id, services.ChartParams{
			MinFlights: q.MinFlights,
			Airline:    q.Airline,
			Width:      q.Width,
			Height:     q.Height,
		})
		if err != nil {
			h.logger.WarnContext(r.Context(), "chart render failed",
				slog.String("chart", string(id)),
				slog.String("error", err.Error()))
			h.errorHandler.HandleError(w, r, mapServiceError(err, requestContext{airline: q.Airline}))
			return
		}

		w.Header().Set("Content-Type", charts.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(svg)))
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(svg)
	}
}
