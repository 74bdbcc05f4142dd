package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "airlinekpi/internal/errors"
	"airlinekpi/internal/middleware"
	"airlinekpi/internal/services"
	"airlinekpi/internal/views"
)

// DefaultViewQuery is the widget state of a request without parameters
var DefaultViewQuery = middleware.ViewQuery{
	MinFlights: views.DefaultMinFlights,
	Format:     services.FormatCSV,
}

// DashboardHandler serves the view data as JSON with RFC 7807 errors
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    middleware.NewQueryParamValidator(logger),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the JSON API routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/views", func(r chi.Router) {
		r.Get("/airlines", h.GetAirlines)
		r.Get("/routes", h.GetRoutes)
		r.Get("/airports", h.GetAirports)
		r.Get("/trends", h.GetTrends)
	})
	r.Get("/airlines", h.GetAirlineCodes)

	r.Get("/tables", h.GetTables)
	r.Get("/tables/{table}/download", h.DownloadTable)

	r.Route("/cache", func(r chi.Router) {
		r.Get("/stats", h.GetCacheStats)
		r.With(middleware.AuditLog(h.logger)).Post("/reload", h.ReloadCache)
	})

	return r
}

// query parses the widget parameters or answers 400 itself
func (h *DashboardHandler) query(w http.ResponseWriter, r *http.Request) (middleware.ViewQuery, bool) {
	q, err := h.validator.ParseViewQuery(r, DefaultViewQuery)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, false
	}
	return q, true
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error, rc requestContext) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, mapServiceError(err, rc))
}

// GetAirlines handles GET /api/views/airlines?min_flights=N
func (h *DashboardHandler) GetAirlines(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	result, err := h.service.Airlines(r.Context(), q.MinFlights)
	if err != nil {
		h.fail(w, r, "failed to build airline view", err, requestContext{})
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
		"count":  len(result.Filtered),
	})
}

// GetRoutes handles GET /api/views/routes
func (h *DashboardHandler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Routes(r.Context())
	if err != nil {
		h.fail(w, r, "failed to build route view", err, requestContext{})
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
		"count":  len(result.Top),
	})
}

// GetAirports handles GET /api/views/airports
func (h *DashboardHandler) GetAirports(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Airports(r.Context())
	if err != nil {
		h.fail(w, r, "failed to build airport view", err, requestContext{})
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
		"count":  len(result.All),
	})
}

// GetTrends handles GET /api/views/trends?airline=CODE
func (h *DashboardHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	result, err := h.service.Trends(r.Context(), q.Airline)
	if err != nil {
		h.fail(w, r, "failed to build trend view", err, requestContext{airline: q.Airline})
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
		"count":  len(result.Rows),
	})
}

// GetAirlineCodes handles GET /api/airlines
func (h *DashboardHandler) GetAirlineCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.service.AirlineCodes(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list airline codes", err, requestContext{})
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   codes,
		"count":  len(codes),
	})
}

// GetTables handles GET /api/tables
func (h *DashboardHandler) GetTables(w http.ResponseWriter, r *http.Request) {
	tables := h.service.Tables(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   tables,
		"count":  len(tables),
	})
}

// DownloadTable handles GET /api/tables/{table}/download?format=csv|xlsx
func (h *DashboardHandler) DownloadTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	rc := requestContext{table: name}

	table, err := services.ResolveTable(name)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err, rc))
		return
	}

	q, ok := h.query(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.Download(r.Context(), name, q.Format, &buf); err != nil {
		h.fail(w, r, "failed to build table download", err, rc)
		return
	}

	w.Header().Set("Content-Type", services.ContentType(q.Format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.DownloadName(table, q.Format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "download interrupted",
			slog.String("table", name),
			slog.String("error", err.Error()))
	}
}

// GetCacheStats handles GET /api/cache/stats
func (h *DashboardHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.CacheStats(),
	})
}

// ReloadCache handles POST /api/cache/reload. It drops the memoized
// dataset so files rewritten by the exporter are picked up.
func (h *DashboardHandler) ReloadCache(w http.ResponseWriter, r *http.Request) {
	tables, err := h.service.Reload(r.Context())
	if err != nil {
		h.fail(w, r, "failed to reload KPI data", err, requestContext{})
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   tables,
		"count":  len(tables),
	})
}
