package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	apierrors "airlinekpi/internal/errors"
	"airlinekpi/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// Tab is one entry of the dashboard navigation
type Tab struct {
	Path   string
	Label  string
	Active bool
}

var tabs = []Tab{
	{Path: "/airlines", Label: "Airlines"},
	{Path: "/routes", Label: "Routes"},
	{Path: "/airports", Label: "Airports"},
	{Path: "/trends", Label: "Trends"},
}

// pageData is the template input shared by every page
type pageData struct {
	Title     string
	Tabs      []Tab
	Generated time.Time
	RequestID string
	View      interface{}
	Charts    map[string]string
	Error     *apierrors.ProblemDetails
}

// PageHandler renders the HTML dashboard
type PageHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	pages        map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"comma": humanize.Comma,
	"delay": func(v float64) string {
		if math.IsNaN(v) {
			return "n/a"
		}
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
	"monthName": func(m int64) string {
		if m < 1 || m > 12 {
			return strconv.FormatInt(m, 10)
		}
		return time.Month(m).String()[:3]
	},
	"inc": func(i int) int { return i + 1 },
}

// NewPageHandler parses the embedded templates. Each page is cloned from
// the layout so the pages can define their own content block.
func NewPageHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) (*PageHandler, error) {
	layout, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{"airlines", "routes", "airports", "trends", "error"} {
		page, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := page.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s page: %w", name, err)
		}
		pages[name] = page
	}

	return &PageHandler{
		service:      service,
		validator:    middleware.NewQueryParamValidator(logger),
		logger:       logger.With(slog.String("component", "page_handler")),
		errorHandler: errorHandler,
		pages:        pages,
	}, nil
}

// Routes returns the page routes
func (h *PageHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/airlines", http.StatusFound)
	})
	r.Get("/airlines", h.AirlinesPage)
	r.Get("/routes", h.RoutesPage)
	r.Get("/airports", h.AirportsPage)
	r.Get("/trends", h.TrendsPage)
	return r
}

// AirlinesPage renders view A
func (h *PageHandler) AirlinesPage(w http.ResponseWriter, r *http.Request) {
	q, err := h.validator.ParseViewQuery(r, DefaultViewQuery)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	result, err := h.service.Airlines(r.Context(), q.MinFlights)
	if err != nil {
		h.renderError(w, r, mapServiceError(err, requestContext{}))
		return
	}

	// no chart to link when nothing passes the threshold
	chartURLs := map[string]string{}
	if len(result.Filtered) > 0 {
		threshold := url.Values{"min_flights": {strconv.FormatInt(result.MinFlights, 10)}}
		chartURLs["volume"] = "/charts/airlines/volume.svg?" + threshold.Encode()
		chartURLs["delay"] = "/charts/airlines/delay.svg?" + threshold.Encode()
	}
	h.render(w, r, "airlines", "Airline Performance", result, chartURLs)
}

// RoutesPage renders view B
func (h *PageHandler) RoutesPage(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Routes(r.Context())
	if err != nil {
		h.renderError(w, r, mapServiceError(err, requestContext{}))
		return
	}

	h.render(w, r, "routes", "Top Routes", result, map[string]string{
		"top": "/charts/routes/top.svg",
	})
}

// AirportsPage renders view C
func (h *PageHandler) AirportsPage(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Airports(r.Context())
	if err != nil {
		h.renderError(w, r, mapServiceError(err, requestContext{}))
		return
	}

	h.render(w, r, "airports", "Airport Performance", result, map[string]string{
		"volume": "/charts/airports/volume.svg",
		"delay":  "/charts/airports/delay.svg",
	})
}

// TrendsPage renders view D
func (h *PageHandler) TrendsPage(w http.ResponseWriter, r *http.Request) {
	q, err := h.validator.ParseViewQuery(r, DefaultViewQuery)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	result, err := h.service.Trends(r.Context(), q.Airline)
	if err != nil {
		h.renderError(w, r, mapServiceError(err, requestContext{airline: q.Airline}))
		return
	}

	chartURLs := map[string]string{}
	if len(result.Series) > 0 {
		chartURLs["trend"] = "/charts/trends.svg?" + url.Values{"airline": {result.Code}}.Encode()
	}
	h.render(w, r, "trends", "Monthly Delay Trends", result, chartURLs)
}

func (h *PageHandler) data(r *http.Request, title string) pageData {
	active := make([]Tab, len(tabs))
	for i, t := range tabs {
		t.Active = t.Path == r.URL.Path
		active[i] = t
	}
	return pageData{
		Title:     title,
		Tabs:      active,
		Generated: time.Now(),
		RequestID: middleware.GetReqID(r.Context()),
	}
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page, title string, view interface{}, chartURLs map[string]string) {
	data := h.data(r, title)
	data.View = view
	data.Charts = chartURLs
	h.execute(w, r, page, http.StatusOK, data)
}

// renderError shows the problem inside the dashboard layout instead of a
// bare JSON document.
func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	problem := h.errorHandler.ErrorToProblem(err, r)
	h.logger.WarnContext(r.Context(), "page failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", problem.Status),
		slog.String("error", err.Error()))

	data := h.data(r, problem.Title)
	data.Error = problem
	h.execute(w, r, "error", problem.Status, data)
}

func (h *PageHandler) execute(w http.ResponseWriter, r *http.Request, page string, status int, data pageData) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.logger.ErrorContext(r.Context(), "template execution failed",
			slog.String("page", page),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, fmt.Errorf("render %s page: %w", page, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
