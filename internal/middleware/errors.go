package middleware

import (
	"encoding/json"
	"net/http"
)

// Problem represents an RFC 7807 problem details object. Middleware writes
// it directly because it runs outside the handlers' error handler.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

// Render implements the chi render.Renderer interface
func (p Problem) Render(w http.ResponseWriter, r *http.Request) error {
	p.Write(w)
	return nil
}

// Write sends the problem as the whole response
func (p Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// ProblemFromStatus creates a Problem from an HTTP status code
func ProblemFromStatus(status int, detail string, traceID string) Problem {
	var title, problemType string

	switch status {
	case http.StatusBadRequest:
		title = "Bad Request"
		problemType = "/errors/bad-request"
	case http.StatusNotFound:
		title = "Not Found"
		problemType = "/errors/not-found"
	case http.StatusTooManyRequests:
		title = "Too Many Requests"
		problemType = "/errors/rate-limit-exceeded"
	case http.StatusInternalServerError:
		title = "Internal Server Error"
		problemType = "/errors/internal-server-error"
	case http.StatusServiceUnavailable:
		title = "Service Unavailable"
		problemType = "/errors/service-unavailable"
	case http.StatusGatewayTimeout:
		title = "Request Timeout"
		problemType = "/errors/request-timeout"
	default:
		title = http.StatusText(status)
		problemType = "/errors/unknown"
	}

	return Problem{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
		Trace:  traceID,
	}
}
