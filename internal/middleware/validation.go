package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "airlinekpi/internal/errors"
)

// ViewQuery holds the dashboard widget parameters shared by the pages, the
// chart endpoints and the JSON API.
type ViewQuery struct {
	MinFlights int64  `json:"min_flights" validate:"gte=0"`
	Airline    string `json:"airline" validate:"omitempty,airline_code"`
	Format     string `json:"format" validate:"omitempty,oneof=csv xlsx"`
	Width      int    `json:"width" validate:"omitempty,min=200,max=4000"`
	Height     int    `json:"height" validate:"omitempty,min=150,max=3000"`
}

// QueryParamValidator parses and validates query parameters
type QueryParamValidator struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger) *QueryParamValidator {
	v := validator.New()
	_ = v.RegisterValidation("airline_code", isAirlineCode)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &QueryParamValidator{
		validator: v,
		logger:    logger.With(slog.String("component", "query_validator")),
	}
}

// ParseViewQuery reads the widget parameters of r over defaults. The
// returned error is an *apierrors.APIError ready for the error handler.
func (v *QueryParamValidator) ParseViewQuery(r *http.Request, defaults ViewQuery) (ViewQuery, error) {
	q := defaults
	values := r.URL.Query()

	var problems []apierrors.ValidationError
	parseInt := func(param string, bits int, set func(int64)) {
		raw := strings.TrimSpace(values.Get(param))
		if raw == "" {
			return
		}
		n, err := strconv.ParseInt(raw, 10, bits)
		if err != nil {
			problems = append(problems, apierrors.ValidationError{
				Field:   param,
				Message: fmt.Sprintf("%s must be a valid integer", param),
			})
			return
		}
		set(n)
	}

	parseInt("min_flights", 64, func(n int64) { q.MinFlights = n })
	parseInt("width", 32, func(n int64) { q.Width = int(n) })
	parseInt("height", 32, func(n int64) { q.Height = int(n) })

	if values.Has("airline") {
		q.Airline = strings.TrimSpace(values.Get("airline"))
	}
	if values.Has("format") {
		q.Format = strings.ToLower(strings.TrimSpace(values.Get("format")))
	}

	if len(problems) == 0 {
		return q, v.ValidateStruct(q)
	}

	v.logger.DebugContext(r.Context(), "invalid query parameters",
		slog.String("query", r.URL.RawQuery),
		slog.Int("errors", len(problems)))
	return q, apierrors.NewValidationErrors(problems)
}

// ValidateStruct validates a struct and returns validation errors
func (v *QueryParamValidator) ValidateStruct(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "airline_code":
		return fmt.Sprintf("%s must be an airline code of 1 to 8 letters or digits", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isAirlineCode accepts reporting carrier codes such as DL, B6 or 9E
func isAirlineCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) < 1 || len(code) > 8 {
		return false
	}
	for _, ch := range code {
		if !((ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')) {
			return false
		}
	}
	return true
}
