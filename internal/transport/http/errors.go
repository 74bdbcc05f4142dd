package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"airlinekpi/internal/charts"
	apierrors "airlinekpi/internal/errors"
	"airlinekpi/internal/kpi"
	"airlinekpi/internal/services"
	"airlinekpi/internal/store"
	"airlinekpi/internal/views"
)

// mapServiceError translates service sentinels into API errors. Errors it
// does not know pass through so the error handler answers 500 or 504.
func mapServiceError(err error, q requestContext) error {
	var apiErr *apierrors.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, store.ErrDataUnavailable):
		return apierrors.DataUnavailableError(failedTable(err))
	case errors.Is(err, views.ErrAirlineNotFound):
		return apierrors.AirlineNotFoundError(q.airline)
	case errors.Is(err, views.ErrNegativeThreshold):
		return apierrors.ErrValidation("min_flights", "min_flights must be greater than or equal to 0")
	case errors.Is(err, services.ErrUnknownTable):
		return apierrors.UnknownTableError(q.table)
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.ErrValidation("format", "format must be one of: csv, xlsx")
	case errors.Is(err, services.ErrUnknownChart):
		return apierrors.NotFoundError("chart")
	case errors.Is(err, charts.ErrNoData):
		return apierrors.New(http.StatusNotFound, apierrors.CodeNoData, "No data to chart")
	}
	return err
}

// requestContext carries the request values error messages refer to
type requestContext struct {
	airline string
	table   string
}

// failedTable names the KPI table a load error refers to, if any
func failedTable(err error) string {
	msg := err.Error()
	for _, t := range kpi.Tables() {
		if strings.Contains(msg, t.FileName()) {
			return t.String()
		}
	}
	return ""
}
