package services

import "errors"

// Dashboard service errors. Data and view errors come from package store
// and package views unchanged.
var (
	ErrUnknownTable      = errors.New("unknown KPI table")
	ErrUnsupportedFormat = errors.New("unsupported download format")
	ErrUnknownChart      = errors.New("unknown chart")
)
