package views

import (
	"math"
	"slices"
)

// cmpAsc orders smaller values first; NaN goes last
func cmpAsc(a, b float64) int {
	if c, ok := cmpNaN(a, b); ok {
		return c
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// cmpDesc orders larger values first; NaN goes last
func cmpDesc(a, b float64) int {
	if c, ok := cmpNaN(a, b); ok {
		return c
	}
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

func cmpNaN(a, b float64) (int, bool) {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0, true
	case aNaN:
		return 1, true
	case bNaN:
		return -1, true
	}
	return 0, false
}

// sortedCopy returns a stably sorted copy of rows, never nil
func sortedCopy[T any](rows []T, cmp func(a, b T) int) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	slices.SortStableFunc(out, cmp)
	return out
}

func head[T any](rows []T, n int) []T {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
