// Package views computes the four dashboard views from a loaded dataset.
//
// Every function is pure: it copies what it sorts, never mutates its input
// and is recomputed on each request. Sorts are stable so ties keep file
// order, and NaN delays (NULL in the source table) sort last in either
// direction.
package views
