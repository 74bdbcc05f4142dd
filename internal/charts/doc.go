// Package charts renders the dashboard charts as SVG with go-chart.
//
// Bar charts back views A and C, a horizontal bar chart (drawn by a custom
// series, go-chart has none) backs view B and a multi-line chart with a
// legend backs view D. Every axis gets an explicit range with a non-zero
// span so single values and equal values still render. NaN values are
// skipped; when nothing is left to draw ErrNoData is returned.
package charts
