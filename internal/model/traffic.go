package model

import (
	"fmt"
	"strings"
	"time"
)

// Metric selects which byte counter a ranking uses
type Metric string

const (
	MetricIn    Metric = "in"
	MetricOut   Metric = "out"
	MetricTotal Metric = "total"
)

// ParseMetric accepts in, out or total (case-insensitive)
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricIn, MetricOut, MetricTotal:
		return m, nil
	default:
		return "", fmt.Errorf("unknown metric %q (want in, out or total)", s)
	}
}

// Value returns the device counter selected by m
func (m Metric) Value(d DeviceRecord) int64 {
	switch m {
	case MetricIn:
		return d.BytesIn
	case MetricOut:
		return d.BytesOut
	default:
		return d.BytesTotal
	}
}

// SeriesKind selects one of the monitor's time-series graphs
type SeriesKind string

const (
	SeriesMinutes SeriesKind = "minutes"
	SeriesHours   SeriesKind = "hours"
	SeriesDays    SeriesKind = "days"
)

// TimeBucket is one point of a time series. Unlike DeviceRecord, Total is
// always In+Out.
type TimeBucket struct {
	Label      string    `json:"timestamp"`
	At         time.Time `json:"-"`
	BytesIn    int64     `json:"in"`
	BytesOut   int64     `json:"out"`
	BytesTotal int64     `json:"total"`
}
