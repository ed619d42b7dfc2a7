// Package darkstat parses the pages served by a darkstat traffic monitor: the
// host table, per-host detail pages and the graphs.xml time series.
package darkstat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

var (
	ErrMalformedSection = errors.New("malformed section")
	ErrMalformedRow     = errors.New("malformed row")
	ErrMalformedSeries  = errors.New("malformed series")
)

// Paths of the monitor pages
const (
	HostsPath  = "/hosts/?full=yes"
	GraphsPath = "/graphs.xml"
)

// HostPath is the detail page of a single host
func HostPath(ip string) string {
	return "/hosts/" + ip + "/"
}

// parseCounter converts "1,234,567" to 1234567
func parseCounter(s string) (int64, error) {
	clean := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if clean == "" {
		return 0, fmt.Errorf("empty counter")
	}
	n, err := cast.ToInt64E(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid counter %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative counter %q", s)
	}
	return n, nil
}
