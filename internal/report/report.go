package report

import (
	"fmt"
	"slices"

	"github.com/martinsuchenak/lanwatch/internal/model"
)

// Result sizes of the two endpoint families
const (
	TopSummary  = 10
	TopDetailed = 50
)

// TopByMetric returns the n devices with the highest value of metric. Ties
// keep their original order. The input slice is not modified.
func TopByMetric(devices []model.DeviceRecord, metric model.Metric, n int) []model.DeviceRecord {
	sorted := slices.Clone(devices)
	slices.SortStableFunc(sorted, func(a, b model.DeviceRecord) int {
		va, vb := metric.Value(a), metric.Value(b)
		switch {
		case va > vb:
			return -1
		case va < vb:
			return 1
		default:
			return 0
		}
	})

	if n < 0 {
		n = 0
	}
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []model.DeviceRecord{}
	}
	return sorted
}

var units = []string{"KB", "MB", "GB", "TB"}

// HumanizeBytes formats n with 1024-based units: "500 B", "2.00 KB",
// "1.00 GB". TB is the largest unit.
func HumanizeBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}

	value := float64(n) / 1024
	unit := 0
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", value, units[unit])
}

// DeviceView is a device record with human-readable counters
type DeviceView struct {
	IP       string `json:"ip"`
	MAC      string `json:"mac"`
	Name     string `json:"name"`
	In       string `json:"in"`
	Out      string `json:"out"`
	Total    string `json:"total"`
	LastSeen string `json:"last_seen"`
}

// BucketView is a time bucket with human-readable counters
type BucketView struct {
	Timestamp string `json:"timestamp"`
	In        string `json:"in"`
	Out       string `json:"out"`
	Total     string `json:"total"`
}

// Devices builds the presentation copy of records
func Devices(records []model.DeviceRecord) []DeviceView {
	views := make([]DeviceView, 0, len(records))
	for _, d := range records {
		views = append(views, DeviceView{
			IP:       d.IP,
			MAC:      d.MAC,
			Name:     d.Name,
			In:       HumanizeBytes(d.BytesIn),
			Out:      HumanizeBytes(d.BytesOut),
			Total:    HumanizeBytes(d.BytesTotal),
			LastSeen: d.LastSeen,
		})
	}
	return views
}

// Buckets builds the presentation copy of a time series
func Buckets(series []model.TimeBucket) []BucketView {
	views := make([]BucketView, 0, len(series))
	for _, b := range series {
		views = append(views, BucketView{
			Timestamp: b.Label,
			In:        HumanizeBytes(b.BytesIn),
			Out:       HumanizeBytes(b.BytesOut),
			Total:     HumanizeBytes(b.BytesTotal),
		})
	}
	return views
}
