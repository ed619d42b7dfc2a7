package report

import (
	"strings"
	"testing"

	"github.com/martinsuchenak/lanwatch/internal/model"
)

func TestHumanizeBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{2048, "2.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
		{1099511627776, "1.00 TB"},
		{5 * 1099511627776 * 1024, "5120.00 TB"},
	}
	for _, tt := range tests {
		if got := HumanizeBytes(tt.in); got != tt.want {
			t.Errorf("HumanizeBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHumanizeBytesUsesOneUnit(t *testing.T) {
	rank := map[string]int{"B": 0, "KB": 1, "MB": 2, "GB": 3, "TB": 4}
	prev := -1
	for _, n := range []int64{0, 1, 1023, 1024, 1 << 19, 1 << 20, 1 << 29, 1 << 30, 1 << 39, 1 << 40, 1 << 50} {
		parts := strings.Fields(HumanizeBytes(n))
		if len(parts) != 2 {
			t.Fatalf("HumanizeBytes(%d) = %v", n, parts)
		}
		r, ok := rank[parts[1]]
		if !ok {
			t.Fatalf("unexpected unit %q", parts[1])
		}
		if r < prev {
			t.Errorf("unit went down at %d: %s", n, parts[1])
		}
		prev = r
	}
}

func devices() []model.DeviceRecord {
	return []model.DeviceRecord{
		{IP: "10.0.0.1", BytesIn: 10, BytesOut: 1, BytesTotal: 11},
		{IP: "10.0.0.2", BytesIn: 30, BytesOut: 5, BytesTotal: 35},
		{IP: "10.0.0.3", BytesIn: 10, BytesOut: 90, BytesTotal: 100},
		{IP: "10.0.0.4", BytesIn: 20, BytesOut: 5, BytesTotal: 25},
		{IP: "10.0.0.5", BytesIn: 30, BytesOut: 0, BytesTotal: 30},
	}
}

func ips(records []model.DeviceRecord) string {
	var out []string
	for _, r := range records {
		out = append(out, r.IP[len("10.0.0."):])
	}
	return strings.Join(out, ",")
}

func TestTopByMetric(t *testing.T) {
	tests := []struct {
		metric model.Metric
		n      int
		want   string
	}{
		{model.MetricIn, 10, "2,5,4,1,3"},
		{model.MetricIn, 3, "2,5,4"},
		{model.MetricOut, 2, "3,2"},
		{model.MetricOut, 5, "3,2,4,1,5"},
		{model.MetricTotal, 1, "3"},
		{model.MetricTotal, 0, ""},
	}
	for _, tt := range tests {
		got := TopByMetric(devices(), tt.metric, tt.n)
		if ips(got) != tt.want {
			t.Errorf("TopByMetric(%s, %d) = %s, want %s", tt.metric, tt.n, ips(got), tt.want)
		}
	}
}

func TestTopByMetricDoesNotModifyInput(t *testing.T) {
	in := devices()
	TopByMetric(in, model.MetricTotal, 2)
	if ips(in) != "1,2,3,4,5" {
		t.Errorf("input reordered: %s", ips(in))
	}
	if got := TopByMetric(nil, model.MetricTotal, 10); got == nil || len(got) != 0 {
		t.Errorf("expected empty slice, got %#v", got)
	}
}

func TestDevicesView(t *testing.T) {
	views := Devices([]model.DeviceRecord{{IP: "10.0.0.9", Name: "nas", BytesIn: 2048, BytesOut: 500, BytesTotal: 1073741824}})
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	v := views[0]
	if v.In != "2.00 KB" || v.Out != "500 B" || v.Total != "1.00 GB" || v.Name != "nas" {
		t.Errorf("unexpected view: %+v", v)
	}
}

func TestBucketsView(t *testing.T) {
	views := Buckets([]model.TimeBucket{{Label: "19-10-2026", BytesIn: 1024, BytesOut: 1024, BytesTotal: 2048}})
	if views[0].Timestamp != "19-10-2026" || views[0].Total != "2.00 KB" {
		t.Errorf("unexpected view: %+v", views[0])
	}
}
