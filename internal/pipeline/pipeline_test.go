package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/martinsuchenak/lanwatch/internal/fetch"
	"github.com/martinsuchenak/lanwatch/internal/lease"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/monitortest"
	"github.com/martinsuchenak/lanwatch/internal/netctx"
)

func setupPipeline(t *testing.T, up bool) (*Pipeline, model.Link, *monitortest.Monitor) {
	t.Helper()

	monitor := monitortest.NewMonitor(t)
	leases := filepath.Join(t.TempDir(), "leases")
	if err := os.WriteFile(leases, []byte("0 aa:bb:cc:00:00:20 192.168.1.20 laptop *\n"), 0o644); err != nil {
		t.Fatalf("writing leases: %v", err)
	}

	resolver := netctx.NewResolver(monitortest.Interfaces{Up: map[string]bool{"eth0": up}})
	client := fetch.NewClient(fetch.Config{Attempts: 1, Timeout: 5 * time.Second})
	p := New(resolver, client, lease.FileSource{Path: leases}, monitor.Host)
	p.WithClock(func() time.Time { return time.Date(2026, 3, 10, 12, 30, 15, 0, time.UTC) })

	return p, model.Link{Name: "lan1", Interface: "eth0", Port: monitor.Port}, monitor
}

func TestDevices(t *testing.T) {
	p, link, _ := setupPipeline(t, true)

	res, err := p.Devices(context.Background(), link)
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	if res.Unavailable {
		t.Fatal("expected data")
	}
	if len(res.Data) != 2 {
		t.Fatalf("expected 2 devices, got %+v", res.Data)
	}
	if res.Data[0].Name != "laptop" || res.Data[1].Name != model.UnknownName {
		t.Errorf("unexpected names: %q, %q", res.Data[0].Name, res.Data[1].Name)
	}
}

func TestDevicesInterfaceDown(t *testing.T) {
	p, link, monitor := setupPipeline(t, false)

	res, err := p.Devices(context.Background(), link)
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	if !res.Unavailable {
		t.Error("expected unavailable result")
	}
	if monitor.Hits() != 0 {
		t.Errorf("monitor should not be contacted, got %d requests", monitor.Hits())
	}
}

func TestDevicesFetchFailure(t *testing.T) {
	p, link, monitor := setupPipeline(t, true)
	monitor.Server.Close()

	_, err := p.Devices(context.Background(), link)
	if !errors.Is(err, fetch.ErrFetchFailed) {
		t.Errorf("expected fetch failure, got %v", err)
	}
}

func TestDevicesWithoutLeaseFile(t *testing.T) {
	p, link, _ := setupPipeline(t, true)
	p.leases = lease.FileSource{Path: filepath.Join(t.TempDir(), "missing")}

	res, err := p.Devices(context.Background(), link)
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	for _, d := range res.Data {
		if d.Name != model.UnknownName {
			t.Errorf("expected Unknown for %s, got %q", d.IP, d.Name)
		}
	}
}

func TestTop(t *testing.T) {
	p, link, _ := setupPipeline(t, true)

	res, err := p.Top(context.Background(), link, model.MetricOut, 1)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(res.Data) != 1 || res.Data[0].IP != "192.168.1.20" {
		t.Errorf("unexpected top device: %+v", res.Data)
	}
}

func TestTopDetailsCollectsFailures(t *testing.T) {
	p, link, _ := setupPipeline(t, true)

	res, err := p.TopDetails(context.Background(), link, model.MetricTotal, 50)
	if err != nil {
		t.Fatalf("TopDetails: %v", err)
	}

	batch := res.Data
	if len(batch.Devices) != 1 || batch.Devices[0].IP != "192.168.1.20" {
		t.Fatalf("unexpected details: %+v", batch.Devices)
	}
	if batch.Devices[0].Timestamp != "2026-03-10 12:30:15" {
		t.Errorf("timestamp = %q", batch.Devices[0].Timestamp)
	}
	if len(batch.Devices[0].TCPLocal) != 1 || batch.Devices[0].TCPLocal[0].Port != "22" {
		t.Errorf("unexpected tcp ports: %+v", batch.Devices[0].TCPLocal)
	}
	if len(batch.Failures) != 1 || batch.Failures[0].IP != "192.168.1.30" {
		t.Errorf("unexpected failures: %+v", batch.Failures)
	}
}

func TestTopDetailsInterfaceDown(t *testing.T) {
	p, link, _ := setupPipeline(t, false)

	res, err := p.TopDetails(context.Background(), link, model.MetricTotal, 50)
	if err != nil {
		t.Fatalf("TopDetails: %v", err)
	}
	if !res.Unavailable {
		t.Error("expected unavailable result")
	}
}

func TestSeries(t *testing.T) {
	p, link, _ := setupPipeline(t, true)

	res, err := p.Series(context.Background(), link, model.SeriesHours)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if len(res.Data) != 2 {
		t.Fatalf("expected 2 buckets, got %+v", res.Data)
	}
	if res.Data[0].Label != "09-03-2026 23:00:00" || res.Data[1].Label != "10-03-2026 00:00:00" {
		t.Errorf("unexpected labels: %q, %q", res.Data[0].Label, res.Data[1].Label)
	}

	days, err := p.Series(context.Background(), link, model.SeriesDays)
	if err != nil {
		t.Fatalf("Series days: %v", err)
	}
	if len(days.Data) != 0 {
		t.Errorf("expected no day buckets, got %+v", days.Data)
	}
}

func TestSeriesInterfaceDown(t *testing.T) {
	p, link, monitor := setupPipeline(t, false)

	res, err := p.Series(context.Background(), link, model.SeriesMinutes)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if !res.Unavailable || monitor.Hits() != 0 {
		t.Errorf("expected unavailable without contacting the monitor, got %+v (%d hits)", res, monitor.Hits())
	}
}
