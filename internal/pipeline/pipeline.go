package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/martinsuchenak/lanwatch/internal/config"
	"github.com/martinsuchenak/lanwatch/internal/darkstat"
	"github.com/martinsuchenak/lanwatch/internal/fetch"
	"github.com/martinsuchenak/lanwatch/internal/lease"
	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/netctx"
	"github.com/martinsuchenak/lanwatch/internal/report"
)

// Fetcher retrieves a monitor page
type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

// LeaseSource provides the current DHCP lease table
type LeaseSource interface {
	Load() (*lease.Table, error)
}

// Pipeline runs resolve, fetch, parse and aggregate for one link at a time.
// Every call is an independent cycle; nothing is cached between calls.
type Pipeline struct {
	resolver    *netctx.Resolver
	fetcher     Fetcher
	leases      LeaseSource
	monitorHost string
	now         func() time.Time
}

// New creates a pipeline
func New(resolver *netctx.Resolver, fetcher Fetcher, leases LeaseSource, monitorHost string) *Pipeline {
	if monitorHost == "" {
		monitorHost = "localhost"
	}
	return &Pipeline{
		resolver:    resolver,
		fetcher:     fetcher,
		leases:      leases,
		monitorHost: monitorHost,
		now:         time.Now,
	}
}

// WithClock replaces the wall clock, for tests
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

func (p *Pipeline) url(link model.Link, path string) string {
	return fmt.Sprintf("http://%s:%d%s", p.monitorHost, link.Port, path)
}

// Devices returns every in-subnet device the monitor reports for link
func (p *Pipeline) Devices(ctx context.Context, link model.Link) (model.Result[[]model.DeviceRecord], error) {
	subnet, err := p.resolver.Resolve(link.Interface)
	if err != nil {
		if errors.Is(err, netctx.ErrInterfaceDown) {
			log.Debug("Interface down", "link", link.Name, "interface", link.Interface)
			return model.InterfaceDown[[]model.DeviceRecord](), nil
		}
		return model.Result[[]model.DeviceRecord]{}, fmt.Errorf("resolving %s: %w", link.Interface, err)
	}

	page, err := p.fetcher.Get(ctx, p.url(link, darkstat.HostsPath))
	if err != nil {
		return model.Result[[]model.DeviceRecord]{}, fmt.Errorf("fetching host table: %w", err)
	}

	devices, err := darkstat.ParseDevices(page, subnet, p.loadLeases())
	if err != nil {
		return model.Result[[]model.DeviceRecord]{}, err
	}

	log.Debug("Parsed host table", "link", link.Name, "devices", len(devices))
	return model.Available(devices), nil
}

// Top returns the n devices with the highest metric
func (p *Pipeline) Top(ctx context.Context, link model.Link, metric model.Metric, n int) (model.Result[[]model.DeviceRecord], error) {
	res, err := p.Devices(ctx, link)
	if err != nil || res.Unavailable {
		return res, err
	}
	return model.Available(report.TopByMetric(res.Data, metric, n)), nil
}

// TopDetails enriches the top n devices with their detail pages. A device
// whose page cannot be fetched or parsed is reported in Failures and left
// out; the others are still returned.
func (p *Pipeline) TopDetails(ctx context.Context, link model.Link, metric model.Metric, n int) (model.Result[model.DetailBatch], error) {
	top, err := p.Top(ctx, link, metric, n)
	if err != nil {
		return model.Result[model.DetailBatch]{}, err
	}
	if top.Unavailable {
		return model.InterfaceDown[model.DetailBatch](), nil
	}

	batch := model.DetailBatch{Devices: []model.DeviceDetail{}}
	for _, device := range top.Data {
		if err := ctx.Err(); err != nil {
			return model.Result[model.DetailBatch]{}, err
		}

		detail, err := p.detail(ctx, link, device)
		if err != nil {
			log.Warn("Skipping device detail", "link", link.Name, "ip", device.IP, "error", err)
			batch.Failures = append(batch.Failures, model.DetailFailure{IP: device.IP, Error: err.Error()})
			continue
		}
		batch.Devices = append(batch.Devices, *detail)
	}

	log.Debug("Collected device details", "link", link.Name, "devices", len(batch.Devices), "failures", len(batch.Failures))
	return model.Available(batch), nil
}

func (p *Pipeline) detail(ctx context.Context, link model.Link, device model.DeviceRecord) (*model.DeviceDetail, error) {
	page, err := p.fetcher.Get(ctx, p.url(link, darkstat.HostPath(device.IP)))
	if err != nil {
		return nil, err
	}
	return darkstat.ParseDetail(page, device, p.now())
}

// Series returns one of the monitor's time series for link
func (p *Pipeline) Series(ctx context.Context, link model.Link, kind model.SeriesKind) (model.Result[[]model.TimeBucket], error) {
	if !p.resolver.IsUp(link.Interface) {
		return model.InterfaceDown[[]model.TimeBucket](), nil
	}

	doc, err := p.fetcher.Get(ctx, p.url(link, darkstat.GraphsPath))
	if err != nil {
		return model.Result[[]model.TimeBucket]{}, fmt.Errorf("fetching graphs: %w", err)
	}

	buckets, err := darkstat.ParseSeries(kind, doc, p.now())
	if err != nil {
		return model.Result[[]model.TimeBucket]{}, err
	}
	return model.Available(buckets), nil
}

// Leases returns the current lease table
func (p *Pipeline) Leases() []lease.Lease {
	return p.loadLeases().Entries()
}

// loadLeases never fails: without a lease file every device is "Unknown"
func (p *Pipeline) loadLeases() *lease.Table {
	if p.leases == nil {
		return nil
	}
	table, err := p.leases.Load()
	if err != nil {
		log.Warn("Lease table unavailable, device names will be Unknown", "error", err)
		return nil
	}
	return table
}

// NewFromConfig wires a pipeline to the system interfaces, the configured
// lease file and a retrying fetch client
func NewFromConfig(cfg *config.Config) *Pipeline {
	client := fetch.NewClient(fetch.Config{
		Attempts: cfg.Fetch.Attempts,
		Delay:    cfg.Fetch.Delay,
		Timeout:  cfg.Fetch.Timeout,
	})
	return New(netctx.NewResolver(netctx.SystemInterfaces{}), client, lease.FileSource{Path: cfg.LeaseFile}, cfg.MonitorHost)
}
