package poller

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/pipeline"
	"github.com/martinsuchenak/lanwatch/internal/sink"
)

// Config controls what a cycle collects and how often
type Config struct {
	Links  []model.Link
	Metric model.Metric
	TopN   int
	Period time.Duration
}

// Poller runs the detail pipeline for every link on a fixed period and hands
// the snapshots to a sink
type Poller struct {
	pipeline *pipeline.Pipeline
	sink     sink.Sink
	cfg      Config
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) bool
}

func New(p *pipeline.Pipeline, s sink.Sink, cfg Config) *Poller {
	if cfg.Metric == "" {
		cfg.Metric = model.MetricTotal
	}
	return &Poller{pipeline: p, sink: s, cfg: cfg, now: time.Now, sleep: sleepContext}
}

// WithClock replaces the wall clock and the sleep between cycles, for tests.
// sleep reports false when ctx ended before d elapsed.
func (p *Poller) WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) bool) *Poller {
	p.now = now
	p.sleep = sleep
	return p
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Run polls until ctx is cancelled. A cycle that overruns the period is
// followed immediately by the next one; missed cycles are not made up.
func (p *Poller) Run(ctx context.Context) error {
	log.Info("Poller started", "links", len(p.cfg.Links), "period", p.cfg.Period.String(), "top_n", p.cfg.TopN)

	for {
		start := p.now()
		p.RunOnce(ctx)

		if ctx.Err() != nil {
			log.Info("Poller stopped")
			return nil
		}

		elapsed := p.now().Sub(start)
		remaining := p.cfg.Period - elapsed
		if remaining <= 0 {
			log.Warn("Polling cycle overran period", "elapsed", elapsed.String())
			continue
		}

		if !p.sleep(ctx, remaining) {
			log.Info("Poller stopped")
			return nil
		}
	}
}

// RunOnce collects and delivers one snapshot per link
func (p *Poller) RunOnce(ctx context.Context) []*model.Snapshot {
	snaps := make([]*model.Snapshot, 0, len(p.cfg.Links))
	for _, link := range p.cfg.Links {
		if ctx.Err() != nil {
			break
		}

		snap := p.collect(ctx, link)
		if ctx.Err() != nil {
			// interrupted by shutdown, the previous snapshot stays latest
			log.Debug("Discarding interrupted snapshot", "link", link.Name)
			break
		}
		if p.sink != nil {
			if err := p.sink.Write(snap); err != nil {
				log.Error("Failed to deliver snapshot", "link", link.Name, "error", err)
			}
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

func (p *Poller) collect(ctx context.Context, link model.Link) *model.Snapshot {
	snap := &model.Snapshot{
		ID:         newID(),
		Link:       link.Name,
		Interface:  link.Interface,
		CapturedAt: p.now(),
		Data:       []model.DeviceDetail{},
	}

	res, err := p.pipeline.TopDetails(ctx, link, p.cfg.Metric, p.cfg.TopN)
	switch {
	case err != nil:
		log.Error("Polling cycle failed", "link", link.Name, "error", err)
		snap.Status = model.SnapshotFailed
		snap.Error = err.Error()
	case res.Unavailable:
		log.Info("Interface down, skipping", "link", link.Name, "interface", link.Interface)
		snap.Status = model.SnapshotUnavailable
		snap.Error = model.InterfaceDownMessage
	default:
		snap.Status = model.SnapshotOK
		snap.Data = res.Data.Devices
		snap.Failures = res.Data.Failures
		log.Info("Snapshot collected", "link", link.Name, "devices", len(snap.Data), "failures", len(snap.Failures))
	}
	return snap
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
