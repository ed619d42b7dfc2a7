package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/martinsuchenak/lanwatch/internal/fetch"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/monitortest"
	"github.com/martinsuchenak/lanwatch/internal/netctx"
	"github.com/martinsuchenak/lanwatch/internal/pipeline"
)

type memorySink struct {
	mu      sync.Mutex
	snaps   []*model.Snapshot
	onWrite func(n int)
}

func (m *memorySink) Write(s *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, s)
	if m.onWrite != nil {
		m.onWrite(len(m.snaps))
	}
	return nil
}

func (m *memorySink) Close() error { return nil }

func (m *memorySink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snaps)
}

func setupPoller(t *testing.T, period time.Duration) (*Poller, *memorySink) {
	t.Helper()

	monitor := monitortest.NewMonitor(t)
	resolver := netctx.NewResolver(monitortest.Interfaces{Up: map[string]bool{"eth0": true}})
	p := pipeline.New(resolver, fetch.NewClient(fetch.Config{Attempts: 1, Timeout: 5 * time.Second}), nil, monitor.Host)

	links := []model.Link{
		{Name: "lan1", Interface: "eth0", Port: monitor.Port},
		{Name: "wan1", Interface: "eth1", Port: monitor.Port},
		{Name: "wan2", Interface: "eth0", Port: 1},
	}
	out := &memorySink{}
	return New(p, out, Config{Links: links, TopN: 50, Period: period}), out
}

func TestRunOnce(t *testing.T) {
	poller, out := setupPoller(t, time.Minute)

	snaps := poller.RunOnce(context.Background())
	if len(snaps) != 3 || out.count() != 3 {
		t.Fatalf("expected 3 snapshots, got %d (sink %d)", len(snaps), out.count())
	}

	ok, down, failed := snaps[0], snaps[1], snaps[2]
	if ok.Status != model.SnapshotOK || len(ok.Data) != 1 || len(ok.Failures) != 1 {
		t.Errorf("unexpected ok snapshot: %+v", ok)
	}
	if ok.ID == "" || ok.ID == down.ID {
		t.Errorf("expected distinct snapshot ids, got %q and %q", ok.ID, down.ID)
	}
	if down.Status != model.SnapshotUnavailable || down.Error != model.InterfaceDownMessage {
		t.Errorf("unexpected down snapshot: %+v", down)
	}
	if failed.Status != model.SnapshotFailed || failed.Error == "" {
		t.Errorf("unexpected failed snapshot: %+v", failed)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	poller, out := setupPoller(t, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for out.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}

	if out.count() != 3 {
		t.Errorf("expected exactly one cycle, got %d snapshots", out.count())
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRunOverrunStartsNextCycleImmediately(t *testing.T) {
	resolver := netctx.NewResolver(monitortest.Interfaces{})
	p := pipeline.New(resolver, fetch.NewClient(fetch.DefaultConfig()), nil, "localhost")

	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	period := time.Minute

	// first cycle takes 90s, the second 15s
	cycleTimes := []time.Duration{90 * time.Second, 15 * time.Second}
	out := &memorySink{onWrite: func(n int) {
		if n <= len(cycleTimes) {
			clock.Advance(cycleTimes[n-1])
		}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sleeps []time.Duration
	sleep := func(ctx context.Context, d time.Duration) bool {
		sleeps = append(sleeps, d)
		cancel()
		return false
	}

	poller := New(p, out, Config{
		Links:  []model.Link{{Name: "lan1", Interface: "eth0", Port: 5554}},
		TopN:   10,
		Period: period,
	}).WithClock(clock.Now, sleep)

	if err := poller.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.count() != 2 {
		t.Fatalf("expected 2 cycles, got %d", out.count())
	}
	if !out.snaps[1].CapturedAt.Equal(start.Add(90 * time.Second)) {
		t.Errorf("second cycle started at %v, want right after the overrun", out.snaps[1].CapturedAt)
	}
	if len(sleeps) != 1 || sleeps[0] != 45*time.Second {
		t.Errorf("sleeps = %v, want a single 45s sleep after the second cycle", sleeps)
	}
}

type cancellingFetcher struct {
	cancel context.CancelFunc
}

func (f cancellingFetcher) Get(ctx context.Context, url string) (string, error) {
	f.cancel()
	return "", ctx.Err()
}

func TestRunOnceDiscardsInterruptedSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resolver := netctx.NewResolver(monitortest.Interfaces{Up: map[string]bool{"eth0": true}})
	p := pipeline.New(resolver, cancellingFetcher{cancel: cancel}, nil, "localhost")

	out := &memorySink{}
	poller := New(p, out, Config{
		Links:  []model.Link{{Name: "lan1", Interface: "eth0", Port: 5554}, {Name: "lan2", Interface: "eth0", Port: 5555}},
		TopN:   10,
		Period: time.Minute,
	})

	if snaps := poller.RunOnce(ctx); len(snaps) != 0 {
		t.Errorf("expected no snapshots, got %+v", snaps)
	}
	if out.count() != 0 {
		t.Errorf("interrupted snapshot reached the sink (%d writes)", out.count())
	}
}
