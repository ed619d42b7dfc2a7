package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/martinsuchenak/lanwatch/internal/log"
)

var ErrFetchFailed = errors.New("fetch failed")

const maxBodySize = 16 << 20

// Error is returned once every attempt to fetch a page has failed
type Error struct {
	URL      string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetching %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrFetchFailed }

// statusError is a non-2xx response
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string { return "unexpected status: " + e.status }

// Config controls retry behaviour
type Config struct {
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration
}

// DefaultConfig is five attempts two seconds apart
func DefaultConfig() Config {
	return Config{
		Attempts: 5,
		Delay:    2 * time.Second,
		Timeout:  10 * time.Second,
	}
}

// Client fetches monitor pages with a fixed number of attempts and a constant
// delay between them
type Client struct {
	http     *http.Client
	attempts int
	delay    time.Duration
}

// NewClient creates a fetch client
func NewClient(cfg Config) *Client {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		attempts: cfg.Attempts,
		delay:    cfg.Delay,
	}
}

// Get returns the body of url. Transport errors and 5xx responses are
// retried; 4xx responses fail immediately.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	var lastErr error
	attempt := 0

	for attempt < c.attempts {
		attempt++

		body, err := c.get(ctx, url)
		if err == nil {
			if attempt > 1 {
				log.Debug("Fetch succeeded after retry", "url", url, "attempt", attempt)
			}
			return body, nil
		}
		lastErr = err

		var se *statusError
		if errors.As(err, &se) && se.code < 500 {
			break
		}
		if ctx.Err() != nil {
			break
		}

		log.Debug("Fetch attempt failed", "url", url, "attempt", attempt, "error", err)
		if attempt < c.attempts {
			if err := sleep(ctx, c.delay); err != nil {
				lastErr = err
				break
			}
		}
	}

	log.Warn("Fetch failed", "url", url, "attempts", attempt, "error", lastErr)
	return "", &Error{URL: url, Attempts: attempt, Err: lastErr}
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return "", &statusError{code: resp.StatusCode, status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(data), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
