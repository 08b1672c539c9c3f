// Package fetch implements HTTP retrieval of public profile pages.
//
// The fetcher performs exactly one retry, only on a 5xx response, after
// a fixed delay. Every terminal failure is tagged as network_error or
// bad_status so batch drivers can report a skip reason and move on.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// defaultUserAgent identifies as a standard desktop browser so the
// server returns the public HTML rendition.
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"

// Error is a terminal fetch failure.
type Error struct {
	Kind       string // "network_error" or "bad_status"
	StatusCode int    // set for bad_status
	Err        error  // set for network_error
}

func (e *Error) Error() string { return "fetch: " + e.Reason() }

func (e *Error) Unwrap() error { return e.Err }

// Reason returns the skip-reason tag for result lines, e.g.
// "bad_status:404" or "network_error:timeout".
func (e *Error) Reason() string {
	if e.Kind == "bad_status" {
		return fmt.Sprintf("bad_status:%d", e.StatusCode)
	}
	return "network_error:" + netErrKind(e.Err)
}

func netErrKind(err error) string {
	var nerr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &nerr) && nerr.Timeout():
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "request_failed"
	}
}

// Config configures the fetcher.
type Config struct {
	Timeout    time.Duration // HTTP timeout. Default: 15s.
	MaxBytes   int64         // Max response body size. Default: 4MB.
	UserAgent  string        // User-Agent sent with requests.
	RetryDelay time.Duration // Delay before the single 5xx retry. Default: 1s.
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 4 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
}

// Result contains a successful fetch.
type Result struct {
	Body       []byte
	StatusCode int
}

// Fetcher performs HTTP requests against public pages.
type Fetcher struct {
	client *http.Client
	config Config
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				return nil
			},
		},
		config: cfg,
	}
}

// Fetch retrieves a URL. A 5xx status is retried once after the
// configured delay; any other non-200 status surfaces immediately as a
// *Error with kind bad_status. Transport failures surface as kind
// network_error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	for attempt := 0; ; attempt++ {
		res, retryable, err := f.do(ctx, url)
		if err == nil {
			return res, nil
		}
		if attempt == 0 && retryable {
			select {
			case <-ctx.Done():
				return nil, &Error{Kind: "network_error", Err: ctx.Err()}
			case <-time.After(f.config.RetryDelay):
			}
			continue
		}
		return nil, err
	}
}

// do performs one request. The second return reports whether the
// failure is eligible for the single retry.
func (f *Fetcher) do(ctx context.Context, url string) (*Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, &Error{Kind: "network_error", Err: err}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, &Error{Kind: "network_error", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 && resp.StatusCode <= 599
		return nil, retryable, &Error{Kind: "bad_status", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, false, &Error{Kind: "network_error", Err: err}
	}

	return &Result{Body: body, StatusCode: resp.StatusCode}, false, nil
}
