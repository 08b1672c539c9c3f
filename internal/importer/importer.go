// Package importer feeds bulk profile URLs into the tracker through a
// bounded queue. Enqueuers never wait for the fetch; results land in
// the fetch log and the structured log.
package importer

import (
	"context"
	"errors"
	"log/slog"
)

// ErrQueueFull is returned by Enqueue when the queue is saturated.
var ErrQueueFull = errors.New("importer: queue full")

// AddFunc resolves one profile URL into a tracked person.
type AddFunc func(ctx context.Context, rawURL string) error

// Config configures the importer.
type Config struct {
	// QueueSize bounds the number of pending URLs. Default: 64.
	QueueSize int
}

func (c *Config) defaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
}

// Importer drains queued URLs with a single worker so the target site
// sees at most one import fetch at a time.
type Importer struct {
	jobs   chan string
	add    AddFunc
	logger *slog.Logger
}

// New creates an Importer.
func New(add AddFunc, cfg Config, logger *slog.Logger) *Importer {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		jobs:   make(chan string, cfg.QueueSize),
		add:    add,
		logger: logger,
	}
}

// Enqueue queues one URL without blocking.
func (i *Importer) Enqueue(rawURL string) error {
	select {
	case i.jobs <- rawURL:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of queued URLs.
func (i *Importer) Pending() int {
	return len(i.jobs)
}

// Run drains the queue. Blocks until ctx is cancelled.
func (i *Importer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rawURL := <-i.jobs:
			if err := i.add(ctx, rawURL); err != nil {
				i.logger.Warn("import failed", "url", rawURL, "error", err)
				continue
			}
			i.logger.Info("import done", "url", rawURL)
		}
	}
}
