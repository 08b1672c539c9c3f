package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WHAT: queued URLs reach the add function in order, one at a time.
func TestRunDrainsQueue(t *testing.T) {
	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	imp := New(func(ctx context.Context, rawURL string) error {
		mu.Lock()
		got = append(got, rawURL)
		n := len(got)
		mu.Unlock()
		if n == 3 {
			close(done)
		}
		return nil
	}, Config{QueueSize: 8}, discard())

	for _, u := range []string{"https://a.test/1", "https://a.test/2", "https://a.test/3"} {
		if err := imp.Enqueue(u); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go imp.Run(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue not drained")
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0] != "https://a.test/1" || got[2] != "https://a.test/3" {
		t.Errorf("order = %v", got)
	}
}

// WHAT: a saturated queue rejects instead of blocking the caller.
func TestEnqueueFull(t *testing.T) {
	imp := New(func(ctx context.Context, rawURL string) error { return nil },
		Config{QueueSize: 1}, discard())

	if err := imp.Enqueue("https://a.test/1"); err != nil {
		t.Fatal(err)
	}
	if err := imp.Enqueue("https://a.test/2"); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	if imp.Pending() != 1 {
		t.Errorf("pending = %d", imp.Pending())
	}
}

// WHAT: a failing add does not stop the worker.
func TestRunContinuesOnError(t *testing.T) {
	done := make(chan struct{})
	calls := 0

	imp := New(func(ctx context.Context, rawURL string) error {
		calls++
		if calls == 1 {
			return errors.New("boom")
		}
		close(done)
		return nil
	}, Config{}, discard())

	imp.Enqueue("https://a.test/bad")
	imp.Enqueue("https://a.test/good")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go imp.Run(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped after error")
	}
}
