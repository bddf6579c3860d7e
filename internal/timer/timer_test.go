package timer

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/Roma7-7-7/tagalog-flashcards/pkg/cache"
)

func newTestTracker(t *testing.T, stored string, opts ...Option) (*Tracker, *cache.InMemory) {
	t.Helper()

	ctx := context.Background()
	store := cache.NewInMemory()
	if stored != "" {
		_ = store.Set(ctx, StorageKey, stored)
	}
	opts = append([]Option{WithInterval(5 * time.Millisecond)}, opts...)
	tracker := NewTracker(ctx, store, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	t.Cleanup(tracker.Stop)
	return tracker, store
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestIsLearningRoute(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/lesson/greetings", true},
		{"/lessons", true},
		{"/game", true},
		{"/memory", true},
		{"/spell", true},
		{"/review", true},
		{"/review/1", false},
		{"/home", false},
		{"/intro", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsLearningRoute(tt.path); got != tt.expected {
				t.Errorf("Expected %v, but got %v", tt.expected, got)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		seconds  int64
		expected string
	}{
		{0, "0m 00s"},
		{5, "0m 05s"},
		{60, "1m 00s"},
		{725, "12m 05s"},
		{3600, "60m 00s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := Format(tt.seconds); got != tt.expected {
				t.Errorf("Expected '%s', but got '%s'", tt.expected, got)
			}
		})
	}
}

func TestTracker(t *testing.T) {
	ctx := context.Background()

	t.Run("loads persisted value", func(t *testing.T) {
		tracker, _ := newTestTracker(t, "125")

		if tracker.Seconds() != 125 {
			t.Errorf("Expected 125 seconds, but got %d", tracker.Seconds())
		}
		if tracker.Formatted() != "2m 05s" {
			t.Errorf("Expected '2m 05s', but got '%s'", tracker.Formatted())
		}
	})

	t.Run("invalid persisted value reads as zero", func(t *testing.T) {
		tracker, _ := newTestTracker(t, "abc")

		if tracker.Seconds() != 0 {
			t.Errorf("Expected 0 seconds, but got %d", tracker.Seconds())
		}
	})

	t.Run("counts on learning routes and persists", func(t *testing.T) {
		tracker, store := newTestTracker(t, "10")

		tracker.Navigate("/review")
		waitFor(t, func() bool { return tracker.Seconds() >= 13 })
		tracker.Navigate("/home")

		if tracker.Running() {
			t.Fatal("Expected ticker to be stopped")
		}
		stopped := tracker.Seconds()
		time.Sleep(20 * time.Millisecond)
		if tracker.Seconds() != stopped {
			t.Errorf("Expected counter to stay at %d, but got %d", stopped, tracker.Seconds())
		}

		raw, err := store.Get(ctx, StorageKey)
		if err != nil {
			t.Fatalf("Get() returned an unexpected error: %v", err)
		}
		if raw != strconv.FormatInt(stopped, 10) {
			t.Errorf("Expected stored value %d, but got '%s'", stopped, raw)
		}
	})

	t.Run("single ticker across navigations", func(t *testing.T) {
		tracker, _ := newTestTracker(t, "")

		tracker.Navigate("/lesson/greetings")
		tracker.Navigate("/game")
		tracker.Navigate("/memory")
		waitFor(t, func() bool { return tracker.running.Load() == 1 })

		for i := 0; i < 10; i++ {
			if n := tracker.running.Load(); n > 1 {
				t.Fatalf("Expected at most one ticker, but got %d", n)
			}
			time.Sleep(time.Millisecond)
		}

		tracker.Stop()
		if n := tracker.running.Load(); n != 0 {
			t.Errorf("Expected no ticker after Stop, but got %d", n)
		}
	})

	t.Run("stop without ticker", func(t *testing.T) {
		tracker, _ := newTestTracker(t, "")

		tracker.Stop()
		tracker.Navigate("/home")
		if tracker.Running() {
			t.Error("Expected ticker not to be running")
		}
	})

	t.Run("stops without heartbeat", func(t *testing.T) {
		tracker, _ := newTestTracker(t, "", WithIdleTimeout(30*time.Millisecond))

		tracker.Navigate("/review")
		waitFor(t, func() bool { return !tracker.Running() })

		if n := tracker.running.Load(); n != 0 {
			t.Errorf("Expected no ticker after idle timeout, but got %d", n)
		}
		stopped := tracker.Seconds()
		time.Sleep(20 * time.Millisecond)
		if tracker.Seconds() != stopped {
			t.Errorf("Expected counter to stay at %d, but got %d", stopped, tracker.Seconds())
		}

		tracker.Navigate("/game")
		if !tracker.Running() {
			t.Error("Expected navigation to restart the ticker")
		}
	})

	t.Run("heartbeat keeps ticker alive", func(t *testing.T) {
		tracker, _ := newTestTracker(t, "", WithIdleTimeout(50*time.Millisecond))

		tracker.Navigate("/spell")
		for i := 0; i < 10; i++ {
			time.Sleep(10 * time.Millisecond)
			tracker.Heartbeat()
		}
		if !tracker.Running() {
			t.Error("Expected ticker to keep running while heartbeats arrive")
		}
	})
}
