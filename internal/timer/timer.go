// Package timer counts the time spent on learning screens.
package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/dal"
)

const (
	StorageKey = "app-timer-seconds"

	defaultInterval    = time.Second
	defaultIdleTimeout = 2 * time.Minute
)

var learningRoutes = []string{"/game", "/memory", "/spell", "/review"}

type (
	Option func(*Tracker)

	// Tracker adds one second per tick while the current route is a learning route.
	// At most one ticker goroutine runs per Tracker. The ticker stops by itself
	// once no heartbeat arrived for the idle timeout.
	Tracker struct {
		ctx         context.Context
		store       dal.Store
		log         *slog.Logger
		interval    time.Duration
		idleTimeout time.Duration

		seconds  atomic.Int64
		running  atomic.Int32
		lastSeen atomic.Int64

		mx     sync.Mutex
		cancel context.CancelFunc
		done   chan struct{}
	}
)

// WithInterval overrides the tick period. Every tick still counts as one second.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		t.interval = d
	}
}

// WithIdleTimeout sets how long the ticker keeps counting without a heartbeat.
// Zero disables the idle stop.
func WithIdleTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		t.idleTimeout = d
	}
}

func NewTracker(ctx context.Context, store dal.Store, log *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		ctx:         context.WithoutCancel(ctx),
		store:       store,
		log:         log,
		interval:    defaultInterval,
		idleTimeout: defaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.seconds.Store(t.load(ctx))
	return t
}

// IsLearningRoute reports whether time spent on path is counted.
func IsLearningRoute(path string) bool {
	if strings.HasPrefix(path, "/lesson") {
		return true
	}
	for _, r := range learningRoutes {
		if path == r {
			return true
		}
	}
	return false
}

// Navigate starts counting on learning routes and stops on any other route.
func (t *Tracker) Navigate(path string) {
	if IsLearningRoute(path) {
		t.Heartbeat()
		t.start()
		return
	}
	t.Stop()
}

// Heartbeat tells a running ticker that the client is still there.
func (t *Tracker) Heartbeat() {
	t.lastSeen.Store(time.Now().UnixNano())
}

// Stop cancels the ticker, if any, and waits for it to exit.
func (t *Tracker) Stop() {
	t.mx.Lock()
	defer t.mx.Unlock()

	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel = nil
	t.done = nil
}

func (t *Tracker) Running() bool {
	t.mx.Lock()
	defer t.mx.Unlock()
	return t.active()
}

// active reports whether the ticker goroutine is alive. It may have exited on
// its own after the idle timeout. Must be called with mx held.
func (t *Tracker) active() bool {
	if t.cancel == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

func (t *Tracker) Seconds() int64 {
	return t.seconds.Load()
}

// Formatted renders the counter as "<minutes>m <seconds>s", e.g. "12m 05s".
func (t *Tracker) Formatted() string {
	return Format(t.Seconds())
}

func Format(seconds int64) string {
	return fmt.Sprintf("%dm %02ds", seconds/60, seconds%60)
}

func (t *Tracker) start() {
	t.mx.Lock()
	defer t.mx.Unlock()

	if t.active() {
		return
	}
	if t.cancel != nil {
		// idle exit, release the old context
		t.cancel()
	}

	ctx, cancel := context.WithCancel(t.ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.run(ctx, t.done)
}

func (t *Tracker) run(ctx context.Context, done chan struct{}) {
	t.running.Add(1)
	defer func() {
		t.running.Add(-1)
		close(done)
	}()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.idle() {
				t.log.DebugContext(ctx, "no heartbeat, learning timer stopped")
				return
			}
			value := t.seconds.Add(1)
			if err := t.store.Set(t.ctx, StorageKey, strconv.FormatInt(value, 10)); err != nil {
				t.log.ErrorContext(ctx, "failed to save learning time", "error", err)
			}
		}
	}
}

func (t *Tracker) idle() bool {
	if t.idleTimeout <= 0 {
		return false
	}
	return time.Since(time.Unix(0, t.lastSeen.Load())) > t.idleTimeout
}

func (t *Tracker) load(ctx context.Context) int64 {
	raw, err := t.store.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, dal.ErrNotFound) {
			t.log.WarnContext(ctx, "failed to load learning time", "error", err)
		}
		return 0
	}

	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value < 0 {
		t.log.WarnContext(ctx, "invalid learning time value", "value", raw)
		return 0
	}
	return value
}
