// Package learning keeps one set of learning components per installation.
package learning

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/bookmarks"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/dal"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/lessons"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/srs"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/streak"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/timer"
)

type (
	Profile struct {
		InstallationID string

		SRS       *srs.Scheduler
		Streak    *streak.Tracker
		Bookmarks *bookmarks.Set
		Timer     *timer.Tracker

		lastUsed time.Time
	}

	// Registry hands out a single Profile per installation. All read-modify-write
	// cycles on a stored key go through that profile's components, so their mutexes
	// serialize concurrent updates of the same key.
	//
	// Profiles stay cached until EvictIdle drops them. The idle window passed to it
	// must be longer than any request holding a profile, otherwise two profiles of
	// one installation could write the same key concurrently.
	Registry struct {
		store     dal.Store
		catalog   *lessons.Catalog
		loc       *time.Location
		timerOpts []timer.Option
		log       *slog.Logger
		now       func() time.Time

		mx       sync.Mutex
		profiles map[string]*Profile
	}

	ReviewResult struct {
		Card   srs.CardState
		Streak streak.Record
	}
)

func NewRegistry(store dal.Store, catalog *lessons.Catalog, loc *time.Location, log *slog.Logger, timerOpts ...timer.Option) *Registry {
	return &Registry{
		store:     store,
		catalog:   catalog,
		loc:       loc,
		timerOpts: timerOpts,
		log:       log,
		now:       time.Now,
		profiles:  make(map[string]*Profile),
	}
}

func (r *Registry) Catalog() *lessons.Catalog {
	return r.catalog
}

func (r *Registry) Location() *time.Location {
	return r.loc
}

// Profile returns the components of the installation, creating them on first use.
func (r *Registry) Profile(ctx context.Context, installationID string) *Profile {
	r.mx.Lock()
	defer r.mx.Unlock()

	if p, ok := r.profiles[installationID]; ok {
		p.lastUsed = r.now()
		return p
	}

	store := dal.WithPrefix(r.store, dal.InstallationPrefix(installationID))
	log := r.log.With("installation_id", installationID)
	p := &Profile{
		InstallationID: installationID,
		SRS:            srs.NewScheduler(store, log),
		Streak:         streak.NewTracker(store, r.loc, log),
		Bookmarks:      bookmarks.New(store, log),
		Timer:          timer.NewTracker(ctx, store, log, r.timerOpts...),
		lastUsed:       r.now(),
	}
	r.profiles[installationID] = p
	log.DebugContext(ctx, "profile loaded")

	return p
}

// EvictIdle drops profiles not requested for longer than idle. Profiles with a
// running learning timer are kept. Returns the number of evicted profiles.
func (r *Registry) EvictIdle(ctx context.Context, idle time.Duration) int {
	r.mx.Lock()
	defer r.mx.Unlock()

	now := r.now()
	evicted := 0
	for id, p := range r.profiles {
		if now.Sub(p.lastUsed) <= idle || p.Timer.Running() {
			continue
		}
		p.Timer.Stop()
		delete(r.profiles, id)
		evicted++
	}
	if evicted > 0 {
		r.log.DebugContext(ctx, "idle profiles evicted", "count", evicted, "remaining", len(r.profiles))
	}
	return evicted
}

// StartEviction runs EvictIdle every interval until ctx is done.
func (r *Registry) StartEviction(ctx context.Context, interval, idle time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
			r.EvictIdle(ctx, idle)
		}
	}
}

// Close stops every running learning timer.
func (r *Registry) Close() {
	r.mx.Lock()
	defer r.mx.Unlock()

	for _, p := range r.profiles {
		p.Timer.Stop()
	}
}

// Review records the answer for a card and counts the day as active.
func (p *Profile) Review(ctx context.Context, cardID string, correct bool, now time.Time) ReviewResult {
	return ReviewResult{
		Card:   p.SRS.RecordOutcome(ctx, cardID, correct, now),
		Streak: p.Streak.RecordActivity(ctx, now),
	}
}
