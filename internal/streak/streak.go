// Package streak tracks consecutive days of learning activity.
package streak

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/dal"
)

const StorageKey = "daily-streak-data"

type (
	Record struct {
		CurrentStreak    int    `json:"currentStreak"`
		LongestStreak    int    `json:"longestStreak"`
		LastActiveDate   string `json:"lastActiveDate"`
		TotalDaysLearned int    `json:"totalDaysLearned"`
	}

	Status struct {
		Streak        int
		LongestStreak int
		IsActiveToday bool
		TotalDays     int
	}

	Tracker struct {
		store dal.Store
		loc   *time.Location
		log   *slog.Logger

		mx sync.Mutex
	}
)

// NewTracker creates a tracker that computes calendar days in loc.
// A nil loc means UTC.
func NewTracker(store dal.Store, loc *time.Location, log *slog.Logger) *Tracker {
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{
		store: store,
		loc:   loc,
		log:   log,
	}
}

// DateOf returns the YYYY-MM-DD calendar date of t in loc.
func DateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// previousDate returns the calendar date before the one t falls on in loc.
// Computed on the civil date so DST transitions do not shift it.
func previousDate(t time.Time, loc *time.Location) string {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d-1, 12, 0, 0, 0, time.UTC).Format(time.DateOnly)
}

// RecordActivity marks today as active. Repeated calls on the same day change
// nothing. Activity on the day after the last active one extends the streak,
// any other gap starts a new one.
func (t *Tracker) RecordActivity(ctx context.Context, now time.Time) Record {
	t.mx.Lock()
	defer t.mx.Unlock()

	rec, readable := t.load(ctx)
	today := DateOf(now, t.loc)

	if rec.LastActiveDate == today {
		return rec
	}

	if rec.LastActiveDate == previousDate(now, t.loc) {
		rec.CurrentStreak++
	} else {
		rec.CurrentStreak = 1
	}
	rec.TotalDaysLearned++
	rec.LongestStreak = max(rec.LongestStreak, rec.CurrentStreak)
	rec.LastActiveDate = today

	if readable {
		t.save(ctx, rec)
	}
	t.log.DebugContext(ctx, "activity recorded",
		"date", today,
		"current_streak", rec.CurrentStreak,
		"longest_streak", rec.LongestStreak,
	)

	return rec
}

// CheckStreak resets the current streak when neither today nor yesterday was
// active. The longest streak and total days are never touched.
func (t *Tracker) CheckStreak(ctx context.Context, now time.Time) Record {
	t.mx.Lock()
	defer t.mx.Unlock()

	return t.checkStreak(ctx, now)
}

func (t *Tracker) checkStreak(ctx context.Context, now time.Time) Record {
	rec, readable := t.load(ctx)
	if rec.LastActiveDate == "" {
		return rec
	}

	if rec.LastActiveDate == DateOf(now, t.loc) || rec.LastActiveDate == previousDate(now, t.loc) {
		return rec
	}

	rec.CurrentStreak = 0
	if readable {
		t.save(ctx, rec)
	}
	t.log.DebugContext(ctx, "streak broken", "last_active_date", rec.LastActiveDate)

	return rec
}

// Status validates the streak and reports it.
func (t *Tracker) Status(ctx context.Context, now time.Time) Status {
	t.mx.Lock()
	defer t.mx.Unlock()

	rec := t.checkStreak(ctx, now)
	return Status{
		Streak:        rec.CurrentStreak,
		LongestStreak: rec.LongestStreak,
		IsActiveToday: rec.LastActiveDate == DateOf(now, t.loc),
		TotalDays:     rec.TotalDaysLearned,
	}
}

// load falls back to the default record. The second result is false when the
// store failed, and the stored record must then be left as is.
func (t *Tracker) load(ctx context.Context) (Record, bool) {
	raw, err := t.store.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return Record{}, true
		}
		t.log.WarnContext(ctx, "failed to load streak data", "error", err)
		return Record{}, false
	}

	var rec Record
	if err = json.Unmarshal([]byte(raw), &rec); err != nil {
		t.log.WarnContext(ctx, "failed to decode streak data", "error", err)
		return Record{}, true
	}
	return rec, true
}

func (t *Tracker) save(ctx context.Context, rec Record) {
	raw, err := json.Marshal(rec)
	if err != nil {
		t.log.ErrorContext(ctx, "failed to encode streak data", "error", err)
		return
	}
	if err = t.store.Set(ctx, StorageKey, string(raw)); err != nil {
		t.log.ErrorContext(ctx, "failed to save streak data", "error", err)
	}
}
