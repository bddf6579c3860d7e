package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/learning"
)

const (
	processTimeout = 10 * time.Second
)

type (
	Profiles interface {
		Profile(ctx context.Context, installationID string) *learning.Profile
	}

	StreakCheckConfig struct {
		InstallationIDs []string
		Hour            int
		Location        *time.Location
		Now             func() time.Time
	}
)

// StartStreakCheckSchedule resets broken streaks once a day at conf.Hour, so idle
// installations see a zero streak without opening the app first.
func StartStreakCheckSchedule(ctx context.Context, conf StreakCheckConfig, profiles Profiles, log *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "panic", "error", r)
		}
	}()
	if conf.Now == nil {
		conf.Now = time.Now
	}

	log.InfoContext(ctx, "streak check schedule started")
	defer log.InfoContext(ctx, "streak check schedule stopped")
	runIn := time.After(time.Second)
	for {
		select {
		case <-ctx.Done():
			return
		case <-runIn:
			now := conf.Now()
			runIn = time.After(untilNextRun(now, conf.Location, conf.Hour))

			log.DebugContext(ctx, "streak check execution started")
			checkStreaks(ctx, conf.InstallationIDs, now, profiles, log)
			log.DebugContext(ctx, "streak check execution finished")
		}
	}
}

func checkStreaks(ctx context.Context, installationIDs []string, now time.Time, profiles Profiles, log *slog.Logger) {
	for _, id := range installationIDs {
		ctx, cancel := context.WithTimeout(ctx, processTimeout)
		rec := profiles.Profile(ctx, id).Streak.CheckStreak(ctx, now)
		log.DebugContext(ctx, "streak checked", "installation_id", id, "current_streak", rec.CurrentStreak)
		cancel()
	}
}

// untilNextRun returns the wait until the next occurrence of hour:00 in loc.
func untilNextRun(now time.Time, loc *time.Location, hour int) time.Duration {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, 0, 0, 0, loc)
	}
	return next.Sub(now)
}
