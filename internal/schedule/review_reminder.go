package schedule

import (
	"context"
	"log/slog"
	"time"
)

const (
	publishTimeout = 1 * time.Minute
)

type (
	Publisher interface {
		SendReviewReminder(ctx context.Context, chatID int64) error
	}

	ReviewReminderConfig struct {
		ChatIDs  []int64
		Interval time.Duration
		HourFrom int
		HourTo   int
		Location *time.Location
		Now      func() time.Time
	}
)

// StartReviewReminderSchedule reminds every chat about due cards once per interval,
// but only between HourFrom and HourTo (inclusive) in Location.
func StartReviewReminderSchedule(ctx context.Context, conf ReviewReminderConfig, p Publisher, log *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "panic", "error", r)
		}
	}()
	if conf.Now == nil {
		conf.Now = time.Now
	}

	log.InfoContext(ctx, "review reminder schedule started")
	defer log.InfoContext(ctx, "review reminder schedule stopped")
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(conf.Interval):
			if !withinHours(conf.Now(), conf.Location, conf.HourFrom, conf.HourTo) {
				continue
			}
		}

		for _, chatID := range conf.ChatIDs {
			ctx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := p.SendReviewReminder(ctx, chatID); err != nil {
				log.ErrorContext(ctx, "failed to send review reminder", "error", err, "chat_id", chatID)
			}
			cancel()
		}
	}
}

func withinHours(now time.Time, loc *time.Location, from, to int) bool {
	hour := now.In(loc).Hour()
	return hour >= from && hour <= to
}
