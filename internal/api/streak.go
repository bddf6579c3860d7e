package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/context"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/learning"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/streak"
)

type (
	StreakHandler struct {
		registry *learning.Registry
		now      func() time.Time
		log      *slog.Logger
	}

	streakResponse struct {
		Streak        int  `json:"streak"`
		LongestStreak int  `json:"longest_streak"`
		IsActiveToday bool `json:"is_active_today"`
		TotalDays     int  `json:"total_days"`
	}
)

func NewStreakHandler(registry *learning.Registry, now func() time.Time, log *slog.Logger) *StreakHandler {
	return &StreakHandler{
		registry: registry,
		now:      now,
		log:      log,
	}
}

func (h *StreakHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	p := h.registry.Profile(ctx, context.MustInstallationIDFromContext(ctx))

	return c.JSON(http.StatusOK, toStreakResponse(p.Streak.Status(ctx, h.now())))
}

// RecordActivity counts today as a learning day, e.g. after a finished lesson or game.
func (h *StreakHandler) RecordActivity(c echo.Context) error {
	ctx := c.Request().Context()
	p := h.registry.Profile(ctx, context.MustInstallationIDFromContext(ctx))

	now := h.now()
	p.Streak.RecordActivity(ctx, now)
	h.log.DebugContext(ctx, "activity recorded via api")

	return c.JSON(http.StatusOK, toStreakResponse(p.Streak.Status(ctx, now)))
}

func toStreakResponse(s streak.Status) streakResponse {
	return streakResponse{
		Streak:        s.Streak,
		LongestStreak: s.LongestStreak,
		IsActiveToday: s.IsActiveToday,
		TotalDays:     s.TotalDays,
	}
}
