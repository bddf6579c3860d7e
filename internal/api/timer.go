package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/context"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/learning"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/timer"
)

type (
	TimerHandler struct {
		registry *learning.Registry
		log      *slog.Logger
	}

	NavigateRequest struct {
		Path string `json:"path" validate:"required,startswith=/,max=256"`
	}

	timerResponse struct {
		Seconds   int64  `json:"seconds"`
		Formatted string `json:"formatted"`
		Running   bool   `json:"running"`
	}
)

func NewTimerHandler(registry *learning.Registry, log *slog.Logger) *TimerHandler {
	return &TimerHandler{
		registry: registry,
		log:      log,
	}
}

// Get reports the counter. Polling it keeps a running ticker alive.
func (h *TimerHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	p := h.registry.Profile(ctx, context.MustInstallationIDFromContext(ctx))
	p.Timer.Heartbeat()
	return c.JSON(http.StatusOK, toTimerResponse(p.Timer))
}

// Navigate reports the route the client is on. Time is counted while it is a learning route.
func (h *TimerHandler) Navigate(c echo.Context) error {
	var req NavigateRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}

	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	ctx := c.Request().Context()
	p := h.registry.Profile(ctx, context.MustInstallationIDFromContext(ctx))
	p.Timer.Navigate(req.Path)

	return c.JSON(http.StatusOK, toTimerResponse(p.Timer))
}

func toTimerResponse(t *timer.Tracker) timerResponse {
	return timerResponse{
		Seconds:   t.Seconds(),
		Formatted: t.Formatted(),
		Running:   t.Running(),
	}
}
