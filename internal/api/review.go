package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/context"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/learning"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/lessons"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/srs"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/timer"
)

type (
	ReviewHandler struct {
		registry *learning.Registry
		now      func() time.Time
		log      *slog.Logger
	}

	OutcomeRequest struct {
		CardID  string `json:"card_id" validate:"required,max=64"`
		Correct *bool  `json:"correct" validate:"required"`
	}

	cardView struct {
		lessons.Card
		Level        int        `json:"level"`
		NextReviewAt *time.Time `json:"next_review_at,omitempty"`
		Bookmarked   bool       `json:"bookmarked"`
	}

	statsResponse struct {
		TotalCards      int            `json:"total_cards"`
		ReviewedCount   int            `json:"reviewed_count"`
		DueCount        int            `json:"due_count"`
		Streak          streakResponse `json:"streak"`
		Bookmarks       int            `json:"bookmarks"`
		LearningSeconds int64          `json:"learning_seconds"`
		LearningTime    string         `json:"learning_time"`
	}
)

func NewReviewHandler(registry *learning.Registry, now func() time.Time, log *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		registry: registry,
		now:      now,
		log:      log,
	}
}

func (h *ReviewHandler) profile(c echo.Context) *learning.Profile {
	ctx := c.Request().Context()
	return h.registry.Profile(ctx, context.MustInstallationIDFromContext(ctx))
}

// Due lists the cards due now in catalog order.
func (h *ReviewHandler) Due(c echo.Context) error {
	ctx := c.Request().Context()
	p := h.profile(c)
	catalog := h.registry.Catalog()

	due := p.SRS.DueCards(ctx, catalog.CardIDs(), h.now())
	bookmarked := p.Bookmarks.List(ctx)

	items := make([]cardView, 0, len(due))
	for _, id := range due {
		card, _ := catalog.Card(id)
		state, ok := p.SRS.State(ctx, id)
		items = append(items, toCardView(card, state, ok, bookmarked))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"total": len(items),
	})
}

func (h *ReviewHandler) Card(c echo.Context) error {
	ctx := c.Request().Context()
	card, ok := h.registry.Catalog().Card(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, CardNotFoundError)
	}

	p := h.profile(c)
	state, reviewed := p.SRS.State(ctx, card.ID)
	return c.JSON(http.StatusOK, toCardView(card, state, reviewed, p.Bookmarks.List(ctx)))
}

func (h *ReviewHandler) RecordOutcome(c echo.Context) error {
	var req OutcomeRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}

	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	card, ok := h.registry.Catalog().Card(req.CardID)
	if !ok {
		return c.JSON(http.StatusNotFound, CardNotFoundError)
	}

	ctx := c.Request().Context()
	p := h.profile(c)
	res := p.Review(ctx, card.ID, *req.Correct, h.now())

	return c.JSON(http.StatusOK, echo.Map{
		"card":   toCardView(card, res.Card, true, p.Bookmarks.List(ctx)),
		"streak": toStreakResponse(p.Streak.Status(ctx, h.now())),
	})
}

// Stats collects the review, streak and time counters of the installation.
func (h *ReviewHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	p := h.profile(c)
	now := h.now()

	srsStats := p.SRS.Stats(ctx, h.registry.Catalog().CardIDs(), now)
	streakStatus := p.Streak.Status(ctx, now)
	bookmarks := len(p.Bookmarks.List(ctx))

	seconds := p.Timer.Seconds()
	return c.JSON(http.StatusOK, statsResponse{
		TotalCards:      srsStats.TotalCards,
		ReviewedCount:   srsStats.ReviewedCount,
		DueCount:        srsStats.DueCount,
		Streak:          toStreakResponse(streakStatus),
		Bookmarks:       bookmarks,
		LearningSeconds: seconds,
		LearningTime:    timer.Format(seconds),
	})
}

func toCardView(card lessons.Card, state srs.CardState, reviewed bool, bookmarked []string) cardView {
	view := cardView{Card: card}
	if reviewed {
		next := state.NextReviewAt.UTC()
		view.Level = state.Level
		view.NextReviewAt = &next
	}
	for _, id := range bookmarked {
		if id == card.ID {
			view.Bookmarked = true
			break
		}
	}
	return view
}
