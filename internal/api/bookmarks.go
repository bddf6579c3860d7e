package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/context"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/learning"
)

type BookmarksHandler struct {
	registry *learning.Registry
}

func NewBookmarksHandler(registry *learning.Registry) *BookmarksHandler {
	return &BookmarksHandler{registry: registry}
}

func (h *BookmarksHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	p := h.registry.Profile(ctx, context.MustInstallationIDFromContext(ctx))
	catalog := h.registry.Catalog()

	ids := p.Bookmarks.List(ctx)
	items := make([]cardView, 0, len(ids))
	for _, id := range ids {
		card, ok := catalog.Card(id)
		if !ok {
			continue
		}
		state, reviewed := p.SRS.State(ctx, id)
		items = append(items, toCardView(card, state, reviewed, ids))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"total": len(items),
	})
}

func (h *BookmarksHandler) Toggle(c echo.Context) error {
	card, ok := h.registry.Catalog().Card(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, CardNotFoundError)
	}

	ctx := c.Request().Context()
	p := h.registry.Profile(ctx, context.MustInstallationIDFromContext(ctx))

	return c.JSON(http.StatusOK, echo.Map{
		"card_id":    card.ID,
		"bookmarked": p.Bookmarks.Toggle(ctx, card.ID),
	})
}
