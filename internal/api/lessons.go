package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/lessons"
)

type (
	LessonsHandler struct {
		catalog *lessons.Catalog
	}

	categorySummary struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		CardCount int    `json:"card_count"`
	}
)

func NewLessonsHandler(catalog *lessons.Catalog) *LessonsHandler {
	return &LessonsHandler{catalog: catalog}
}

func (h *LessonsHandler) List(c echo.Context) error {
	categories := h.catalog.Categories()
	items := make([]categorySummary, len(categories))
	for i, category := range categories {
		items[i] = categorySummary{
			ID:        category.ID,
			Title:     category.Title,
			CardCount: len(category.Cards),
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
	})
}

func (h *LessonsHandler) Get(c echo.Context) error {
	category, ok := h.catalog.Category(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{"Lesson not found"})
	}
	return c.JSON(http.StatusOK, category)
}
