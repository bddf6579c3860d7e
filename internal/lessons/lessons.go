package lessons

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"
)

//go:embed catalog.txt
var builtin string

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

type (
	Card struct {
		ID         string   `json:"id"`
		Tagalog    string   `json:"tagalog"`
		English    string   `json:"english"`
		Example    *Example `json:"example,omitempty"`
		CategoryID string   `json:"category_id"`
	}

	// Example is a sentence using the card's word.
	Example struct {
		Tagalog string `json:"tagalog"`
		English string `json:"english"`
	}

	Category struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Cards []Card `json:"cards"`
	}

	// Catalog is an immutable set of lesson categories.
	Catalog struct {
		categories []Category
		cards      map[string]Card
		ids        []string
	}

	ParsingError struct {
		InvalidLines []int
	}
)

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parsing error: invalidLines=%v", e.InvalidLines)
}

// Default returns the built-in catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(context.Background(), strings.NewReader(builtin))
		if err != nil {
			panic(fmt.Sprintf("parse built-in catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse reads a catalog. Categories start with a "[id] Title" line and are followed by
// "id | tagalog | english" card lines, optionally extended with
// "| example tagalog | example english". Blank lines and lines starting with # are skipped.
// Malformed lines, duplicate ids and cards outside a category are reported together
// in a *ParsingError.
func Parse(ctx context.Context, in io.Reader) (*Catalog, error) {
	c := &Catalog{
		cards: make(map[string]Card),
	}
	categoryIDs := make(map[string]struct{})

	scanner := bufio.NewScanner(in)
	invalidLines := make([]int, 0, 10) //nolint:mnd // 10 is the expected capacity
	lineNum := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("parse catalog: %w", ctx.Err())
		}

		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			id, title, ok := parseHeader(line)
			if _, dup := categoryIDs[id]; !ok || dup {
				invalidLines = append(invalidLines, lineNum)
				continue
			}
			categoryIDs[id] = struct{}{}
			c.categories = append(c.categories, Category{ID: id, Title: title, Cards: []Card{}})
			continue
		}

		card, ok := parseCard(line)
		if _, dup := c.cards[card.ID]; !ok || dup || len(c.categories) == 0 {
			invalidLines = append(invalidLines, lineNum)
			continue
		}

		last := &c.categories[len(c.categories)-1]
		card.CategoryID = last.ID
		last.Cards = append(last.Cards, card)
		c.cards[card.ID] = card
		c.ids = append(c.ids, card.ID)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}
	if len(invalidLines) > 0 {
		return nil, &ParsingError{InvalidLines: invalidLines}
	}

	return c, nil
}

func parseHeader(line string) (string, string, bool) {
	end := strings.Index(line, "]")
	if end < 0 {
		return "", "", false
	}
	id := strings.TrimSpace(line[1:end])
	title := strings.TrimSpace(line[end+1:])
	if id == "" || title == "" {
		return "", "", false
	}
	return id, title, true
}

func parseCard(line string) (Card, bool) {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) != 3 && len(parts) != 5 { //nolint:mnd // id, tagalog, english and an optional example pair
		return Card{}, false
	}

	card := Card{
		ID:      parts[0],
		Tagalog: parts[1],
		English: parts[2],
	}
	if card.ID == "" || card.Tagalog == "" || card.English == "" {
		return Card{}, false
	}

	if len(parts) == 5 { //nolint:mnd // with example
		if parts[3] == "" || parts[4] == "" {
			return Card{}, false
		}
		card.Example = &Example{Tagalog: parts[3], English: parts[4]}
	}
	return card, true
}

// CardIDs returns the ids of all cards in catalog order.
func (c *Catalog) CardIDs() []string {
	res := make([]string, len(c.ids))
	copy(res, c.ids)
	return res
}

func (c *Catalog) Card(id string) (Card, bool) {
	card, ok := c.cards[id]
	return card, ok
}

func (c *Catalog) Category(id string) (Category, bool) {
	for _, category := range c.categories {
		if category.ID == id {
			return category, true
		}
	}
	return Category{}, false
}

func (c *Catalog) Categories() []Category {
	res := make([]Category, len(c.categories))
	copy(res, c.categories)
	return res
}
