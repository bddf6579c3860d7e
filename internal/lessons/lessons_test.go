package lessons

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		in := `
# comment
[greetings] Greetings
1 | Kumusta? | How are you?
2 | Mabuti | Fine / Good

[numbers] Numbers
n1 | Isa | One | Isa lang po. | Just one, please.
`
		c, err := Parse(ctx, strings.NewReader(in))
		if err != nil {
			t.Fatalf("Parse() returned an unexpected error: %v", err)
		}

		if ids := c.CardIDs(); !slices.Equal(ids, []string{"1", "2", "n1"}) {
			t.Errorf("Expected card ids [1 2 n1], but got %v", ids)
		}

		card, ok := c.Card("2")
		if !ok {
			t.Fatal("Expected card 2 to exist")
		}
		expected := Card{ID: "2", Tagalog: "Mabuti", English: "Fine / Good", CategoryID: "greetings"}
		if card != expected {
			t.Errorf("Expected card %+v, but got %+v", expected, card)
		}

		category, ok := c.Category("numbers")
		if !ok {
			t.Fatal("Expected category numbers to exist")
		}
		if category.Title != "Numbers" || len(category.Cards) != 1 {
			t.Errorf("Unexpected category %+v", category)
		}
		n1, _ := c.Card("n1")
		if n1.Example == nil || *n1.Example != (Example{Tagalog: "Isa lang po.", English: "Just one, please."}) {
			t.Errorf("Unexpected example %+v", n1.Example)
		}
		if len(c.Categories()) != 2 {
			t.Errorf("Expected 2 categories, but got %d", len(c.Categories()))
		}
	})

	tests := []struct {
		name          string
		in            string
		expectedLines []int
	}{
		{
			name:          "card before any category",
			in:            "1 | Isa | One\n[numbers] Numbers\nn2 | Dalawa | Two",
			expectedLines: []int{1},
		},
		{
			name:          "wrong number of fields",
			in:            "[numbers] Numbers\nn1 | Isa\nn2 | Dalawa | Two | extra\nn3 | Tatlo | Three",
			expectedLines: []int{2, 3},
		},
		{
			name:          "incomplete example",
			in:            "[numbers] Numbers\nn1 | Isa | One | | One apple",
			expectedLines: []int{2},
		},
		{
			name:          "duplicate card id",
			in:            "[numbers] Numbers\nn1 | Isa | One\nn1 | Dalawa | Two",
			expectedLines: []int{3},
		},
		{
			name:          "malformed header",
			in:            "[numbers Numbers\n[] Empty\n[food]",
			expectedLines: []int{1, 2, 3},
		},
		{
			name:          "duplicate category",
			in:            "[food] Food\n[food] More food",
			expectedLines: []int{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(ctx, strings.NewReader(tt.in))

			var parsingErr *ParsingError
			if !errors.As(err, &parsingErr) {
				t.Fatalf("Expected ParsingError, but got %v", err)
			}
			if !slices.Equal(parsingErr.InvalidLines, tt.expectedLines) {
				t.Errorf("Expected invalid lines %v, but got %v", tt.expectedLines, parsingErr.InvalidLines)
			}
		})
	}

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := Parse(cctx, strings.NewReader("[food] Food")); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, but got %v", err)
		}
	})
}

func TestDefault(t *testing.T) {
	c := Default()

	ids := c.CardIDs()
	if len(ids) != 188 {
		t.Errorf("Expected 188 built-in cards, but got %d", len(ids))
	}
	if n := len(c.Categories()); n != 33 {
		t.Errorf("Expected 33 built-in categories, but got %d", n)
	}
	if ids[0] != "1" || ids[len(ids)-1] != "tag5" {
		t.Errorf("Unexpected card order: first %s, last %s", ids[0], ids[len(ids)-1])
	}

	card, ok := c.Card("c4")
	if !ok || card.English != "How much is this?" || card.CategoryID != "common-phrases" {
		t.Errorf("Unexpected card c4: %+v", card)
	}

	for _, id := range ids {
		if card, _ = c.Card(id); card.Example == nil {
			t.Errorf("Expected card %s to have an example", id)
		}
	}

	if Default() != c {
		t.Error("Expected Default() to return the same catalog")
	}
}
