package bookmarks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/Roma7-7-7/tagalog-flashcards/pkg/cache"
)

type unreachableStore struct {
	*cache.InMemory

	getErr error
}

func (s *unreachableStore) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.InMemory.Get(ctx, key)
}

func newTestSet(t *testing.T, stored string) (*Set, *cache.InMemory) {
	t.Helper()

	store := cache.NewInMemory()
	if stored != "" {
		if err := store.Set(context.Background(), StorageKey, stored); err != nil {
			t.Fatalf("Set() returned an unexpected error: %v", err)
		}
	}
	return New(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestSet(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		s, _ := newTestSet(t, "")

		if got := s.List(ctx); len(got) != 0 {
			t.Errorf("Expected no bookmarks, but got %v", got)
		}
		if s.IsBookmarked(ctx, "1") {
			t.Error("Expected card 1 not to be bookmarked")
		}
	})

	t.Run("add keeps order and skips duplicates", func(t *testing.T) {
		s, store := newTestSet(t, "")

		s.Add(ctx, "n2")
		s.Add(ctx, "1")
		got := s.Add(ctx, "n2")

		expected := []string{"n2", "1"}
		if !slices.Equal(got, expected) {
			t.Errorf("Expected bookmarks %v, but got %v", expected, got)
		}
		raw, _ := store.Get(ctx, StorageKey)
		if raw != `["n2","1"]` {
			t.Errorf("Expected stored value '[\"n2\",\"1\"]', but got '%s'", raw)
		}
	})

	t.Run("remove", func(t *testing.T) {
		s, _ := newTestSet(t, `["a","b","c"]`)

		got := s.Remove(ctx, "b")
		if !slices.Equal(got, []string{"a", "c"}) {
			t.Errorf("Expected bookmarks [a c], but got %v", got)
		}
		got = s.Remove(ctx, "missing")
		if !slices.Equal(got, []string{"a", "c"}) {
			t.Errorf("Expected bookmarks [a c], but got %v", got)
		}
	})

	t.Run("toggle", func(t *testing.T) {
		s, _ := newTestSet(t, "")

		if !s.Toggle(ctx, "f1") {
			t.Error("Expected first toggle to bookmark the card")
		}
		if !s.IsBookmarked(ctx, "f1") {
			t.Error("Expected card f1 to be bookmarked")
		}
		if s.Toggle(ctx, "f1") {
			t.Error("Expected second toggle to remove the bookmark")
		}
		if s.IsBookmarked(ctx, "f1") {
			t.Error("Expected card f1 not to be bookmarked")
		}
	})

	t.Run("malformed data reads as empty", func(t *testing.T) {
		s, _ := newTestSet(t, `{"not":"a list"}`)

		if got := s.List(ctx); len(got) != 0 {
			t.Errorf("Expected no bookmarks, but got %v", got)
		}
		if got := s.Add(ctx, "x"); !slices.Equal(got, []string{"x"}) {
			t.Errorf("Expected bookmarks [x], but got %v", got)
		}
	})

	t.Run("read failure keeps stored list", func(t *testing.T) {
		store := &unreachableStore{InMemory: cache.NewInMemory(), getErr: errors.New("connection reset")}
		if err := store.InMemory.Set(ctx, StorageKey, `["a","b"]`); err != nil {
			t.Fatalf("Set() returned an unexpected error: %v", err)
		}
		s := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

		if !s.Toggle(ctx, "c") {
			t.Error("Expected toggle to report the card as bookmarked")
		}
		s.Add(ctx, "d")

		store.getErr = nil
		if got := s.List(ctx); !slices.Equal(got, []string{"a", "b"}) {
			t.Errorf("Expected stored bookmarks [a b], but got %v", got)
		}
	})
}
