package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/dal"
)

const StorageKey = "tagalog_bookmarks"

// Set is the list of bookmarked card ids of one installation, in the order they were added.
type Set struct {
	store dal.Store
	log   *slog.Logger

	mx sync.Mutex
}

func New(store dal.Store, log *slog.Logger) *Set {
	return &Set{
		store: store,
		log:   log,
	}
}

func (s *Set) List(ctx context.Context) []string {
	s.mx.Lock()
	defer s.mx.Unlock()

	ids, _ := s.load(ctx)
	return ids
}

func (s *Set) IsBookmarked(ctx context.Context, cardID string) bool {
	return slices.Contains(s.List(ctx), cardID)
}

func (s *Set) Add(ctx context.Context, cardID string) []string {
	s.mx.Lock()
	defer s.mx.Unlock()

	ids, readable := s.load(ctx)
	if slices.Contains(ids, cardID) {
		return ids
	}
	ids = append(ids, cardID)
	if readable {
		s.save(ctx, ids)
	}
	return ids
}

func (s *Set) Remove(ctx context.Context, cardID string) []string {
	s.mx.Lock()
	defer s.mx.Unlock()

	ids, readable := s.load(ctx)
	idx := slices.Index(ids, cardID)
	if idx < 0 {
		return ids
	}
	ids = slices.Delete(ids, idx, idx+1)
	if readable {
		s.save(ctx, ids)
	}
	return ids
}

// Toggle flips the bookmark of cardID and reports whether it is bookmarked now.
func (s *Set) Toggle(ctx context.Context, cardID string) bool {
	s.mx.Lock()
	defer s.mx.Unlock()

	ids, readable := s.load(ctx)
	idx := slices.Index(ids, cardID)
	if idx >= 0 {
		ids = slices.Delete(ids, idx, idx+1)
	} else {
		ids = append(ids, cardID)
	}
	if readable {
		s.save(ctx, ids)
	}
	return idx < 0
}

// load returns false as the second result when the store failed to answer, so
// the stored list must not be overwritten.
func (s *Set) load(ctx context.Context) ([]string, bool) {
	raw, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return []string{}, true
		}
		s.log.WarnContext(ctx, "failed to load bookmarks", "error", err)
		return []string{}, false
	}

	var ids []string
	if err = json.Unmarshal([]byte(raw), &ids); err != nil {
		s.log.WarnContext(ctx, "failed to decode bookmarks", "error", err)
		return []string{}, true
	}
	if ids == nil {
		return []string{}, true
	}
	return ids, true
}

func (s *Set) save(ctx context.Context, ids []string) {
	raw, err := json.Marshal(ids)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to encode bookmarks", "error", err)
		return
	}
	if err = s.store.Set(ctx, StorageKey, string(raw)); err != nil {
		s.log.ErrorContext(ctx, "failed to save bookmarks", "error", err)
	}
}
