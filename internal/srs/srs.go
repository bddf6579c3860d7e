// Package srs schedules flashcard reviews.
//
// A correct answer raises the card level by one and postpones the next review by
// three days per level. A wrong answer drops the level to zero and shows the card
// again ten minutes later. Cards that were never reviewed are always due.
package srs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/dal"
)

const (
	StorageKey = "srs-data"

	dayMillis          int64 = 24 * 60 * 60 * 1000
	intervalDaysFactor int64 = 3
	relearnMillis      int64 = 10 * 60 * 1000
)

type (
	// CardState is the review state of a single card. Instants are kept with
	// millisecond precision, which is what gets persisted.
	CardState struct {
		NextReviewAt time.Time
		Level        int
	}

	Stats struct {
		TotalCards    int
		ReviewedCount int
		DueCount      int
	}

	Scheduler struct {
		store dal.Store
		log   *slog.Logger

		mx sync.Mutex
	}

	storedState struct {
		NextReview int64 `json:"nextReview"`
		Level      int   `json:"level"`
	}

	storedData map[string]storedState
)

func NewScheduler(store dal.Store, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store: store,
		log:   log,
	}
}

// RecordOutcome applies a single review result to the card and persists it.
// Storage failures are logged, the computed state is returned regardless. When
// the stored mapping could not be read it is left untouched.
func (s *Scheduler) RecordOutcome(ctx context.Context, cardID string, correct bool, now time.Time) CardState {
	s.mx.Lock()
	defer s.mx.Unlock()

	data, readable := s.load(ctx)
	current := data[cardID]

	nowMillis := now.UnixMilli()
	var next storedState
	if correct {
		next.Level = current.Level + 1
		next.NextReview = nowMillis + intervalDaysFactor*int64(next.Level)*dayMillis
	} else {
		next.Level = 0
		next.NextReview = nowMillis + relearnMillis
	}

	data[cardID] = next
	if readable {
		s.save(ctx, data)
	} else {
		s.log.WarnContext(ctx, "srs data unavailable, outcome not saved", "card_id", cardID)
	}

	s.log.DebugContext(ctx, "review outcome recorded",
		"card_id", cardID,
		"correct", correct,
		"level", next.Level,
		"next_review", time.UnixMilli(next.NextReview).UTC(),
	)

	return next.toCardState()
}

// DueCards returns the subset of cardIDs that are due at now, keeping their order.
func (s *Scheduler) DueCards(ctx context.Context, cardIDs []string, now time.Time) []string {
	s.mx.Lock()
	data, _ := s.load(ctx)
	s.mx.Unlock()

	return dueCards(data, cardIDs, now)
}

// State returns the stored state of a card. The second result is false for cards
// that were never reviewed.
func (s *Scheduler) State(ctx context.Context, cardID string) (CardState, bool) {
	s.mx.Lock()
	data, _ := s.load(ctx)
	s.mx.Unlock()

	state, ok := data[cardID]
	if !ok {
		return CardState{}, false
	}
	return state.toCardState(), true
}

func (s *Scheduler) Stats(ctx context.Context, cardIDs []string, now time.Time) Stats {
	s.mx.Lock()
	data, _ := s.load(ctx)
	s.mx.Unlock()

	return Stats{
		TotalCards:    len(cardIDs),
		ReviewedCount: len(data),
		DueCount:      len(dueCards(data, cardIDs, now)),
	}
}

func dueCards(data storedData, cardIDs []string, now time.Time) []string {
	nowMillis := now.UnixMilli()
	res := make([]string, 0, len(cardIDs))
	for _, id := range cardIDs {
		state, ok := data[id]
		if !ok || state.NextReview <= nowMillis {
			res = append(res, id)
		}
	}
	return res
}

// load reads the stored mapping. Absent or malformed data reads as empty. The
// second result is false when the store itself failed, in which case the
// caller must not overwrite what is stored.
func (s *Scheduler) load(ctx context.Context) (storedData, bool) {
	raw, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return storedData{}, true
		}
		s.log.WarnContext(ctx, "failed to load srs data", "error", err)
		return storedData{}, false
	}

	data, err := decode(raw)
	if err != nil {
		s.log.WarnContext(ctx, "failed to decode srs data", "error", err)
		return storedData{}, true
	}
	return data, true
}

func (s *Scheduler) save(ctx context.Context, data storedData) {
	raw, err := json.Marshal(data)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to encode srs data", "error", err)
		return
	}
	if err = s.store.Set(ctx, StorageKey, string(raw)); err != nil {
		s.log.ErrorContext(ctx, "failed to save srs data", "error", err)
	}
}

// decode parses the persisted form of the srs mapping. Negative levels are
// clamped to zero.
func decode(raw string) (storedData, error) {
	var data storedData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.New("srs data is not an object")
	}
	for id, state := range data {
		if state.Level < 0 {
			state.Level = 0
			data[id] = state
		}
	}
	return data, nil
}

func (s storedState) toCardState() CardState {
	return CardState{
		NextReviewAt: time.UnixMilli(s.NextReview),
		Level:        s.Level,
	}
}
