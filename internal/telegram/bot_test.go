package telegram

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tb "gopkg.in/telebot.v3"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/learning"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/lessons"
	"github.com/Roma7-7-7/tagalog-flashcards/pkg/cache"
)

const testChatID int64 = 42

var testNow = time.Date(2023, 10, 15, 9, 0, 0, 0, time.UTC)

type (
	sentMessage struct {
		to   tb.Recipient
		what any
	}

	fakeSender struct {
		sent []sentMessage
	}

	fakeContext struct {
		tb.Context

		chat      *tb.Chat
		callback  *tb.Callback
		replies   []any
		sent      []any
		responses []string
		deleted   bool
	}
)

func (s *fakeSender) Send(to tb.Recipient, what any, _ ...any) (*tb.Message, error) {
	s.sent = append(s.sent, sentMessage{to: to, what: what})
	return &tb.Message{}, nil
}

func (c *fakeContext) Chat() *tb.Chat { return c.chat }
func (c *fakeContext) Callback() *tb.Callback { return c.callback }
func (c *fakeContext) Reply(what any, _ ...any) error {
	c.replies = append(c.replies, what)
	return nil
}
func (c *fakeContext) Send(what any, _ ...any) error {
	c.sent = append(c.sent, what)
	return nil
}
func (c *fakeContext) Respond(resp ...*tb.CallbackResponse) error {
	for _, r := range resp {
		c.responses = append(c.responses, r.Text)
	}
	return nil
}
func (c *fakeContext) Delete() error {
	c.deleted = true
	return nil
}

func newTestBot(t *testing.T) (*Bot, *fakeSender) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := learning.NewRegistry(cache.NewInMemory(), lessons.Default(), time.UTC, log)
	t.Cleanup(registry.Close)

	sender := &fakeSender{}
	b := newBot(sender, registry, log)
	b.now = func() time.Time { return testNow }
	return b, sender
}

func newCallbackContext(data string) *fakeContext {
	return &fakeContext{
		chat:     &tb.Chat{ID: testChatID},
		callback: &tb.Callback{Data: data},
	}
}

func TestInstallationID(t *testing.T) {
	if got := InstallationID(42); got != "tg-42" {
		t.Errorf("Expected 'tg-42', but got '%s'", got)
	}
}

func TestBot_HandleReview(t *testing.T) {
	b, sender := newTestBot(t)

	if err := b.HandleReview(&fakeContext{chat: &tb.Chat{ID: testChatID}}); err != nil {
		t.Fatalf("HandleReview() returned an unexpected error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("Expected one message, but got %d", len(sender.sent))
	}
	msg, _ := sender.sent[0].what.(string)
	if !strings.Contains(msg, "Kumusta?") || !strings.Contains(msg, "188 left") {
		t.Errorf("Expected the first catalog card, but got '%s'", msg)
	}
}

func TestBot_ReviewSession(t *testing.T) {
	ctx := context.Background()
	b, sender := newTestBot(t)

	show := newCallbackContext(callbackShowTranslation + ":1")
	if err := b.HandleCallback(show); err != nil {
		t.Fatalf("HandleCallback() returned an unexpected error: %v", err)
	}
	if len(show.sent) != 1 || !show.deleted {
		t.Fatalf("Expected translation to be sent and prompt deleted, got %+v", show)
	}
	if msg, _ := show.sent[0].(string); !strings.Contains(msg, "How are you?") || !strings.Contains(msg, "Kumusta ka na?") {
		t.Errorf("Expected translation and example in message, but got '%s'", msg)
	}

	remembered := newCallbackContext(callbackRemembered + ":1")
	if err := b.HandleCallback(remembered); err != nil {
		t.Fatalf("HandleCallback() returned an unexpected error: %v", err)
	}
	if len(remembered.responses) != 1 || remembered.responses[0] != "level 1, next review in 3 days" {
		t.Errorf("Unexpected responses %v", remembered.responses)
	}

	p := b.registry.Profile(ctx, InstallationID(testChatID))
	state, ok := p.SRS.State(ctx, "1")
	if !ok || state.Level != 1 {
		t.Errorf("Expected card 1 at level 1, but got %+v", state)
	}
	if status := p.Streak.Status(ctx, testNow); !status.IsActiveToday {
		t.Error("Expected today to be active after a review")
	}

	if len(sender.sent) != 1 {
		t.Fatalf("Expected next card to be sent, but got %d messages", len(sender.sent))
	}
	if msg, _ := sender.sent[0].what.(string); !strings.Contains(msg, "Mabuti") {
		t.Errorf("Expected card 2 next, but got '%s'", msg)
	}

	forgotten := newCallbackContext(callbackForgotten + ":1")
	if err := b.HandleCallback(forgotten); err != nil {
		t.Fatalf("HandleCallback() returned an unexpected error: %v", err)
	}
	if forgotten.responses[0] != "again in 10 minutes" {
		t.Errorf("Unexpected response '%s'", forgotten.responses[0])
	}
	if state, _ = p.SRS.State(ctx, "1"); state.Level != 0 {
		t.Errorf("Expected level 0 after a miss, but got %d", state.Level)
	}
}

func TestBot_BookmarkCallback(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBot(t)

	c := newCallbackContext(callbackBookmark + ":fd1")
	if err := b.HandleCallback(c); err != nil {
		t.Fatalf("HandleCallback() returned an unexpected error: %v", err)
	}
	if c.deleted {
		t.Error("Expected the card message to stay")
	}
	if len(c.responses) != 1 || c.responses[0] != "bookmarked" {
		t.Errorf("Unexpected responses %v", c.responses)
	}
	if !b.registry.Profile(ctx, InstallationID(testChatID)).Bookmarks.IsBookmarked(ctx, "fd1") {
		t.Error("Expected card fd1 to be bookmarked")
	}

	reply := &fakeContext{chat: &tb.Chat{ID: testChatID}}
	if err := b.HandleBookmarks(reply); err != nil {
		t.Fatalf("HandleBookmarks() returned an unexpected error: %v", err)
	}
	if msg, _ := reply.replies[0].(string); !strings.Contains(msg, "Kanin: Rice") {
		t.Errorf("Unexpected bookmarks message '%s'", msg)
	}
}

func TestBot_InvalidCallbacks(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected string
	}{
		{"malformed", "garbage", somethingWentWrongMsg},
		{"unknown card", callbackRemembered + ":zz", "this card no longer exists"},
		{"unknown action", "callback#dance:1", somethingWentWrongMsg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBot(t)
			c := newCallbackContext(tt.data)

			if err := b.HandleCallback(c); err != nil {
				t.Fatalf("HandleCallback() returned an unexpected error: %v", err)
			}
			if len(c.responses) != 1 || c.responses[0] != tt.expected {
				t.Errorf("Expected response '%s', but got %v", tt.expected, c.responses)
			}
		})
	}
}

func TestBot_HandleStats(t *testing.T) {
	b, _ := newTestBot(t)
	c := &fakeContext{chat: &tb.Chat{ID: testChatID}}

	if err := b.HandleStats(c); err != nil {
		t.Fatalf("HandleStats() returned an unexpected error: %v", err)
	}
	msg, _ := c.replies[0].(string)
	for _, expected := range []string{"Cards: 188", "Due now: 188", "Time spent: 0m 00s"} {
		if !strings.Contains(msg, expected) {
			t.Errorf("Expected '%s' in stats, but got '%s'", expected, msg)
		}
	}
}

func TestBot_SendReviewReminder(t *testing.T) {
	ctx := context.Background()
	b, sender := newTestBot(t)

	if err := b.SendReviewReminder(ctx, testChatID); err != nil {
		t.Fatalf("SendReviewReminder() returned an unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("Expected a reminder, but got %d messages", len(sender.sent))
	}
	if msg, _ := sender.sent[0].what.(string); !strings.HasPrefix(msg, "188 card(s)") {
		t.Errorf("Unexpected reminder '%s'", msg)
	}

	p := b.registry.Profile(ctx, InstallationID(testChatID))
	for _, id := range b.registry.Catalog().CardIDs() {
		p.SRS.RecordOutcome(ctx, id, true, testNow)
	}
	if err := b.SendReviewReminder(ctx, testChatID); err != nil {
		t.Fatalf("SendReviewReminder() returned an unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("Expected no reminder without due cards, but got %d messages", len(sender.sent))
	}
}

func TestAllowedChats(t *testing.T) {
	called := false
	handler := AllowedChats([]int64{testChatID})(func(tb.Context) error {
		called = true
		return nil
	})

	if err := handler(&fakeContext{chat: &tb.Chat{ID: 7}}); err == nil || called {
		t.Error("Expected chat 7 to be rejected")
	}
	if err := handler(&fakeContext{chat: &tb.Chat{ID: testChatID}}); err != nil || !called {
		t.Errorf("Expected chat %d to be allowed, got %v", testChatID, err)
	}
}

func TestRecover(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Recover(log)(func(tb.Context) error {
		panic("boom")
	})

	if err := handler(&fakeContext{}); err == nil {
		t.Error("Expected panic to be turned into an error")
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Kumusta?", "Kumusta?"},
		{"Fine / Good", "Fine / Good"},
		{"Ano ito? (this)", "Ano ito? \\(this\\)"},
		{"a.b-c!", "a\\.b\\-c\\!"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := escapeMarkdown(tt.in); got != tt.expected {
				t.Errorf("Expected '%s', but got '%s'", tt.expected, got)
			}
		})
	}
}

func TestParseCallbackData(t *testing.T) {
	data, err := parseCallbackData(" callback#show:n1 ")
	if err != nil {
		t.Fatalf("parseCallbackData() returned an unexpected error: %v", err)
	}
	if data != (callbackData{Action: callbackShowTranslation, CardID: "n1"}) {
		t.Errorf("Unexpected data %+v", data)
	}

	for _, in := range []string{"", "callback#show", "callback#show:", "a:b:c"} {
		if _, err = parseCallbackData(in); err == nil {
			t.Errorf("Expected an error for '%s'", in)
		}
	}
}
