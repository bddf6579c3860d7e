package telegram

import (
	"context"
	"fmt"
	"strings"

	tb "gopkg.in/telebot.v3"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/srs"
)

const (
	callbackShowTranslation = "callback#show"
	callbackRemembered      = "callback#remembered"
	callbackForgotten       = "callback#forgotten"
	callbackBookmark        = "callback#bookmark"
)

type callbackData struct {
	Action string
	CardID string
}

func (b *Bot) HandleCallback(c tb.Context) error {
	ctx, cancel := processCtx()
	defer cancel()

	data, err := parseCallbackData(c.Callback().Data)
	if err != nil {
		b.log.ErrorContext(ctx, "failed to parse callback data", "error", err)
		return c.Respond(&tb.CallbackResponse{Text: somethingWentWrongMsg})
	}

	if _, ok := b.registry.Catalog().Card(data.CardID); !ok {
		b.log.WarnContext(ctx, "callback for unknown card", "card_id", data.CardID)
		return c.Respond(&tb.CallbackResponse{Text: "this card no longer exists"})
	}

	switch data.Action {
	case callbackShowTranslation:
		err = b.handleShowTranslationCallback(ctx, c, data)
	case callbackRemembered:
		err = b.handleOutcomeCallback(ctx, c, data, true)
	case callbackForgotten:
		err = b.handleOutcomeCallback(ctx, c, data, false)
	case callbackBookmark:
		return b.handleBookmarkCallback(ctx, c, data)
	default:
		b.log.WarnContext(ctx, "unknown callback action", "action", data.Action)
		return c.Respond(&tb.CallbackResponse{Text: somethingWentWrongMsg})
	}

	if err != nil {
		b.log.ErrorContext(ctx, "failed to process callback", "error", err)
		return c.Respond(&tb.CallbackResponse{Text: somethingWentWrongMsg})
	}

	return c.Delete()
}

func (b *Bot) handleShowTranslationCallback(_ context.Context, c tb.Context, data callbackData) error {
	card, _ := b.registry.Catalog().Card(data.CardID)
	return c.Send(cardText(card), outcomeMarkup(card.ID), tb.ModeMarkdownV2, tb.Silent)
}

func (b *Bot) handleOutcomeCallback(ctx context.Context, c tb.Context, data callbackData, correct bool) error {
	res := b.profile(ctx, c.Chat().ID).Review(ctx, data.CardID, correct, b.now())

	if err := c.Respond(&tb.CallbackResponse{Text: outcomeText(res.Card, correct)}); err != nil {
		b.log.WarnContext(ctx, "failed to respond to callback", "error", err)
	}

	return b.sendNextDue(ctx, c.Chat().ID)
}

func (b *Bot) handleBookmarkCallback(ctx context.Context, c tb.Context, data callbackData) error {
	text := "bookmark removed"
	if b.profile(ctx, c.Chat().ID).Bookmarks.Toggle(ctx, data.CardID) {
		text = "bookmarked"
	}
	return c.Respond(&tb.CallbackResponse{Text: text})
}

func outcomeText(state srs.CardState, correct bool) string {
	if !correct {
		return "again in 10 minutes"
	}
	days := 3 * state.Level //nolint:mnd // review interval grows by three days per level
	return fmt.Sprintf("level %d, next review in %d days", state.Level, days)
}

func showTranslationMarkup(cardID string) *tb.ReplyMarkup {
	return &tb.ReplyMarkup{
		InlineKeyboard: [][]tb.InlineButton{
			{
				{
					Text: "Show translation",
					Data: callbackShowTranslation + ":" + cardID,
				},
			},
		},
	}
}

func outcomeMarkup(cardID string) *tb.ReplyMarkup {
	return &tb.ReplyMarkup{
		InlineKeyboard: [][]tb.InlineButton{
			{
				{
					Text: "✅",
					Data: callbackRemembered + ":" + cardID,
				},
				{
					Text: "❌",
					Data: callbackForgotten + ":" + cardID,
				},
				{
					Text: "⭐",
					Data: callbackBookmark + ":" + cardID,
				},
			},
		},
	}
}

func parseCallbackData(val string) (callbackData, error) {
	val = strings.TrimSpace(val)
	parts := strings.Split(val, ":")
	if len(parts) != 2 || parts[1] == "" { //nolint:mnd // it's ok
		return callbackData{}, fmt.Errorf("invalid callback data: %s", val)
	}
	return callbackData{
		Action: parts[0],
		CardID: parts[1],
	}, nil
}
