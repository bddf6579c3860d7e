package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"text/template"
	"time"

	tb "gopkg.in/telebot.v3"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/learning"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/lessons"
)

const (
	commandStart     = "/start"
	commandReview    = "/review"
	commandStreak    = "/streak"
	commandStats     = "/stats"
	commandBookmarks = "/bookmarks"

	somethingWentWrongMsg = "something went wrong"

	installationPrefix = "tg-"

	processTimeout = 10 * time.Second
)

var statsTemplate = template.Must(template.New("stats").
	Parse(`Cards: {{.TotalCards}}
Reviewed: {{.ReviewedCount}}
Due now: {{.DueCount}}
Streak: {{.Streak}} (longest {{.LongestStreak}})
Days learned: {{.TotalDays}}
Time spent: {{.LearningTime}}`))

type (
	Sender interface {
		Send(to tb.Recipient, what any, opts ...any) (*tb.Message, error)
	}

	Bot struct {
		bot      *tb.Bot
		sender   Sender
		registry *learning.Registry
		now      func() time.Time

		middlewares []tb.MiddlewareFunc

		log *slog.Logger
	}

	statsView struct {
		TotalCards    int
		ReviewedCount int
		DueCount      int
		Streak        int
		LongestStreak int
		TotalDays     int
		LearningTime  string
	}
)

func NewBot(token string, registry *learning.Registry, log *slog.Logger, middlewares ...tb.MiddlewareFunc) (*Bot, error) {
	b, err := tb.NewBot(tb.Settings{
		Token: token,
		Poller: &tb.LongPoller{
			Timeout: 1 * time.Minute,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	res := newBot(b, registry, log, middlewares...)
	res.bot = b
	return res, nil
}

func newBot(sender Sender, registry *learning.Registry, log *slog.Logger, middlewares ...tb.MiddlewareFunc) *Bot {
	return &Bot{
		sender:      sender,
		registry:    registry,
		now:         time.Now,
		middlewares: middlewares,
		log:         log,
	}
}

// InstallationID maps a Telegram chat to the installation holding its learning data.
func InstallationID(chatID int64) string {
	return installationPrefix + strconv.FormatInt(chatID, 10)
}

// Start blocks until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	b.bot.Handle(commandStart, b.HandleStart, b.middlewares...)
	b.bot.Handle(commandReview, b.HandleReview, b.middlewares...)
	b.bot.Handle(commandStreak, b.HandleStreak, b.middlewares...)
	b.bot.Handle(commandStats, b.HandleStats, b.middlewares...)
	b.bot.Handle(commandBookmarks, b.HandleBookmarks, b.middlewares...)
	b.bot.Handle(tb.OnCallback, b.HandleCallback, b.middlewares...)

	go func() {
		<-ctx.Done()
		b.bot.Stop()
	}()

	b.bot.Start()
}

func (b *Bot) profile(ctx context.Context, chatID int64) *learning.Profile {
	return b.registry.Profile(ctx, InstallationID(chatID))
}

func (b *Bot) HandleStart(c tb.Context) error {
	return c.Reply("Mabuhay! I help you learn Tagalog words.\n" +
		commandReview + " - review due cards\n" +
		commandStreak + " - daily streak\n" +
		commandStats + " - progress\n" +
		commandBookmarks + " - bookmarked cards")
}

func (b *Bot) HandleReview(c tb.Context) error {
	ctx, cancel := processCtx()
	defer cancel()

	return b.sendNextDue(ctx, c.Chat().ID)
}

func (b *Bot) HandleStreak(c tb.Context) error {
	ctx, cancel := processCtx()
	defer cancel()

	status := b.profile(ctx, c.Chat().ID).Streak.Status(ctx, b.now())
	msg := fmt.Sprintf("Streak: %d day(s)\nLongest: %d\nDays learned: %d", status.Streak, status.LongestStreak, status.TotalDays)
	if !status.IsActiveToday {
		msg += "\nReview a card today to keep the streak going " + commandReview
	}
	return c.Reply(msg)
}

func (b *Bot) HandleStats(c tb.Context) error {
	ctx, cancel := processCtx()
	defer cancel()

	p := b.profile(ctx, c.Chat().ID)
	now := b.now()
	srsStats := p.SRS.Stats(ctx, b.registry.Catalog().CardIDs(), now)
	status := p.Streak.Status(ctx, now)

	buff := &strings.Builder{}
	err := statsTemplate.Execute(buff, statsView{
		TotalCards:    srsStats.TotalCards,
		ReviewedCount: srsStats.ReviewedCount,
		DueCount:      srsStats.DueCount,
		Streak:        status.Streak,
		LongestStreak: status.LongestStreak,
		TotalDays:     status.TotalDays,
		LearningTime:  p.Timer.Formatted(),
	})
	if err != nil {
		b.log.ErrorContext(ctx, "failed to render stats", "error", err)
		return c.Reply(somethingWentWrongMsg)
	}

	return c.Reply(buff.String())
}

func (b *Bot) HandleBookmarks(c tb.Context) error {
	ctx, cancel := processCtx()
	defer cancel()

	ids := b.profile(ctx, c.Chat().ID).Bookmarks.List(ctx)
	if len(ids) == 0 {
		return c.Reply("no bookmarks yet")
	}

	buff := &strings.Builder{}
	buff.WriteString("Bookmarks:")
	for _, id := range ids {
		card, ok := b.registry.Catalog().Card(id)
		if !ok {
			continue
		}
		fmt.Fprintf(buff, "\n- %s: %s", card.Tagalog, card.English)
	}
	return c.Reply(buff.String())
}

// SendReviewReminder tells the chat how many cards are due. Nothing is sent when none are.
func (b *Bot) SendReviewReminder(ctx context.Context, chatID int64) error {
	due := b.profile(ctx, chatID).SRS.DueCards(ctx, b.registry.Catalog().CardIDs(), b.now())
	if len(due) == 0 {
		b.log.DebugContext(ctx, "no cards due", "chat_id", chatID)
		return nil
	}

	_, err := b.sender.Send(tb.ChatID(chatID), fmt.Sprintf("%d card(s) are waiting for review %s", len(due), commandReview), tb.Silent)
	if err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	return nil
}

func (b *Bot) sendNextDue(ctx context.Context, chatID int64) error {
	catalog := b.registry.Catalog()
	due := b.profile(ctx, chatID).SRS.DueCards(ctx, catalog.CardIDs(), b.now())
	if len(due) == 0 {
		_, err := b.sender.Send(tb.ChatID(chatID), "no cards to review, come back later")
		return err
	}

	card, ok := catalog.Card(due[0])
	if !ok {
		return fmt.Errorf("card %s not found in catalog", due[0])
	}

	msg := fmt.Sprintf("*%s*\n_%d left_", escapeMarkdown(card.Tagalog), len(due))
	_, err := b.sender.Send(tb.ChatID(chatID), msg, tb.ModeMarkdownV2, showTranslationMarkup(card.ID))
	return err
}

func processCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), processTimeout)
}

const markdownSpecialChars = "_*[]()~`>#+-=|{}.!\\"

// escapeMarkdown escapes text for Telegram MarkdownV2.
func escapeMarkdown(s string) string {
	buff := strings.Builder{}
	buff.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownSpecialChars, r) {
			buff.WriteRune('\\')
		}
		buff.WriteRune(r)
	}
	return buff.String()
}

func cardText(card lessons.Card) string {
	res := fmt.Sprintf("*%s* \\- %s", escapeMarkdown(card.Tagalog), escapeMarkdown(card.English))
	if card.Example != nil {
		res += fmt.Sprintf("\n\n_%s_\n%s", escapeMarkdown(card.Example.Tagalog), escapeMarkdown(card.Example.English))
	}
	return res
}
