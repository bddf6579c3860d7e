package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/config"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/dal"
	sqlrepo "github.com/Roma7-7-7/tagalog-flashcards/internal/dal/sql"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/learning"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/lessons"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/schedule"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/telegram"
	"github.com/Roma7-7-7/tagalog-flashcards/pkg/cache"
)

var (
	// Version is set via -ldflags at build time
	Version = "dev" //nolint:gochecknoglobals // must be global to be replaced at build time
	// BuildTime is set via -ldflags at build time
	BuildTime = "unknown" //nolint:gochecknoglobals // must be global to be replaced at build time
)

const (
	exitCodeOK int = iota
	exitCodeConfigParse
	exitCodeDBConnect
	exitCodeBotCreate
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := make(chan os.Signal, 1)
	go func() {
		<-sigs
		cancel()
	}()
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	config.LoadDotEnv(slog.Default())
	conf, err := config.GetBot(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get config", "error", err) //nolint:sloglint // app logger is not configured yet
		return exitCodeConfigParse
	}

	log := mustLogger(conf.Dev)
	loc := conf.Learning.MustTimeLocation()

	log.InfoContext(ctx, "starting bot",
		"version", Version,
		"build_time", BuildTime,
		"config", loggableConfig(conf),
		"current_time_in_location", time.Now().In(loc),
	)
	defer log.InfoContext(ctx, "bot is stopped")

	store, closeStore, err := openStore(ctx, conf.DB, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to open store", "error", err)
		return exitCodeDBConnect
	}
	defer closeStore()

	registry := learning.NewRegistry(store, lessons.Default(), loc, log)
	defer registry.Close()

	bot, err := telegram.NewBot(conf.TelegramToken, registry, log, telegram.Recover(log), telegram.LogErrors(log), telegram.AllowedChats(conf.AllowedChatIDs))
	if err != nil {
		log.ErrorContext(ctx, "failed to create bot", "error", err)
		return exitCodeBotCreate
	}

	installationIDs := make([]string, 0, len(conf.AllowedChatIDs))
	for _, id := range conf.AllowedChatIDs {
		installationIDs = append(installationIDs, telegram.InstallationID(id))
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		schedule.StartReviewReminderSchedule(gCtx, schedule.ReviewReminderConfig{
			ChatIDs:  conf.AllowedChatIDs,
			Interval: conf.Reminder.PublishInterval,
			HourFrom: conf.Reminder.HourFrom,
			HourTo:   conf.Reminder.HourTo,
			Location: loc,
		}, bot, log)
		return nil
	})
	g.Go(func() error {
		schedule.StartStreakCheckSchedule(gCtx, schedule.StreakCheckConfig{
			InstallationIDs: installationIDs,
			Hour:            conf.StreakCheck.Hour,
			Location:        loc,
		}, registry, log)
		return nil
	})
	g.Go(func() error {
		bot.Start(gCtx)
		return nil
	})

	_ = g.Wait()
	return exitCodeOK
}

func openStore(ctx context.Context, conf config.DB, log *slog.Logger) (dal.Store, func(), error) {
	dbType, err := conf.DBType()
	if err != nil {
		return nil, nil, err
	}
	if dbType == dal.DBTypeMemory {
		log.WarnContext(ctx, "using in-memory store, data will be lost on restart")
		return cache.NewInMemory(), func() {}, nil
	}

	db, err := sqlrepo.Open(ctx, dbType, conf.URL)
	if err != nil {
		return nil, nil, err
	}
	return sqlrepo.NewRepository(db, dbType, log), func() { _ = db.Close() }, nil
}

func mustLogger(dev bool) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	if dev {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(handler)
}

func loggableConfig(conf *config.Bot) map[string]any {
	return map[string]any{
		"dev":              conf.Dev,
		"allowed-chat-ids": conf.AllowedChatIDs,
		"db-type":          conf.DB.Type,
		"location":         conf.Learning.Location,
		"review-reminder-schedule": map[string]any{
			"publish-interval": fmt.Sprintf("%v", conf.Reminder.PublishInterval),
			"hour-from":        conf.Reminder.HourFrom,
			"hour-to":          conf.Reminder.HourTo,
		},
		"streak-check-schedule": map[string]any{
			"hour": conf.StreakCheck.Hour,
		},
	}
}
