package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/api"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/config"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/dal"
	sqlrepo "github.com/Roma7-7-7/tagalog-flashcards/internal/dal/sql"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/learning"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/lessons"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/timer"
	"github.com/Roma7-7-7/tagalog-flashcards/pkg/cache"
)

var (
	// Version is set via -ldflags at build time
	Version = "dev" //nolint:gochecknoglobals // must be global to be replaced at build time
	// BuildTime is set via -ldflags at build time
	BuildTime = "unknown" //nolint:gochecknoglobals // must be global to be replaced at build time
)

const profileEvictionInterval = 5 * time.Minute

const (
	exitCodeOK int = iota
	exitCodeConfigParse
	exitCodeDBConnect
	exitCodeServerStart
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
	conf, err := config.NewAPI(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get config", "error", err) //nolint:sloglint // app logger is not configured yet
		return exitCodeConfigParse
	}
	log := mustLogger(conf.Dev)

	store, closeStore, err := openStore(ctx, conf.DB, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to open store", "error", err)
		return exitCodeDBConnect
	}
	defer closeStore()

	registry := learning.NewRegistry(store, lessons.Default(), conf.Learning.MustTimeLocation(), log,
		timer.WithIdleTimeout(conf.Sessions.TimerIdleTimeout),
	)
	defer registry.Close()
	go registry.StartEviction(ctx, profileEvictionInterval, conf.Sessions.ProfileIdleTimeout)

	router := api.NewRouter(ctx, &conf, api.Dependencies{
		Registry: registry,
		Logger:   log,
	})
	log.InfoContext(ctx, "starting api server",
		"version", Version,
		"build_time", BuildTime,
		"address", conf.Server.Addr,
		"db_type", conf.DB.Type,
		"location", conf.Learning.Location,
	)

	server := &http.Server{
		ReadHeaderTimeout: conf.Server.ReadHeaderTimeout,
		Addr:              conf.Server.Addr,
		Handler:           router,
	}

	go func() {
		<-ctx.Done()
		cCtx, cCancel := context.WithTimeout(context.Background(), 15*time.Second) //nolint:mnd // ignore mnd
		defer cCancel()

		if sErr := server.Shutdown(cCtx); sErr != nil {
			log.ErrorContext(cCtx, "failed to shutdown api server", "error", sErr)
		}
	}()

	if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "failed to start api server", "error", err)
		return exitCodeServerStart
	}

	log.InfoContext(ctx, "api server is stopped")

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
