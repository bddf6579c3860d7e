package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/bookmarks"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/dal"
	sqlrepo "github.com/Roma7-7-7/tagalog-flashcards/internal/dal/sql"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/srs"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/streak"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/timer"
)

const (
	exitCodeOK int = iota
	exitCodeInvalidArgs
	exitCodeDBConnect
	exitCodeParse
	exitCodeImport
)

var (
	source         = pflag.String("source", "", "path to a JSON export of browser localStorage")
	installationID = pflag.String("installation", "", "installation id to import into")
	dbType         = pflag.String("db-type", string(dal.DBTypeSQLite), "database type: sqlite or postgres")
	dbURL          = pflag.String("db-url", "", "database URL")
)

func main() {
	pflag.Parse()
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	dbt, err := validate()
	if err != nil {
		log.ErrorContext(ctx, "invalid arguments", "error", err)
		pflag.Usage()
		return exitCodeInvalidArgs
	}

	f, err := os.Open(*source)
	if err != nil {
		log.ErrorContext(ctx, "failed to open source", "error", err)
		return exitCodeParse
	}
	defer f.Close()

	values, err := parseExport(f)
	if err != nil {
		log.ErrorContext(ctx, "failed to parse export", "error", err)
		return exitCodeParse
	}

	db, err := sqlrepo.Open(ctx, dbt, *dbURL)
	if err != nil {
		log.ErrorContext(ctx, "failed to open database", "error", err)
		return exitCodeDBConnect
	}
	defer db.Close()

	store := dal.WithPrefix(sqlrepo.NewRepository(db, dbt, log), dal.InstallationPrefix(*installationID))
	for key, value := range values {
		if err = store.Set(ctx, key, value); err != nil {
			log.ErrorContext(ctx, "failed to import value", "error", err, "key", key)
			return exitCodeImport
		}
		log.InfoContext(ctx, "imported", "key", key, "installation_id", *installationID)
	}

	return exitCodeOK
}

func validate() (dal.DBType, error) {
	if *source == "" {
		return "", errors.New("source file is required")
	}
	if *installationID == "" {
		return "", errors.New("installation id is required")
	}
	if *dbURL == "" {
		return "", errors.New("database URL is required")
	}

	res, err := dal.ParseDBType(*dbType)
	if err != nil {
		return "", err
	}
	if res == dal.DBTypeMemory {
		return "", errors.New("memory store cannot be imported into")
	}
	return res, nil
}

// parseExport reads a localStorage dump (key to raw string value) and keeps the
// keys the app knows about. Unknown keys are skipped, known keys with a malformed
// value fail the whole import.
func parseExport(r io.Reader) (map[string]string, error) {
	var raw map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}

	res := make(map[string]string, len(raw))
	for key, value := range raw {
		switch {
		case slices.Contains([]string{srs.StorageKey, streak.StorageKey, bookmarks.StorageKey}, key):
			if !json.Valid([]byte(value)) {
				return nil, fmt.Errorf("validate %s: invalid json", key)
			}
		case key == timer.StorageKey:
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				return nil, fmt.Errorf("validate %s: %w", key, err)
			}
		default:
			continue
		}
		res[key] = value
	}

	if len(res) == 0 {
		return nil, errors.New("export contains no known keys")
	}
	return res, nil
}
