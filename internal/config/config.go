package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // locations must load on hosts without a tz database

	"github.com/joho/godotenv"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/dal"
)

const (
	DefaultAWSRegion = "eu-central-1"

	ssmPrefix = "/tagalog-flashcards/prod/"
)

type (
	DB struct {
		Type string `envconfig:"TYPE" default:"sqlite"`
		URL  string `envconfig:"URL" default:""`
	}

	Learning struct {
		// Location is the time zone that defines calendar days for streaks.
		Location string `envconfig:"LOCATION" default:"UTC"`
	}
)

func (d DB) DBType() (dal.DBType, error) {
	return dal.ParseDBType(d.Type)
}

func (l Learning) TimeLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(l.Location)
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}
	return loc, nil
}

func (l Learning) MustTimeLocation() *time.Location {
	loc, err := l.TimeLocation()
	if err != nil {
		panic(fmt.Sprintf("failed to load location %s: %v", l.Location, err))
	}
	return loc
}

// LoadDotEnv loads .env files into the process environment. Missing files are not an error.
func LoadDotEnv(log *slog.Logger, files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug("load .env file", "error", err)
	}
}

func validateDB(db DB, errs []string) []string {
	dbType, err := db.DBType()
	if err != nil {
		return append(errs, err.Error())
	}
	if dbType != dal.DBTypeMemory && db.URL == "" {
		errs = append(errs, "db url is required")
	}
	return errs
}

func validateLearning(l Learning, errs []string) []string {
	if _, err := l.TimeLocation(); err != nil {
		errs = append(errs, fmt.Sprintf("invalid timezone: %s", err))
	}
	return errs
}

func joinErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %s", strings.Join(errs, ", "))
}

func parseChatIDs(chatIDsStr string) ([]int64, error) {
	if chatIDsStr == "" {
		return nil, nil
	}

	chatIDStrings := strings.Split(chatIDsStr, ",")
	chatIDs := make([]int64, 0, len(chatIDStrings))
	for _, chatIDString := range chatIDStrings {
		chatID, err := strconv.ParseInt(strings.TrimSpace(chatIDString), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse chat IDs: invalid chat ID %s: %w", chatIDString, err)
		}
		chatIDs = append(chatIDs, chatID)
	}

	return chatIDs, nil
}
