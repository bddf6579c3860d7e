package config

import (
	"context"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	botTelegramTokenParam  = ssmPrefix + "bot/telegram-token"
	botAllowedChatIDsParam = ssmPrefix + "bot/allowed-chat-ids"
	botDBURLParam          = ssmPrefix + "bot/db-url"
)

type (
	ReminderSchedule struct {
		PublishInterval time.Duration `default:"1h"`
		HourFrom        int           `default:"9"`
		HourTo          int           `default:"21"`
	}

	StreakCheckSchedule struct {
		// Hour of day, in the learning location, when broken streaks are reset.
		Hour int `default:"0"`
	}

	Bot struct {
		Dev            bool    `default:"false"`
		TelegramToken  string  `envconfig:"TELEGRAM_TOKEN"`
		AllowedChatIDs []int64 `envconfig:"ALLOWED_CHAT_IDS"`
		DB             DB
		Learning       Learning
		Reminder       ReminderSchedule
		StreakCheck    StreakCheckSchedule
	}
)

func GetBot(ctx context.Context) (*Bot, error) {
	res := &Bot{}
	if err := envconfig.Process("BOT", res); err != nil {
		return nil, fmt.Errorf("parse bot environment: %w", err)
	}

	if !res.Dev {
		client, err := NewParametersClient(ctx)
		if err != nil {
			return nil, err
		}
		if err = setBotProdConfig(ctx, client, res); err != nil {
			return nil, fmt.Errorf("set bot prod config: %w", err)
		}
	}

	return validateBot(res)
}

func validateBot(conf *Bot) (*Bot, error) {
	errs := make([]string, 0, 10) //nolint:mnd // 10 is a reasonable default value
	if conf.TelegramToken == "" {
		errs = append(errs, "telegram token is required")
	}
	if len(conf.AllowedChatIDs) == 0 {
		errs = append(errs, "allowed chat ids are required")
	}
	errs = validateDB(conf.DB, errs)
	errs = validateLearning(conf.Learning, errs)
	if conf.Reminder.PublishInterval <= 0 {
		errs = append(errs, "publish interval is required")
	}
	if conf.Reminder.HourFrom < 0 || conf.Reminder.HourFrom > 23 {
		errs = append(errs, fmt.Sprintf("hour from %d must be in range 0-23", conf.Reminder.HourFrom))
	}
	if conf.Reminder.HourTo < 0 || conf.Reminder.HourTo > 23 {
		errs = append(errs, fmt.Sprintf("hour to %d must be in range 0-23", conf.Reminder.HourTo))
	}
	if conf.Reminder.HourFrom >= conf.Reminder.HourTo {
		errs = append(errs, fmt.Sprintf("hour from %d must be less than hour to %d", conf.Reminder.HourFrom, conf.Reminder.HourTo))
	}
	if conf.StreakCheck.Hour < 0 || conf.StreakCheck.Hour > 23 {
		errs = append(errs, fmt.Sprintf("streak check hour %d must be in range 0-23", conf.StreakCheck.Hour))
	}

	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	return conf, nil
}

func setBotProdConfig(ctx context.Context, client ParametersClient, target *Bot) error {
	parameters, err := FetchAWSParams(ctx, client,
		botTelegramTokenParam,
		botAllowedChatIDsParam,
		botDBURLParam,
	)
	if err != nil {
		return fmt.Errorf("get parameters: %w", err)
	}

	for name, value := range parameters {
		switch name {
		case botTelegramTokenParam:
			target.TelegramToken = value
		case botAllowedChatIDsParam:
			target.AllowedChatIDs, err = parseChatIDs(value)
			if err != nil {
				return err
			}
		case botDBURLParam:
			target.DB.URL = value
		}
	}

	return nil
}
