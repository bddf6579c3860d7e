package config

import (
	"context"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	apiDBURLParam     = ssmPrefix + "api/db-url"
	apiJWTSecretParam = ssmPrefix + "api/jwt-secret"
)

type (
	CORS struct {
		AllowOrigins []string `envconfig:"ALLOW_ORIGINS" default:"http://localhost:5173"`
	}

	JWT struct {
		Issuer   string   `envconfig:"ISSUER" default:"tagalog-flashcards-api"`
		Audience []string `envconfig:"AUDIENCE" default:"tagalog-flashcards"`
		Secret   string   `envconfig:"SECRET"`
	}

	Cookie struct {
		Path            string        `envconfig:"CPATH" default:"/"` // not using PATH here because it may conflict with os.Path
		Domain          string        `envconfig:"DOMAIN" default:"localhost"`
		AccessExpiresIn time.Duration `envconfig:"ACCESS_EXPIRES_IN" default:"8760h"`
	}

	HTTP struct {
		ProcessTimeout time.Duration `envconfig:"PROCESS_TIMEOUT" default:"10s"`
		RateLimit      float64       `envconfig:"RATE_LIMIT" default:"25"`
		CORS           CORS
		Cookie         Cookie
		JWT            JWT
	}

	Server struct {
		ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"10s"`
		Addr              string        `envconfig:"ADDR" default:":8080"`
	}

	Sessions struct {
		// TimerIdleTimeout stops a learning timer that got no heartbeat for this long.
		TimerIdleTimeout   time.Duration `envconfig:"TIMER_IDLE_TIMEOUT" default:"2m"`
		// ProfileIdleTimeout drops cached installation profiles unused for this long.
		ProfileIdleTimeout time.Duration `envconfig:"PROFILE_IDLE_TIMEOUT" default:"30m"`
	}

	API struct {
		Dev      bool `envconfig:"DEV" default:"false"`
		DB       DB
		Learning Learning
		Sessions Sessions
		HTTP     HTTP
		Server   Server
	}
)

func NewAPI(ctx context.Context) (API, error) {
	var res API
	if err := envconfig.Process("API", &res); err != nil {
		return API{}, fmt.Errorf("parse api environment: %w", err)
	}

	if !res.Dev {
		client, err := NewParametersClient(ctx)
		if err != nil {
			return API{}, err
		}
		if err = setAPIProdConfig(ctx, client, &res); err != nil {
			return API{}, fmt.Errorf("set api prod config: %w", err)
		}
	}

	if err := validateAPI(res); err != nil {
		return API{}, err
	}
	return res, nil
}

func validateAPI(conf API) error {
	errs := make([]string, 0, 10) //nolint:mnd // 10 is a reasonable default value
	errs = validateDB(conf.DB, errs)
	errs = validateLearning(conf.Learning, errs)
	if conf.HTTP.JWT.Secret == "" {
		errs = append(errs, "jwt secret is required")
	}
	if len(conf.HTTP.JWT.Audience) == 0 {
		errs = append(errs, "jwt audience is required")
	}
	if conf.HTTP.RateLimit <= 0 {
		errs = append(errs, fmt.Sprintf("rate limit %v must be positive", conf.HTTP.RateLimit))
	}
	if conf.HTTP.Cookie.AccessExpiresIn <= 0 {
		errs = append(errs, "access cookie expiration must be positive")
	}
	if conf.Sessions.TimerIdleTimeout <= 0 {
		errs = append(errs, "timer idle timeout must be positive")
	}
	if conf.Sessions.ProfileIdleTimeout <= conf.HTTP.ProcessTimeout {
		errs = append(errs, "profile idle timeout must exceed the process timeout")
	}
	return joinErrors(errs)
}

func setAPIProdConfig(ctx context.Context, client ParametersClient, target *API) error {
	parameters, err := FetchAWSParams(ctx, client, apiDBURLParam, apiJWTSecretParam)
	if err != nil {
		return fmt.Errorf("get parameters: %w", err)
	}

	for name, value := range parameters {
		switch name {
		case apiDBURLParam:
			target.DB.URL = value
		case apiJWTSecretParam:
			target.HTTP.JWT.Secret = value
		}
	}

	return nil
}
