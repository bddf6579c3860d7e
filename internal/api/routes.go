package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/config"
	"github.com/Roma7-7-7/tagalog-flashcards/internal/learning"
)

type (
	Dependencies struct {
		Registry *learning.Registry
		Clock    func() time.Time
		Logger   *slog.Logger
	}
)

func NewRouter(ctx context.Context, conf *config.API, deps Dependencies) http.Handler {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(loggingMiddleware(ctx, deps.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(conf.HTTP.RateLimit))))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.HTTP.CORS.AllowOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: conf.HTTP.ProcessTimeout,
	}))
	e.Use(middleware.Secure())

	e.HTTPErrorHandler = HTTPErrorHandler(deps.Logger)

	jwtProcessor := NewJWTProcessor(conf.HTTP.JWT, conf.HTTP.Cookie.AccessExpiresIn)
	cookiesProcessor := NewCookiesProcessor(conf.HTTP.Cookie, !conf.Dev)

	authMiddleware := AuthMiddleware(cookiesProcessor, jwtProcessor, deps.Logger)
	installations := NewInstallationsHandler(jwtProcessor, cookiesProcessor, deps.Logger)

	e.POST("/installations", installations.Create)
	e.POST("/auth/logout", installations.LogOut)

	lessonsHandler := NewLessonsHandler(deps.Registry.Catalog())
	e.GET("/lessons", lessonsHandler.List)
	e.GET("/lessons/:id", lessonsHandler.Get)

	securedGroup := e.Group("", authMiddleware)
	securedGroup.GET("/auth/info", installations.Info)

	review := NewReviewHandler(deps.Registry, deps.Clock, deps.Logger)
	securedGroup.GET("/review/due", review.Due)
	securedGroup.GET("/review/stats", review.Stats)
	securedGroup.GET("/review/cards/:id", review.Card)
	securedGroup.POST("/review/outcome", review.RecordOutcome)

	streakHandler := NewStreakHandler(deps.Registry, deps.Clock, deps.Logger)
	securedGroup.GET("/streak", streakHandler.Get)
	securedGroup.POST("/streak/activity", streakHandler.RecordActivity)

	bookmarks := NewBookmarksHandler(deps.Registry)
	securedGroup.GET("/bookmarks", bookmarks.List)
	securedGroup.PUT("/bookmarks/:id", bookmarks.Toggle)

	timerHandler := NewTimerHandler(deps.Registry, deps.Logger)
	securedGroup.GET("/timer", timerHandler.Get)
	securedGroup.PUT("/timer/route", timerHandler.Navigate)

	return e
}

func loggingMiddleware(ctx context.Context, log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogRequestID: true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true, // forwards error to the global error handler, so it can decide appropriate status code
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}
			if v.Error == nil {
				log.LogAttrs(ctx, slog.LevelInfo, "REQUEST", attrs...)
			} else {
				log.LogAttrs(ctx, slog.LevelError, "REQUEST_ERROR", append(attrs, slog.String("err", v.Error.Error()))...)
			}
			return nil
		},
	})
}
