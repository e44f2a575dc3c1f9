// Package app provides the core application initialization and lifecycle management.
package app

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/osrs-kit/spritefetch/internal/config"
	"github.com/osrs-kit/spritefetch/internal/imaging"
	"github.com/osrs-kit/spritefetch/internal/ratelimit"
	"github.com/osrs-kit/spritefetch/internal/wiki"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	HTTPClient  *http.Client
	RateLimiter ratelimit.Limiter
	Fetcher     *imaging.Fetcher
	startTime   time.Time
}

// New creates and initializes a new Application: logger per the config,
// a shared HTTP client, the per-host rate limiter, and the image fetcher.
func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logLevel := zerolog.ErrorLevel
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	// Treat "info" as non-verbose so pipeline notifications stay the
	// primary output unless -v is used.
	default:
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.NewConsoleWriter()
	}
	logger := log.Output(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	limiter := ratelimit.NewHostLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Msg("HTTP client initialized")

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		HTTPClient:  httpClient,
		RateLimiter: limiter,
		Fetcher:     imaging.NewFetcher(httpClient, limiter, cfg.UserAgent),
		startTime:   time.Now(),
	}

	logger.Debug().Msg("Application initialized")
	return app, nil
}

// WikiClient builds a wiki client against the configured base URL.
func (a *Application) WikiClient(opts ...wiki.Option) *wiki.Client {
	opts = append([]wiki.Option{wiki.WithUserAgent(a.Config.UserAgent)}, opts...)
	return wiki.NewClient(a.Config.WikiBaseURL, a.HTTPClient, a.RateLimiter, opts...)
}

// Close releases pooled connections. Safe to call once per process exit.
func (a *Application) Close() error {
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}
	a.Logger.Debug().Dur("uptime", time.Since(a.startTime)).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
