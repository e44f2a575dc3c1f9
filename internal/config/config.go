package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// HTTP
	HTTPTimeout time.Duration
	UserAgent   string

	// Wiki
	WikiBaseURL string

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Output
	Destination string
}

// Load builds a Config by combining defaults, a .env file if present,
// environment variables, and CLI flags. Caller should pass the root
// *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	// A .env in the working directory seeds the environment; absence is fine.
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:       DefaultLogLevel,
		JSONLog:        DefaultJSONLog,
		HTTPTimeout:    DefaultHTTPTimeout,
		UserAgent:      DefaultUserAgent,
		WikiBaseURL:    DefaultWikiBaseURL,
		RateLimitRPS:   DefaultRateLimitRPS,
		RateLimitBurst: DefaultRateLimitBurst,
		Destination:    DefaultDestination,
	}

	// Override from environment variables
	if v := os.Getenv("SPRITEFETCH_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("SPRITEFETCH_WIKI_URL"); v != "" {
		cfg.WikiBaseURL = v
	}
	if v := os.Getenv("SPRITEFETCH_DESTINATION"); v != "" {
		cfg.Destination = v
	}
	if v := os.Getenv("SPRITEFETCH_RATE_LIMIT_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = rps
		}
	}

	// Read CLI flags if provided
	if cmd != nil {
		if f := cmd.Flags().Lookup("user-agent"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.UserAgent = s
			}
		}
		if f := cmd.Flags().Lookup("wiki-url"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.WikiBaseURL = s
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.HTTPTimeout = d
				}
			}
		}
		if f := cmd.Flags().Lookup("json"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
