package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit must be > 0 requests per second")
	}
	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be > 0")
	}
	if !strings.HasPrefix(c.WikiBaseURL, "http://") && !strings.HasPrefix(c.WikiBaseURL, "https://") {
		return fmt.Errorf("wiki base URL must start with http:// or https://")
	}
	return nil
}
