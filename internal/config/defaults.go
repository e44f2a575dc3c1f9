package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel       = "info"
	DefaultJSONLog        = false
	DefaultUserAgent      = "spritefetch/0.1 (https://github.com/osrs-kit/spritefetch)"
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultWikiBaseURL    = "https://oldschool.runescape.wiki/"
	DefaultRateLimitRPS   = 5.0
	DefaultRateLimitBurst = 10
	DefaultDestination    = "./sprites"
)
