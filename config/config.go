package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// MaxSessions caps how many browser-backed requests may run at once.
	// Each search or describe call owns a whole browser process.
	MaxSessions int64 // default: 4

	// SessionWait is how long a request may queue for a free session
	// before it is rejected as busy.
	SessionWait time.Duration // default: 30s
}

// BrowserConfig is the fixed launch configuration for every browser session.
// It is built once at startup and copied into each acquisition.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// ProtocolTimeout bounds every individual DevTools operation.
	ProtocolTimeout time.Duration // default: 3m

	// Flags are the command-line switches passed to Chromium. They target
	// constrained container environments (no OS sandbox, no GPU, no /dev/shm).
	Flags []string
}

// ScraperConfig controls navigation, retry and pacing behavior.
type ScraperConfig struct {
	// Origin is the site origin used to build search URLs and absolutize links.
	Origin string // default: "https://www.amazon.in"

	// UserAgent is the fixed desktop user agent set on every page.
	UserAgent string

	// NavigationTimeout bounds one search-page navigation including the
	// network-settle wait. It is also the default per-operation timeout.
	NavigationTimeout time.Duration // default: 2m

	// DescribeTimeout bounds the product-page navigation.
	DescribeTimeout time.Duration // default: 1m

	// IdleWindow is how long the network must stay quiet before a page
	// counts as loaded.
	IdleWindow time.Duration // default: 500ms

	// MaxAttempts is the total number of navigation attempts per page.
	MaxAttempts int // default: 3

	// BaseDelay is the first retry backoff; later retries double it.
	BaseDelay time.Duration // default: 5s

	// PageDelay is the politeness pause between consecutive result pages.
	PageDelay time.Duration // default: 5s

	// MaxPagesLimit is the largest page bound the API accepts from a caller.
	MaxPagesLimit int // default: 20
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key or client IP.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per identity.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultUserAgent is a realistic desktop Chrome user agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultBrowserFlags are the isolation switches applied to every launch.
var DefaultBrowserFlags = []string{
	"no-sandbox",
	"disable-setuid-sandbox",
	"disable-dev-shm-usage",
	"disable-accelerated-2d-canvas",
	"no-first-run",
	"no-zygote",
	"single-process",
	"disable-gpu",
	"disable-extensions",
	"disable-infobars",
	"window-position=0,0",
	"ignore-certificate-errors",
	"ignore-certificate-errors-spki-list",
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        envOr("SHELFSCAN_HOST", "0.0.0.0"),
			Port:        envIntOr("SHELFSCAN_PORT", 8080),
			Mode:        envOr("SHELFSCAN_MODE", "release"),
			MaxSessions: int64(envIntOr("SHELFSCAN_MAX_SESSIONS", 4)),
			SessionWait: envDurationOr("SHELFSCAN_SESSION_WAIT", 30*time.Second),
		},
		Browser: BrowserConfig{
			Headless:        envBoolOr("SHELFSCAN_HEADLESS", true),
			BrowserBin:      os.Getenv("SHELFSCAN_BROWSER_BIN"),
			ProtocolTimeout: envDurationOr("SHELFSCAN_PROTOCOL_TIMEOUT", 3*time.Minute),
			Flags:           envSliceOr("SHELFSCAN_BROWSER_FLAGS", DefaultBrowserFlags),
		},
		Scraper: ScraperConfig{
			Origin:            strings.TrimRight(envOr("SHELFSCAN_ORIGIN", "https://www.amazon.in"), "/"),
			UserAgent:         envOr("SHELFSCAN_USER_AGENT", DefaultUserAgent),
			NavigationTimeout: envDurationOr("SHELFSCAN_NAV_TIMEOUT", 2*time.Minute),
			DescribeTimeout:   envDurationOr("SHELFSCAN_DESCRIBE_TIMEOUT", time.Minute),
			IdleWindow:        envDurationOr("SHELFSCAN_IDLE_WINDOW", 500*time.Millisecond),
			MaxAttempts:       envIntOr("SHELFSCAN_MAX_ATTEMPTS", 3),
			BaseDelay:         envDurationOr("SHELFSCAN_RETRY_BASE_DELAY", 5*time.Second),
			PageDelay:         envDurationOr("SHELFSCAN_PAGE_DELAY", 5*time.Second),
			MaxPagesLimit:     envIntOr("SHELFSCAN_MAX_PAGES_LIMIT", 20),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SHELFSCAN_AUTH_ENABLED", false),
			APIKeys: envSliceOr("SHELFSCAN_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SHELFSCAN_RATE_RPS", 1.0),
			Burst:             envIntOr("SHELFSCAN_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("SHELFSCAN_LOG_LEVEL", "info"),
			Format: envOr("SHELFSCAN_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
