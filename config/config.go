package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Config holds all application configuration. It is loaded once at startup
// and never mutated afterwards.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Acquire   AcquireConfig
	Cookies   CookieConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instances launched per attempt.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// AcquireConfig controls the acquisition state machine.
type AcquireConfig struct {
	// NavigationTimeout bounds each navigation strategy attempt.
	// Default: 45s. Values below 5s are raised to 5s.
	NavigationTimeout time.Duration

	// MaxImages caps the image candidate list after dedup and backfill.
	MaxImages int // default: 12

	// BestImages is the final display-ranked list size.
	BestImages int // default: 6

	// ProxyPool is a comma-delimited list of proxy URLs for stage 2.
	// Each entry: scheme://[user:pass@]host[:port]. Empty disables stage 2.
	ProxyPool string

	// UnlockerAPIKey is the Bright Data-style unlocker bearer credential.
	// Empty disables stage 3.
	UnlockerAPIKey string

	// UnlockerZone is the unlocker zone identifier. Default: "unblocker".
	UnlockerZone string

	// UnlockerEndpoint is the unlocker request URL.
	UnlockerEndpoint string

	// MaxRedirects is the process-wide redirect cap for outbound HTTP.
	MaxRedirects int // default: 10
}

// CookieConfig controls the on-disk per-domain cookie store.
type CookieConfig struct {
	// Dir holds one <domain>.json file per site.
	// Default: $XDG_DATA_HOME/prodsnap/cookies.
	Dir string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PRODSNAP_HOST", "0.0.0.0"),
			Port: envIntOr("PRODSNAP_PORT", 8080),
			Mode: envOr("PRODSNAP_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("PRODSNAP_HEADLESS", true),
			NoSandbox:  envBoolOr("PRODSNAP_NO_SANDBOX", false),
			BrowserBin: os.Getenv("PRODSNAP_BROWSER_BIN"),
		},
		Acquire: AcquireConfig{
			NavigationTimeout: clampNavTimeout(envDurationOr("PRODSNAP_NAV_TIMEOUT", 45*time.Second)),
			MaxImages:         envIntOr("PRODSNAP_MAX_IMAGES", 12),
			BestImages:        envIntOr("PRODSNAP_BEST_IMAGES", 6),
			ProxyPool:         os.Getenv("PRODSNAP_PROXY_POOL"),
			UnlockerAPIKey:    os.Getenv("PRODSNAP_UNLOCKER_API_KEY"),
			UnlockerZone:      envOr("PRODSNAP_UNLOCKER_ZONE", "unblocker"),
			UnlockerEndpoint:  envOr("PRODSNAP_UNLOCKER_ENDPOINT", "https://api.brightdata.com/request"),
			MaxRedirects:      envIntOr("PRODSNAP_MAX_REDIRECTS", 10),
		},
		Cookies: CookieConfig{
			Dir: envOr("PRODSNAP_COOKIE_DIR", filepath.Join(xdg.DataHome, "prodsnap", "cookies")),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PRODSNAP_AUTH_ENABLED", true),
			APIKeys: envSliceOr("PRODSNAP_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PRODSNAP_RATE_RPS", 2.0),
			Burst:             envIntOr("PRODSNAP_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("PRODSNAP_LOG_LEVEL", "info"),
			Format: envOr("PRODSNAP_LOG_FORMAT", "json"),
		},
	}
}

// clampNavTimeout enforces the 5s navigation timeout floor.
func clampNavTimeout(d time.Duration) time.Duration {
	if d < 5*time.Second {
		return 5 * time.Second
	}
	return d
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
