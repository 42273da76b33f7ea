package config

import (
	"os"
	"strconv"
	"strings"
)

// ServerSettings controls the HTTP API started by the serve command.
type ServerSettings struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// AuthEnabled toggles API key authentication.
	AuthEnabled bool // default: false
	// APIKeys is the list of valid API keys.
	APIKeys []string

	// RateRPS is the sustained request rate per client key.
	RateRPS float64 // default: 5
	// RateBurst is the maximum burst size per client key.
	RateBurst int // default: 10

	LogLevel  string // default: "info"
	LogFormat string // "json" or "text"; default: "json"
}

// LoadServerSettings reads server settings from environment variables
// with sane defaults.
func LoadServerSettings() *ServerSettings {
	return &ServerSettings{
		Host:        envOr("SPINDLE_HOST", "0.0.0.0"),
		Port:        envIntOr("SPINDLE_PORT", 8080),
		Mode:        envOr("SPINDLE_MODE", "release"),
		AuthEnabled: envBoolOr("SPINDLE_AUTH_ENABLED", false),
		APIKeys:     envSliceOr("SPINDLE_API_KEYS", nil),
		RateRPS:     envFloatOr("SPINDLE_RATE_RPS", 5.0),
		RateBurst:   envIntOr("SPINDLE_RATE_BURST", 10),
		LogLevel:    envOr("SPINDLE_LOG_LEVEL", "info"),
		LogFormat:   envOr("SPINDLE_LOG_FORMAT", "json"),
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
