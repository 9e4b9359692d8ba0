// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Version is set at build time via -ldflags.
var Version = "1.0.0"

const envPrefix = "MEAL_LOG_"

const (
	ProviderGateway = "gateway"
	ProviderGemini  = "gemini"
)

type Config struct {
	Host string
	Port int

	DBPath         string
	RetentionLimit int

	LogLevel  slog.Level
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ShutdownTimeout  time.Duration

	// AI analyzer
	AIProvider        string
	AITimeout         time.Duration
	ProxyURL          string
	ProxyAPIKey       string
	OpenRouterModel   string
	GeminiAPIKey      string
	GeminiModel       string
	AnalysisCacheSize int
	AnalysisCacheTTL  time.Duration

	// TrustClientNutrition stores caller-supplied macros on log.
	TrustClientNutrition bool
}

// Load reads MEAL_LOG_* variables. The proxy and model settings also accept
// the unprefixed names used by the MCP compose stack.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	cfg.Host = getEnvDefault("HOST", "0.0.0.0")
	if cfg.Port, err = getEnvInt("PORT", 8011); err != nil {
		return nil, err
	}
	cfg.DBPath = getEnvDefault("DB_PATH", "/data/meal-log.db")
	if cfg.RetentionLimit, err = getEnvInt("RETENTION_LIMIT", 14); err != nil {
		return nil, err
	}
	if cfg.RetentionLimit < 1 {
		return nil, fmt.Errorf("%sRETENTION_LIMIT: must be at least 1", envPrefix)
	}

	if cfg.LogLevel, err = parseLogLevel(getEnvDefault("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("%sLOG_LEVEL: %w", envPrefix, err)
	}
	cfg.LogFormat = getEnvDefault("LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("%sLOG_FORMAT: invalid format %q, want json or text", envPrefix, cfg.LogFormat)
	}

	if cfg.HTTPReadTimeout, err = getEnvDuration("HTTP_READ_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getEnvDuration("HTTP_WRITE_TIMEOUT", 90*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getEnvDuration("HTTP_IDLE_TIMEOUT", 120*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	cfg.AIProvider = strings.ToLower(getEnvDefault("AI_PROVIDER", ProviderGateway))
	if cfg.AIProvider != ProviderGateway && cfg.AIProvider != ProviderGemini {
		return nil, fmt.Errorf("%sAI_PROVIDER: invalid provider %q, want gateway or gemini", envPrefix, cfg.AIProvider)
	}
	if cfg.AITimeout, err = getEnvDuration("AI_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	cfg.ProxyURL = getEnvFallback("MCP_PROXY_URL", "http://mcp-compose-http-proxy:9876")
	cfg.ProxyAPIKey = getEnvFallback("MCP_PROXY_API_KEY", "")
	cfg.OpenRouterModel = getEnvFallback("OPENROUTER_MODEL", "google/gemini-2.0-flash-001")
	cfg.GeminiAPIKey = getEnvFallback("GEMINI_API_KEY", "")
	cfg.GeminiModel = getEnvFallback("GEMINI_MODEL", "gemini-2.0-flash")
	if cfg.AIProvider == ProviderGemini && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY: required when %sAI_PROVIDER=gemini", envPrefix)
	}

	if cfg.AnalysisCacheSize, err = getEnvInt("ANALYSIS_CACHE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.AnalysisCacheTTL, err = getEnvDuration("ANALYSIS_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}

	if cfg.TrustClientNutrition, err = getEnvBool("TRUST_CLIENT_NUTRITION", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SetupLogger builds the process logger and makes it the slog default.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func getEnvDefault(key, defaultVal string) string {
	if val := os.Getenv(envPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvFallback prefers the prefixed variable, then the bare one.
func getEnvFallback(key, defaultVal string) string {
	if val := os.Getenv(envPrefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s%s: invalid integer %q", envPrefix, key, val)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s%s: invalid duration %q (use Go format: 30s, 1h, 15m)", envPrefix, key, val)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s%s: must be > 0", envPrefix, key)
	}
	return d, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%s%s: invalid boolean %q", envPrefix, key, val)
	}
	return b, nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid level %q, want debug, info, warn or error", level)
	}
}
