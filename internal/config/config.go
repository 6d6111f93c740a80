// Package config reads the storefront settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config настройки приложения. Значения берутся из окружения, .env подхватывается если есть.
type Config struct {
	Env       string
	LogLevel  string
	HTTPAddr  string
	Console   bool
	PageSize  int
	NoticeTTL time.Duration

	APIBaseURL  string
	APITimeout  time.Duration
	SessionFile string

	RedisAddr   string
	RedisPrefix string
	RedisTTL    time.Duration
}

// Offline reports whether the storefront runs on the built-in demo catalog.
func (c Config) Offline() bool { return c.APIBaseURL == "" }

// Load reads .env (optional) and the process environment.
func Load(files ...string) (Config, error) {
	// Load environment variables
	_ = godotenv.Load(files...)
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an env lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Env:         get("APP_ENV", "production"),
		LogLevel:    get("LOG_LEVEL", "info"),
		HTTPAddr:    get("HTTP_ADDR", ":9091"),
		APIBaseURL:  get("API_BASE_URL", ""),
		SessionFile: get("SESSION_FILE", ""),
		RedisAddr:   get("REDIS_ADDR", ""),
		RedisPrefix: get("REDIS_PREFIX", "farmacia:"),
	}

	var err error
	if cfg.Console, err = strconv.ParseBool(get("CONSOLE", "false")); err != nil {
		return Config{}, fmt.Errorf("CONSOLE: %w", err)
	}
	if cfg.PageSize, err = strconv.Atoi(get("PAGE_SIZE", "12")); err != nil {
		return Config{}, fmt.Errorf("PAGE_SIZE: %w", err)
	}
	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		return Config{}, fmt.Errorf("PAGE_SIZE: must be between 1 and 100, got %d", cfg.PageSize)
	}
	if cfg.NoticeTTL, err = time.ParseDuration(get("NOTICE_TTL", "5s")); err != nil {
		return Config{}, fmt.Errorf("NOTICE_TTL: %w", err)
	}
	if cfg.APITimeout, err = time.ParseDuration(get("API_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("API_TIMEOUT: %w", err)
	}
	if cfg.RedisTTL, err = time.ParseDuration(get("REDIS_TTL", "5m")); err != nil {
		return Config{}, fmt.Errorf("REDIS_TTL: %w", err)
	}
	return cfg, nil
}
