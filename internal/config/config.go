package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Env                string
	APIBaseURL         string
	RequestTimeout     time.Duration
	DestructiveTimeout time.Duration
	PollInterval       time.Duration
	StatePath          string

	// Non-interactive login for scripted runs. Empty means the terminal
	// resumes a persisted session or prompts.
	Username string
	Password string
}

func Load() Config {
	cfg := Config{
		Env:                getEnv("APP_ENV", "development"),
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:8000/api"),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		DestructiveTimeout: getEnvDuration("DESTRUCTIVE_TIMEOUT", 45*time.Second),
		PollInterval:       getEnvDuration("POLL_INTERVAL", 5*time.Second),
		StatePath:          getEnv("STATE_PATH", defaultStatePath()),
		Username:           getEnv("TERMINAL_USERNAME", ""),
		Password:           getEnv("TERMINAL_PASSWORD", ""),
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.DestructiveTimeout < cfg.RequestTimeout {
		cfg.DestructiveTimeout = cfg.RequestTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return cfg
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".restaurant-terminal.json"
	}
	return home + string(os.PathSeparator) + ".restaurant-terminal.json"
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
