package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	ContentAPIURL      string
	ContentAPITimeout  time.Duration
	WeekStart          time.Weekday
	PersistWorkerCount int
	PersistQueueSize   int
	SessionIdleTimeout time.Duration
	RequestTimeout     time.Duration
	AllowedOrigins     []string
	EvictEvery         time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:lessonflow.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		ContentAPIURL:      envOr("CONTENT_API_URL", "http://localhost:3000/api"),
		ContentAPITimeout:  time.Duration(envIntOr("CONTENT_API_TIMEOUT_SECONDS", 15)) * time.Second,
		WeekStart:          weekdayOr("WEEK_START", time.Monday),
		PersistWorkerCount: envIntOr("PERSIST_WORKER_COUNT", 1),
		PersistQueueSize:   envIntOr("PERSIST_QUEUE_SIZE", 64),
		SessionIdleTimeout: time.Duration(envIntOr("SESSION_IDLE_MINUTES", 30)) * time.Minute,
		RequestTimeout:     time.Duration(envIntOr("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		AllowedOrigins:     envListOr("CORS_ALLOWED_ORIGINS", []string{"*"}),
		EvictEvery:         time.Duration(envIntOr("SESSION_EVICT_EVERY_MINUTES", 5)) * time.Minute,
	}
}

// Validate returns an error describing the first invalid setting.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if !strings.HasPrefix(c.ContentAPIURL, "http://") && !strings.HasPrefix(c.ContentAPIURL, "https://") {
		return fmt.Errorf("CONTENT_API_URL must be an http(s) URL, got %q", c.ContentAPIURL)
	}
	if c.ContentAPITimeout <= 0 {
		return fmt.Errorf("CONTENT_API_TIMEOUT_SECONDS must be positive")
	}
	if c.PersistWorkerCount < 1 {
		return fmt.Errorf("PERSIST_WORKER_COUNT must be at least 1, got %d", c.PersistWorkerCount)
	}
	if c.PersistQueueSize < 1 {
		return fmt.Errorf("PERSIST_QUEUE_SIZE must be at least 1, got %d", c.PersistQueueSize)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_MINUTES must be positive")
	}
	if c.EvictEvery <= 0 {
		return fmt.Errorf("SESSION_EVICT_EVERY_MINUTES must be positive")
	}
	return nil
}

// ParseWeekday accepts full or three-letter English weekday names.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, true
		}
	}
	return time.Sunday, false
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envListOr splits a comma separated value, dropping blanks.
func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func weekdayOr(key string, def time.Weekday) time.Weekday {
	if v := os.Getenv(key); v != "" {
		if d, ok := ParseWeekday(v); ok {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
