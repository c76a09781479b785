package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lessonflow/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:               ":8080",
		DBPath:             "test.db",
		LogLevel:           "INFO",
		ContentAPIURL:      "http://localhost:3000/api",
		ContentAPITimeout:  15 * time.Second,
		WeekStart:          time.Monday,
		PersistWorkerCount: 1,
		PersistQueueSize:   64,
		SessionIdleTimeout: 30 * time.Minute,
		EvictEvery:         5 * time.Minute,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty addr", func(c *config.Config) { c.Addr = "" }, "ADDR cannot be empty"},
		{"empty db path", func(c *config.Config) { c.DBPath = "" }, "DB_PATH cannot be empty"},
		{"bad content url", func(c *config.Config) { c.ContentAPIURL = "ftp://x" }, "CONTENT_API_URL"},
		{"zero timeout", func(c *config.Config) { c.ContentAPITimeout = 0 }, "CONTENT_API_TIMEOUT_SECONDS"},
		{"no workers", func(c *config.Config) { c.PersistWorkerCount = 0 }, "PERSIST_WORKER_COUNT"},
		{"no queue", func(c *config.Config) { c.PersistQueueSize = 0 }, "PERSIST_QUEUE_SIZE"},
		{"no idle timeout", func(c *config.Config) { c.SessionIdleTimeout = 0 }, "SESSION_IDLE_MINUTES"},
		{"no evict interval", func(c *config.Config) { c.EvictEvery = 0 }, "SESSION_EVICT_EVERY_MINUTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("WEEK_START", "")
	t.Setenv("PERSIST_QUEUE_SIZE", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("SESSION_EVICT_EVERY_MINUTES", "")

	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, time.Monday, cfg.WeekStart)
	assert.Equal(t, 64, cfg.PersistQueueSize)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("WEEK_START", "sun")
	t.Setenv("CONTENT_API_TIMEOUT_SECONDS", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,http://localhost:5173")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, time.Sunday, cfg.WeekStart)
	assert.Equal(t, 5*time.Second, cfg.ContentAPITimeout)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestParseWeekday(t *testing.T) {
	d, ok := config.ParseWeekday("Saturday")
	assert.True(t, ok)
	assert.Equal(t, time.Saturday, d)

	_, ok = config.ParseWeekday("someday")
	assert.False(t, ok)
}
