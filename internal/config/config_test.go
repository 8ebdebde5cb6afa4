package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv сбрасывает переменные, которые могут прийти из окружения CI.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HTTP_PORT", "DATABASE_URL", "JWT_SECRET", "CORS_ALLOWED_ORIGINS",
		"RATE_LIMIT_LIMIT", "RATE_LIMIT_PERIOD", "CATEGORY_MAX_DEPTH", "STORAGE_DRIVER",
		"HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "LOG_LEVEL",
		"POSTGRESQL_HOST", "POSTGRESQL_PORT", "POSTGRESQL_USER", "POSTGRESQL_PASSWORD", "POSTGRESQL_DBNAME",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("RATE_LIMIT_LIMIT", "10")
	t.Setenv("RATE_LIMIT_PERIOD", "1m")
	t.Setenv("HTTP_READ_TIMEOUT", "15s")
	t.Setenv("HTTP_WRITE_TIMEOUT", "15s")
	t.Setenv("CATEGORY_MAX_DEPTH", "5")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction())
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 5, cfg.CategoryMaxDepth)
	assert.Equal(t, int64(10), cfg.RateLimitLimit)
	assert.Equal(t, time.Minute, cfg.RateLimitPeriod)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.DatabaseURL, "/videomarket")
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("RATE_LIMIT_LIMIT", "3")
	t.Setenv("RATE_LIMIT_PERIOD", "30s")
	t.Setenv("HTTP_READ_TIMEOUT", "5s")
	t.Setenv("HTTP_WRITE_TIMEOUT", "5s")
	t.Setenv("CATEGORY_MAX_DEPTH", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://admin.example.com , ,https://example.com")
	t.Setenv("POSTGRESQL_HOST", "db")
	t.Setenv("POSTGRESQL_USER", "video")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "market")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 3, cfg.CategoryMaxDepth)
	assert.Equal(t, 30*time.Second, cfg.RateLimitPeriod)
	assert.Equal(t, []string{"https://admin.example.com", "https://example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "postgres://video:p%40ss@db:5432/market?sslmode=disable", cfg.DatabaseURL)
}

func TestFromEnv_Errors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"unknown storage", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"bad duration", map[string]string{"RATE_LIMIT_PERIOD": "soon"}},
		{"bad depth", map[string]string{"CATEGORY_MAX_DEPTH": "0"}},
		{"short secret in production", map[string]string{
			"APP_ENV": "production", "JWT_SECRET": "short", "CORS_ALLOWED_ORIGINS": "https://example.com",
		}},
		{"no origins in production", map[string]string{
			"APP_ENV": "production", "JWT_SECRET": "0123456789abcdef0123456789abcdef",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			base := map[string]string{
				"APP_ENV":            "development",
				"STORAGE_DRIVER":     "memory",
				"RATE_LIMIT_LIMIT":   "10",
				"RATE_LIMIT_PERIOD":  "1m",
				"HTTP_READ_TIMEOUT":  "15s",
				"HTTP_WRITE_TIMEOUT": "15s",
				"CATEGORY_MAX_DEPTH": "5",
			}
			for k, v := range tc.env {
				base[k] = v
			}
			for k, v := range base {
				t.Setenv(k, v)
			}

			_, err := fromEnv()
			assert.Error(t, err)
		})
	}
}
