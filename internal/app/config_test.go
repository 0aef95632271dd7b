package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AUTHZ_CONCEAL_FOREIGN", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.True(t, cfg.AuthzConcealForeign)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvDoesNotNeedSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{JWTSecret: "x"}
	assert.NoError(t, cfg.Validate())
	cfg.RateLimitPerMinute = -1
	assert.Error(t, cfg.Validate())
	assert.Error(t, (&Config{}).Validate())
}

func TestLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, &Config{LogFormat: "json", AppEnv: "production"}).Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, &Config{LogFormat: "json", AppEnv: "production"}).Info("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"service":"tasktrack"`)
}
