package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_PORT", "8000")
	t.Setenv("DB_USER", "shop")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "easyshop")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MAIL_USERNAME", "noreply@example.com")
	t.Setenv("MAIL_PASSWORD", "app-password")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, "static", cfg.StaticDir)
	assert.Equal(t, "10M", cfg.BodyLimit)
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.VerifyTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, "noreply@example.com", cfg.Mail.From)
	assert.False(t, cfg.EventsEnabled)
	assert.Equal(t, "shop@tcp(127.0.0.1:3306)/easyshop?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true", cfg.DSN())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_PASS", "pw")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "0")
	t.Setenv("BASE_URL", "https://shop.example.com")
	t.Setenv("MAIL_FROM", "EasyShop <hello@example.com>")
	t.Setenv("RABBITMQ_URL", "amqp://u:p@mq:5672/")
	t.Setenv("EVENTS_ENABLED", "yes")

	cfg := Load()

	assert.Zero(t, cfg.AccessTTL)
	assert.Equal(t, "https://shop.example.com", cfg.BaseURL)
	assert.Equal(t, "EasyShop <hello@example.com>", cfg.Mail.From)
	assert.Equal(t, "amqp://u:p@mq:5672/", cfg.AMQPURL)
	assert.True(t, cfg.EventsEnabled)
	assert.Contains(t, cfg.DSN(), "shop:pw@tcp(")
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()

	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 10*time.Second, cfg.TTL)
	assert.InDelta(t, 0.5, cfg.RefillRate(), 1e-9)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "bogus")

	cfg := LoadCacheConfig()

	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.Equal(t, time.Second, cfg.TTL)
	assert.Equal(t, "catalog", cfg.Prefix)
}

func TestLoadRedisConfigHostPort(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_ENABLED", "false")

	cfg := LoadRedisConfig()

	assert.Equal(t, "cache:6380", cfg.Addr)
	assert.Nil(t, NewRedisClient(cfg))
}
