package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	JWTSecret        string
	TokenTTL         time.Duration
	UnreadCacheTTL   time.Duration
	StreamPollEvery  time.Duration
	StreamHeartbeat  time.Duration
	StreamLifetime   time.Duration
	ClientRetryDelay time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FUNAGIG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "FunaGig API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("token.ttl", "24h")
	v.SetDefault("unread.cache_ttl", "30s")
	// Stream cadence the frontend was built against: 1s store polls, 5s
	// heartbeats, 300s bounded connection lifetime, 5s client reconnect delay.
	v.SetDefault("stream.poll_interval", "1s")
	v.SetDefault("stream.heartbeat", "5s")
	v.SetDefault("stream.lifetime", "300s")
	v.SetDefault("stream.retry_delay", "5s")

	cfg := Config{
		AppName:     v.GetString("app.name"),
		AppEnv:      v.GetString("app.env"),
		AppPort:     v.GetString("app.port"),
		DatabaseURL: v.GetString("database.url"),
		RedisURL:    v.GetString("redis.url"),
		NATSURL:     v.GetString("nats.url"),
		JWTSecret:   v.GetString("jwt.secret"),
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"token.ttl", &cfg.TokenTTL},
		{"unread.cache_ttl", &cfg.UnreadCacheTTL},
		{"stream.poll_interval", &cfg.StreamPollEvery},
		{"stream.heartbeat", &cfg.StreamHeartbeat},
		{"stream.lifetime", &cfg.StreamLifetime},
		{"stream.retry_delay", &cfg.ClientRetryDelay},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid duration for %s: %w", d.key, err)
		}
		if parsed <= 0 {
			return Config{}, fmt.Errorf("duration for %s must be positive", d.key)
		}
		*d.target = parsed
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
