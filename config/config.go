package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// replacer maps dotted config keys onto env var segments, so e.g.
// fetch.pool_size becomes POLLUALERT_FETCH_POOL_SIZE.
var replacer = strings.NewReplacer(".", "_")

// Config holds all settings for the alert pipeline core.
type Config struct {
	// External services.
	IdentityBaseURL  string
	PollutionBaseURL string
	AlertWSURL       string
	NatsURL          string

	// Stores.
	RedisAddr     string
	RedisPassword string
	PostgresDSN   string

	// Session.
	SessionSecret string
	SessionTTL    time.Duration
	SessionFile   string

	// Identity client.
	TransportRetries int

	// Aggregation.
	FetchTimeout  time.Duration
	FetchPoolSize int

	// Alert channel reconnect policy.
	ReconnectInitial time.Duration
	ReconnectMax     time.Duration
	ReconnectBudget  int

	// Notification queue.
	QueueHistory    int
	QueueDisplayTTL time.Duration
}

// Load reads configuration from an optional pollualert.yaml in the working
// directory plus POLLUALERT_* environment variables, with defaults matching
// the reference deployment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("identity.base_url", "http://localhost:8080/api")
	v.SetDefault("pollution.base_url", "http://localhost:8080/api")
	v.SetDefault("alert.ws_url", "ws://localhost:8080/ws")
	v.SetDefault("alert.nats_url", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("postgres.dsn", "")

	v.SetDefault("session.secret", "change-me-in-production")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.file", ".pollualert-session")

	v.SetDefault("identity.transport_retries", 2)

	v.SetDefault("fetch.timeout", 8*time.Second)
	// Bounds concurrent pollution fetches so a full catalog refresh does not
	// open one socket per city against the data service.
	v.SetDefault("fetch.pool_size", 16)

	v.SetDefault("reconnect.initial", 1*time.Second)
	v.SetDefault("reconnect.max", 30*time.Second)
	v.SetDefault("reconnect.budget", 10)

	v.SetDefault("queue.history", 256)
	v.SetDefault("queue.display_ttl", 15*time.Second)

	v.SetEnvPrefix("POLLUALERT")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	v.SetConfigName("pollualert")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		IdentityBaseURL:  v.GetString("identity.base_url"),
		PollutionBaseURL: v.GetString("pollution.base_url"),
		AlertWSURL:       v.GetString("alert.ws_url"),
		NatsURL:          v.GetString("alert.nats_url"),

		RedisAddr:     v.GetString("redis.addr"),
		RedisPassword: v.GetString("redis.password"),
		PostgresDSN:   v.GetString("postgres.dsn"),

		SessionSecret: v.GetString("session.secret"),
		SessionTTL:    v.GetDuration("session.ttl"),
		SessionFile:   v.GetString("session.file"),

		TransportRetries: v.GetInt("identity.transport_retries"),

		FetchTimeout:  v.GetDuration("fetch.timeout"),
		FetchPoolSize: v.GetInt("fetch.pool_size"),

		ReconnectInitial: v.GetDuration("reconnect.initial"),
		ReconnectMax:     v.GetDuration("reconnect.max"),
		ReconnectBudget:  v.GetInt("reconnect.budget"),

		QueueHistory:    v.GetInt("queue.history"),
		QueueDisplayTTL: v.GetDuration("queue.display_ttl"),
	}

	if cfg.FetchPoolSize < 1 {
		return nil, fmt.Errorf("fetch.pool_size must be at least 1, got %d", cfg.FetchPoolSize)
	}
	if cfg.QueueHistory < 1 {
		return nil, fmt.Errorf("queue.history must be at least 1, got %d", cfg.QueueHistory)
	}
	if cfg.ReconnectInitial <= 0 || cfg.ReconnectMax < cfg.ReconnectInitial {
		return nil, fmt.Errorf("invalid reconnect backoff window [%v, %v]", cfg.ReconnectInitial, cfg.ReconnectMax)
	}

	return cfg, nil
}
