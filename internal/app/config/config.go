// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

// Config carries environment-driven settings shared by the bookstore processes.
type Config struct {
	Port        string
	PostgresDSN string
	RedisAddr   string

	KafkaBrokers []string
	KafkaTopic   string

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	SessionTTL           time.Duration
	SessionPurgeInterval time.Duration
	OutboxPollInterval   time.Duration

	BootstrapAdminUsername string
	BootstrapAdminPassword string

	DefaultPageSize int
	MaxPageSize     int
}

// Environment variable names.
const (
	KeyPort                   = "PORT"
	KeyPostgresDSN            = "POSTGRES_DSN"
	KeyRedisAddr              = "REDIS_ADDR"
	KeyKafkaBrokers           = "KAFKA_BROKERS"
	KeyKafkaTopic             = "KAFKA_TOPIC"
	KeyTemporalAddress        = "TEMPORAL_ADDRESS"
	KeyTemporalNamespace      = "TEMPORAL_NAMESPACE"
	KeyTemporalDisabled       = "TEMPORAL_DISABLED"
	KeySessionTTLHours        = "SESSION_TTL_HOURS"
	KeySessionPurgeMinutes    = "SESSION_PURGE_INTERVAL_MINUTES"
	KeyOutboxPollMillis       = "OUTBOX_POLL_INTERVAL_MS"
	KeyBootstrapAdminUsername = "BOOTSTRAP_ADMIN_USERNAME"
	KeyBootstrapAdminPassword = "BOOTSTRAP_ADMIN_PASSWORD"
	KeyDefaultPageSize        = "DEFAULT_PAGE_SIZE"
	KeyMaxPageSize            = "MAX_PAGE_SIZE"
)

// Load reads the process environment, applies defaults and validates the result.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	setDefaults(v)

	var errs []error
	cfg := Config{
		Port:                   strings.TrimSpace(v.GetString(KeyPort)),
		PostgresDSN:            strings.TrimSpace(v.GetString(KeyPostgresDSN)),
		RedisAddr:              strings.TrimSpace(v.GetString(KeyRedisAddr)),
		KafkaBrokers:           splitList(v.GetString(KeyKafkaBrokers)),
		KafkaTopic:             strings.TrimSpace(v.GetString(KeyKafkaTopic)),
		TemporalAddress:        strings.TrimSpace(v.GetString(KeyTemporalAddress)),
		TemporalNamespace:      strings.TrimSpace(v.GetString(KeyTemporalNamespace)),
		TemporalDisabled:       isTruthy(v.GetString(KeyTemporalDisabled)),
		BootstrapAdminUsername: strings.TrimSpace(v.GetString(KeyBootstrapAdminUsername)),
		BootstrapAdminPassword: v.GetString(KeyBootstrapAdminPassword),
	}

	if port, err := strconv.Atoi(cfg.Port); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("%s must be a TCP port, got %q", KeyPort, cfg.Port))
	}
	ttl := readInt(v, KeySessionTTLHours, 1, &errs)
	cfg.SessionTTL = time.Duration(ttl) * time.Hour
	purge := readInt(v, KeySessionPurgeMinutes, 0, &errs)
	cfg.SessionPurgeInterval = time.Duration(purge) * time.Minute
	poll := readInt(v, KeyOutboxPollMillis, 1, &errs)
	cfg.OutboxPollInterval = time.Duration(poll) * time.Millisecond
	cfg.DefaultPageSize = readInt(v, KeyDefaultPageSize, 1, &errs)
	cfg.MaxPageSize = readInt(v, KeyMaxPageSize, 1, &errs)

	if cfg.MaxPageSize < cfg.DefaultPageSize {
		errs = append(errs, fmt.Errorf("%s must not be smaller than %s", KeyMaxPageSize, KeyDefaultPageSize))
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		errs = append(errs, fmt.Errorf("%s is required when %s is set", KeyKafkaTopic, KeyKafkaBrokers))
	}
	if (cfg.BootstrapAdminUsername == "") != (cfg.BootstrapAdminPassword == "") {
		errs = append(errs, fmt.Errorf("%s and %s must be set together", KeyBootstrapAdminUsername, KeyBootstrapAdminPassword))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr is the listen address of the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// UsesPostgres reports whether persistent adapters should be wired.
func (c Config) UsesPostgres() bool {
	return c.PostgresDSN != ""
}

// RelayEnabled reports whether outbox messages should be shipped to Kafka.
func (c Config) RelayEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyKafkaTopic, "bookstore.orders")
	v.SetDefault(KeyTemporalAddress, client.DefaultHostPort)
	v.SetDefault(KeyTemporalNamespace, client.DefaultNamespace)
	v.SetDefault(KeySessionTTLHours, 24)
	v.SetDefault(KeySessionPurgeMinutes, 0)
	v.SetDefault(KeyOutboxPollMillis, 1000)
	v.SetDefault(KeyDefaultPageSize, pagination.DefaultSize)
	v.SetDefault(KeyMaxPageSize, pagination.MaxSize)
}

func readInt(v *viper.Viper, key string, min int, errs *[]error) int {
	raw := strings.TrimSpace(v.GetString(key))
	value, err := strconv.Atoi(raw)
	if err != nil || value < min {
		*errs = append(*errs, fmt.Errorf("%s must be an integer >= %d, got %q", key, min, raw))
		return 0
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
