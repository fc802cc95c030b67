package config

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/curelink/curelink/pkg/constants"
	"github.com/curelink/curelink/pkg/errors"
	"github.com/curelink/curelink/pkg/logger"
)

// LoadConfig loads the configuration from file and environment variables.
// Environment variables use the CURELINK_ prefix with dots replaced by
// underscores, e.g. CURELINK_QUOTA_LIMIT.
func LoadConfig(log logger.Logger) (*Config, error) {
	v := newViper()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Info(context.Background(), "no config file found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrInvalidRequest("failed to unmarshal config").WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.shutdown_timeout", 10)
	v.SetDefault("server.cors_allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("vault.mount_path", "secret")
	v.SetDefault("vault.salt_path", "curelink/origin-salt")
	v.SetDefault("kafka.audit_topic", "curelink.audit")
	v.SetDefault("kafka.batch_timeout", time.Second)
	v.SetDefault("kafka.write_timeout", 10*time.Second)
	v.SetDefault("quota.limit", constants.DefaultSearchQuota)
	v.SetDefault("quota.failure_policy", string(constants.FailOpen))
	v.SetDefault("quota.store_timeout", 2*time.Second)
	v.SetDefault("cookie.name", constants.DefaultAnonymousCookieName)
	v.SetDefault("cookie.profile", string(constants.CookieProfileAuto))
	v.SetDefault("scholar.request_timeout", 10*time.Second)
	v.SetDefault("scholar.cache_ttl", 5*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("tracing.service_name", "curelink-backend")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/curelink/")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CURELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// QuotaLimit exposes a hot-reloadable quota limit. Only the limit is
// reloaded at runtime; everything else requires a restart.
type QuotaLimit struct {
	limit atomic.Int64
}

// NewQuotaLimit seeds the reloadable limit from loaded configuration.
func NewQuotaLimit(initial int) *QuotaLimit {
	q := &QuotaLimit{}
	q.limit.Store(int64(initial))
	return q
}

// Get returns the current quota limit.
func (q *QuotaLimit) Get() int {
	return int(q.limit.Load())
}

// Set replaces the current quota limit.
func (q *QuotaLimit) Set(limit int) {
	q.limit.Store(int64(limit))
}

// WatchQuotaLimit re-reads quota.limit when the config file changes on disk.
// Invalid values are ignored so a bad edit cannot zero out admission.
func WatchQuotaLimit(q *QuotaLimit, log logger.Logger) {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		// No file to watch; env-only deployments skip hot reload.
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		limit := v.GetInt("quota.limit")
		if limit <= 0 {
			log.Warn(context.Background(), "ignoring invalid quota.limit from config reload",
				logger.Int("limit", limit),
				logger.String("file", e.Name),
			)
			return
		}
		q.Set(limit)
		log.Info(context.Background(), "quota limit reloaded",
			logger.Int("limit", limit),
			logger.String("file", e.Name),
		)
	})
	v.WatchConfig()
}
