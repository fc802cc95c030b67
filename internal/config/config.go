package config

import (
	"fmt"
	"time"

	"github.com/curelink/curelink/pkg/constants"
)

// Config holds the application's configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Vault      VaultConfig      `mapstructure:"vault"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Quota      QuotaConfig      `mapstructure:"quota"`
	Cookie     CookieConfig     `mapstructure:"cookie"`
	Scholar    ScholarConfig    `mapstructure:"scholar"`
	Log        LogConfig        `mapstructure:"log"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout    int    `mapstructure:"write_timeout"` // in seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`

	// CORSAllowOrigins lists the frontend origins allowed to call the
	// API with credentials. Cookies require explicit origins, not "*".
	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxConns        int    `mapstructure:"max_conns"`
	MinConns        int    `mapstructure:"min_conns"`
	MaxConnLifetime int    `mapstructure:"max_conn_lifetime"`  // in minutes
	MaxConnIdleTime int    `mapstructure:"max_conn_idle_time"` // in minutes
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  int    `mapstructure:"dial_timeout"`  // in seconds
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	MountPath string `mapstructure:"mount_path"`
	SaltPath  string `mapstructure:"salt_path"`
}

type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	AuditTopic   string        `mapstructure:"audit_topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Enabled reports whether audit events should be produced to Kafka.
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// QuotaConfig configures the anonymous search quota subsystem.
type QuotaConfig struct {
	// Limit is the search quota shared by both admission signals.
	Limit int `mapstructure:"limit"`

	// OriginSalt is the secret salt for network-address hashing. Loaded
	// from Vault when vault.enabled is set; otherwise from here / env.
	OriginSalt string `mapstructure:"origin_salt"`

	// OriginTTL bounds retention of origin counters. Zero keeps them
	// forever, matching historical behavior.
	OriginTTL time.Duration `mapstructure:"origin_ttl"`

	// FailurePolicy selects fail-open or fail-closed degradation when a
	// signal's store is unreachable.
	FailurePolicy string `mapstructure:"failure_policy"`

	// StoreTimeout bounds each individual store call.
	StoreTimeout time.Duration `mapstructure:"store_timeout"`
}

// Policy returns the typed failure policy, defaulting to fail-open.
func (c *QuotaConfig) Policy() constants.FailurePolicy {
	if c.FailurePolicy == string(constants.FailClosed) {
		return constants.FailClosed
	}
	return constants.FailOpen
}

// CookieConfig configures the anonymous identity cookie.
type CookieConfig struct {
	Name    string `mapstructure:"name"`
	Profile string `mapstructure:"profile"`
}

type ScholarConfig struct {
	// Providers lists base URLs of the external scholarly-search services.
	Providers []ProviderConfig `mapstructure:"providers"`

	// RequestTimeout bounds each outbound provider call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// CacheTTL is how long merged provider results stay cached per query.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type ProviderConfig struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
}

type MonitoringConfig struct {
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}

// Validate checks essential configuration values.
func (c *Config) Validate() error {
	if c.Quota.Limit <= 0 {
		return fmt.Errorf("quota.limit must be positive, got %d", c.Quota.Limit)
	}
	switch constants.CookieProfile(c.Cookie.Profile) {
	case constants.CookieProfileAuto,
		constants.CookieProfileLocalHTTP,
		constants.CookieProfileSameOriginHTTPS,
		constants.CookieProfileCrossOriginHTTPS:
	default:
		return fmt.Errorf("cookie.profile %q is not a known deployment profile", c.Cookie.Profile)
	}
	switch constants.FailurePolicy(c.Quota.FailurePolicy) {
	case constants.FailOpen, constants.FailClosed:
	default:
		return fmt.Errorf("quota.failure_policy %q must be %q or %q",
			c.Quota.FailurePolicy, constants.FailOpen, constants.FailClosed)
	}
	if c.Vault.Enabled && c.Vault.Address == "" {
		return fmt.Errorf("vault.address is required when vault is enabled")
	}
	return nil
}
