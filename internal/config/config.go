// Package config provides configuration management for the catalog service.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SSL mode constants for database connections.
const (
	// SSLModeDisable disables SSL (use only for local development).
	SSLModeDisable = "disable"
	// SSLModeRequire requires SSL but does not verify certificates.
	SSLModeRequire = "require"
	// SSLModeVerifyCA verifies the server certificate against a CA.
	SSLModeVerifyCA = "verify-ca"
	// SSLModeVerifyFull verifies the server certificate and hostname.
	SSLModeVerifyFull = "verify-full"
)

// Config holds all configuration for the catalog service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Cache contains Redis entity cache settings.
	Cache CacheConfig `mapstructure:"cache"`
	// Kafka contains Kafka publisher settings for book events.
	Kafka KafkaConfig `mapstructure:"kafka"`
	// Pagination contains list endpoint paging defaults.
	Pagination PaginationConfig `mapstructure:"pagination"`
	// Upload contains bulk upload settings.
	Upload UploadConfig `mapstructure:"upload"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxUploadBytes caps the size of bulk upload request bodies.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname.
	Host string `mapstructure:"host"`
	// Port is the PostgreSQL server port (default: 5432).
	Port int `mapstructure:"port"`
	// User is the database username.
	User string `mapstructure:"user"`
	// Password is the database password (use environment variable in production).
	Password string `mapstructure:"password"`
	// Name is the database name.
	Name string `mapstructure:"name"`
	// SSLMode controls SSL connection security (require, verify-ca, verify-full, disable).
	// Default is "require" for production security. Use "disable" only for local development.
	SSLMode string `mapstructure:"ssl_mode"`
	// MaxConns is the maximum number of connections in the pool (default: 25).
	MaxConns int32 `mapstructure:"max_conns"`
	// MinConns is the minimum number of connections to keep open (default: 5).
	MinConns int32 `mapstructure:"min_conns"`
	// MaxConnLifetime is the maximum lifetime of a connection before it's closed.
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// MaxConnIdleTime is the maximum time a connection can be idle before it's closed.
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	// HealthCheckPeriod is the interval between health checks of idle connections.
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	// ConnectTimeout is the maximum time to wait for a connection.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// MigrationPath is the path to migration files (relative or absolute).
	MigrationPath string `mapstructure:"migration_path"`
	// MigrationAutoRun enables automatic migration on startup (default: false).
	MigrationAutoRun bool `mapstructure:"migration_auto_run"`
	// StatementCacheCapacity is the size of the prepared statement cache.
	StatementCacheCapacity int `mapstructure:"statement_cache_capacity"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr, file path).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
}

// CacheConfig holds Redis entity cache settings.
type CacheConfig struct {
	// Enabled controls whether the read-through cache is active.
	// When disabled the service reads straight from PostgreSQL.
	Enabled bool `mapstructure:"enabled"`
	// Address is the Redis server address.
	Address string `mapstructure:"address"`
	// Password is the Redis password (empty for no auth).
	Password string `mapstructure:"password"`
	// DB is the Redis database index.
	DB int `mapstructure:"db"`
	// TTL is how long cached entities live before expiring.
	TTL time.Duration `mapstructure:"ttl"`
	// DialTimeout is the timeout for establishing a connection.
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// KafkaConfig holds Kafka publisher settings for book events.
type KafkaConfig struct {
	// Enabled controls whether Kafka publishing is active.
	Enabled bool `mapstructure:"enabled"`
	// Brokers is the list of Kafka broker addresses.
	Brokers []string `mapstructure:"brokers"`
	// Topic is the Kafka topic to publish book events to.
	Topic string `mapstructure:"topic"`
	// BatchSize is the maximum number of messages to batch before sending.
	BatchSize int `mapstructure:"batch_size"`
	// BatchTimeout is the maximum time to wait for a batch to fill before sending.
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	// WriteTimeout is the timeout for a single publish.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// PaginationConfig holds list endpoint paging defaults.
type PaginationConfig struct {
	// DefaultPage is the zero-based page used when a list request omits one (default: 0).
	DefaultPage int `mapstructure:"default_page"`
	// DefaultSize is the page size used when a list request omits one (default: 10).
	DefaultSize int `mapstructure:"default_size"`
	// DefaultSort is the sort expression used when a list request omits one (default: "id,asc").
	DefaultSort string `mapstructure:"default_sort"`
}

// UploadConfig holds bulk upload settings.
type UploadConfig struct {
	// BatchSize is the number of parsed items flushed per transaction (default: 50).
	BatchSize int `mapstructure:"batch_size"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	params := url.Values{}
	params.Set("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		params.Set("connect_timeout", fmt.Sprintf("%d", int(c.ConnectTimeout.Seconds())))
	}
	if c.StatementCacheCapacity > 0 {
		params.Set("statement_cache_capacity", fmt.Sprintf("%d", c.StatementCacheCapacity))
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		params.Encode(),
	)
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/catalog-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_upload_bytes", 32<<20)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "catalog")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "catalog_service")
	// Default to "require" for production security. Use CATALOG_DATABASE_SSL_MODE=disable for local development.
	v.SetDefault("database.ssl_mode", SSLModeRequire)
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
	v.SetDefault("database.health_check_period", "30s")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.migration_path", "migrations")
	v.SetDefault("database.migration_auto_run", false)
	v.SetDefault("database.statement_cache_capacity", 512)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.dial_timeout", "5s")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "catalog.books")
	v.SetDefault("kafka.batch_size", 100)
	v.SetDefault("kafka.batch_timeout", "10ms")
	v.SetDefault("kafka.write_timeout", "5s")

	// Pagination defaults
	v.SetDefault("pagination.default_page", 0)
	v.SetDefault("pagination.default_size", 10)
	v.SetDefault("pagination.default_sort", "id,asc")

	// Upload defaults
	v.SetDefault("upload.batch_size", 50)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate server ports
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns (%d) must be >= min_conns (%d)", c.Database.MaxConns, c.Database.MinConns)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	// Validate cache config
	if c.Cache.Enabled && c.Cache.Address == "" {
		return fmt.Errorf("cache address is required when cache is enabled")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}

	// Validate kafka config
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers are required when kafka is enabled")
	}
	if c.Kafka.Enabled && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic is required when kafka is enabled")
	}

	// Validate pagination config
	if c.Pagination.DefaultPage < 0 {
		return fmt.Errorf("pagination default_page must be >= 0")
	}
	if c.Pagination.DefaultSize < 1 {
		return fmt.Errorf("pagination default_size must be >= 1")
	}
	if c.Pagination.DefaultSort == "" {
		return fmt.Errorf("pagination default_sort is required")
	}

	// Validate upload config
	if c.Upload.BatchSize < 1 {
		return fmt.Errorf("upload batch_size must be >= 1")
	}

	return nil
}
