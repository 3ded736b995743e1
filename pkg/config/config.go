// Package config loads application configuration from YAML files with
// environment-variable overrides. It provides typed structs for every
// subsystem (Server, Postgres, Kafka, Redis, Parser, Analytics, RateLimit,
// etc.).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Parser    ParserConfig    `yaml:"parser"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// AllowOrigins lists browser origins allowed to call the API. Empty
	// allows any origin.
	AllowOrigins []string `yaml:"allowOrigins"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	ParseEvents string `yaml:"parseEvents"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// ParserConfig bounds what the HTTP layer accepts before handing a query to
// the parser. The parser itself has no length limit.
type ParserConfig struct {
	MaxQueryBytes       int `yaml:"maxQueryBytes"`
	DefaultSuggestLimit int `yaml:"defaultSuggestLimit"`
	MaxSuggestLimit     int `yaml:"maxSuggestLimit"`
}

// AnalyticsConfig controls event buffering and snapshot persistence.
type AnalyticsConfig struct {
	Enabled          bool          `yaml:"enabled"`
	BufferSize       int           `yaml:"bufferSize"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
	TopN             int           `yaml:"topN"`
}

// RateLimitConfig bounds requests per client IP on the public endpoints.
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without reading files or the
// environment.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "jobquery",
			User:            "jobquery",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "jobquery-analytics",
			Topics: KafkaTopics{
				ParseEvents: "job-query-parsed",
			},
		},
		Redis: RedisConfig{
			Enabled:  true,
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 10 * time.Minute,
		},
		Parser: ParserConfig{
			MaxQueryBytes:       8 << 10,
			DefaultSuggestLimit: 8,
			MaxSuggestLimit:     50,
		},
		Analytics: AnalyticsConfig{
			Enabled:          true,
			BufferSize:       10000,
			SnapshotInterval: time.Minute,
			TopN:             10,
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 600,
			Window:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// Validate reports every setting that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Parser.MaxQueryBytes <= 0 {
		errs = append(errs, fmt.Errorf("parser.maxQueryBytes must be positive"))
	}
	if c.Parser.DefaultSuggestLimit <= 0 || c.Parser.DefaultSuggestLimit > c.Parser.MaxSuggestLimit {
		errs = append(errs, fmt.Errorf("parser.defaultSuggestLimit must be in 1..%d", c.Parser.MaxSuggestLimit))
	}
	if c.Analytics.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, fmt.Errorf("kafka.brokers required when analytics is enabled"))
	}
	if c.Analytics.TopN <= 0 {
		errs = append(errs, fmt.Errorf("analytics.topN must be positive"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, fmt.Errorf("rateLimit.requests and rateLimit.window must be positive when enabled"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyEnvOverrides reads JQ_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setInt("JQ_SERVER_PORT", &cfg.Server.Port)
	setString("JQ_POSTGRES_HOST", &cfg.Postgres.Host)
	setInt("JQ_POSTGRES_PORT", &cfg.Postgres.Port)
	setString("JQ_POSTGRES_DATABASE", &cfg.Postgres.Database)
	setString("JQ_POSTGRES_USER", &cfg.Postgres.User)
	setString("JQ_POSTGRES_PASSWORD", &cfg.Postgres.Password)
	setString("JQ_POSTGRES_SSLMODE", &cfg.Postgres.SSLMode)
	if v := os.Getenv("JQ_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	setString("JQ_KAFKA_TOPIC_PARSE_EVENTS", &cfg.Kafka.Topics.ParseEvents)
	setBool("JQ_REDIS_ENABLED", &cfg.Redis.Enabled)
	setString("JQ_REDIS_ADDR", &cfg.Redis.Addr)
	setString("JQ_REDIS_PASSWORD", &cfg.Redis.Password)
	setInt("JQ_PARSER_MAX_QUERY_BYTES", &cfg.Parser.MaxQueryBytes)
	setBool("JQ_ANALYTICS_ENABLED", &cfg.Analytics.Enabled)
	setBool("JQ_RATE_LIMIT_ENABLED", &cfg.RateLimit.Enabled)
	setInt("JQ_RATE_LIMIT_REQUESTS", &cfg.RateLimit.Requests)
	if v := os.Getenv("JQ_SERVER_ALLOW_ORIGINS"); v != "" {
		cfg.Server.AllowOrigins = strings.Split(v, ",")
	}
	setString("JQ_LOGGING_LEVEL", &cfg.Logging.Level)
	setString("JQ_LOGGING_FORMAT", &cfg.Logging.Format)
	setBool("JQ_METRICS_ENABLED", &cfg.Metrics.Enabled)
	setInt("JQ_METRICS_PORT", &cfg.Metrics.Port)
}
