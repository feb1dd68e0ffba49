package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Timeline TimelineConfig `mapstructure:"timeline"`
	Feeds    FeedsConfig    `mapstructure:"feeds"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Fanout   FanoutConfig   `mapstructure:"fanout"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Nats     NatsConfig     `mapstructure:"nats"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// ConnString builds a postgres connection string from the config.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

type TimelineConfig struct {
	Endpoints      []string      `mapstructure:"endpoints"`
	Accounts       []string      `mapstructure:"accounts"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	AccountDelay   time.Duration `mapstructure:"account_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	ItemLimit      int           `mapstructure:"item_limit"`
	HealthInterval time.Duration `mapstructure:"health_interval"`
}

type FeedsConfig struct {
	URLs           []string      `mapstructure:"urls"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	ItemLimit      int           `mapstructure:"item_limit"`
}

type PipelineConfig struct {
	IngestQueueSize int           `mapstructure:"ingest_queue_size"`
	DistQueueSize   int           `mapstructure:"dist_queue_size"`
	Retention       time.Duration `mapstructure:"retention"`
	PurgeInterval   time.Duration `mapstructure:"purge_interval"`
}

type FanoutConfig struct {
	KeepAliveInterval time.Duration `mapstructure:"keep_alive_interval"`
}

type RedisConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	URL               string        `mapstructure:"url"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
}

type NatsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "polyfloat")
	v.SetDefault("database.password", "polyfloat")
	v.SetDefault("database.database", "polyfloat_news")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("timeline.endpoints", []string{
		"http://localhost:8081",
		"http://localhost:8082",
		"http://localhost:8083",
	})
	v.SetDefault("timeline.sweep_interval", "60s")
	v.SetDefault("timeline.account_delay", "1500ms")
	v.SetDefault("timeline.request_timeout", "10s")
	v.SetDefault("timeline.max_retries", 3)
	v.SetDefault("timeline.item_limit", 20)
	v.SetDefault("timeline.health_interval", "30s")
	v.SetDefault("feeds.sweep_interval", "120s")
	v.SetDefault("feeds.request_timeout", "10s")
	v.SetDefault("feeds.max_retries", 3)
	v.SetDefault("feeds.item_limit", 20)
	v.SetDefault("pipeline.ingest_queue_size", 10000)
	v.SetDefault("pipeline.dist_queue_size", 10000)
	v.SetDefault("pipeline.retention", "168h")
	v.SetDefault("pipeline.purge_interval", "24h")
	v.SetDefault("fanout.keep_alive_interval", "30s")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("redis.rate_limit_requests", 600)
	v.SetDefault("redis.rate_limit_window", "1m")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/polyfloat/newsd")
	}

	// Environment variables override
	v.SetEnvPrefix("NEWSD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Pipeline.IngestQueueSize <= 0 {
		return fmt.Errorf("pipeline.ingest_queue_size must be positive, got %d", c.Pipeline.IngestQueueSize)
	}
	if c.Pipeline.DistQueueSize <= 0 {
		return fmt.Errorf("pipeline.dist_queue_size must be positive, got %d", c.Pipeline.DistQueueSize)
	}
	if len(c.Timeline.Endpoints) == 0 {
		return fmt.Errorf("timeline.endpoints must not be empty")
	}
	return nil
}
