package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all provider requests.
const DefaultUserAgent = "subseek/1.0 (+https://github.com/subseek/subseek)"

const (
	defaultClientTimeout    = 30 * time.Second
	minClientTimeout        = 15 * time.Second
	maxClientTimeout        = 30 * time.Second
	defaultMaxDownloadBytes = 10 << 20
	defaultRetryAttempts    = 3
	defaultBackoffUnit      = time.Second
)

// ProviderConfig holds the settings shared by every subtitle provider section.
type ProviderConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BaseURL        string `mapstructure:"base_url"`
	MinQueryLength int    `mapstructure:"min_query_length"`
	InsecureTLS    bool   `mapstructure:"insecure_tls"`
}

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s"
	UserAgent             string `mapstructure:"user_agent"`
	MaxDownloadBytes      int64  `mapstructure:"max_download_bytes"`
	LogLevel              string `mapstructure:"log_level"`
	Retry                 struct {
		MaxAttempts int    `mapstructure:"max_attempts"`
		BackoffUnit string `mapstructure:"backoff_unit"`
	} `mapstructure:"retry"`
	Providers struct {
		Assrt struct {
			ProviderConfig `mapstructure:",squash"`
			Token          string `mapstructure:"token"`
		} `mapstructure:"assrt"`
		OpenSubtitles struct {
			ProviderConfig `mapstructure:",squash"`
			APIKey         string   `mapstructure:"api_key"`
			UserToken      string   `mapstructure:"user_token"`
			Languages      []string `mapstructure:"languages"`
		} `mapstructure:"opensubtitles"`
	} `mapstructure:"providers"`
	Server struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Cache struct {
		Provider      string `mapstructure:"provider"` // "memory" or "redis"
		Size          int    `mapstructure:"size"`
		TTL           string `mapstructure:"ttl"`
		RedisAddress  string `mapstructure:"redis_address"`
		RedisPassword string `mapstructure:"redis_password"`
		RedisDB       int    `mapstructure:"redis_db"`
	} `mapstructure:"cache"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	loadOnce     sync.Once
	loadErr      error
	logger       zerolog.Logger
)

func init() {
	// Console writer for human-readable output; the level is adjusted once the config is loaded.
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: false,
	}).With().Timestamp().Logger()
}

// LoadConfig reads config.yaml (from . or ./config) and APP_* environment variables.
// A missing config file is not an error; every key has a default.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("client_timeout", defaultClientTimeout.String())
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("proxy_connection_string", "")
	v.SetDefault("max_download_bytes", defaultMaxDownloadBytes)
	v.SetDefault("retry.max_attempts", defaultRetryAttempts)
	v.SetDefault("retry.backoff_unit", defaultBackoffUnit.String())

	v.SetDefault("providers.assrt.enabled", true)
	v.SetDefault("providers.assrt.base_url", "https://api.assrt.net/v1")
	v.SetDefault("providers.assrt.min_query_length", 3)
	v.SetDefault("providers.assrt.token", "")
	v.SetDefault("providers.opensubtitles.enabled", true)
	v.SetDefault("providers.opensubtitles.base_url", "https://api.opensubtitles.com/api/v1")
	v.SetDefault("providers.opensubtitles.min_query_length", 2)
	v.SetDefault("providers.opensubtitles.api_key", "")
	v.SetDefault("providers.opensubtitles.user_token", "")
	v.SetDefault("providers.opensubtitles.languages", []string{"zh-cn", "zh-tw", "ze", "en"})

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.address", "localhost")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 512)
	v.SetDefault("cache.ttl", "6h")
	v.SetDefault("cache.redis_address", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
}

// GetConfig loads the configuration on first use and configures the global log level from it.
// It exits the process if the config file exists but cannot be parsed.
func GetConfig() *Config {
	loadOnce.Do(func() {
		globalConfig, loadErr = LoadConfig()
		if loadErr != nil {
			logger.Fatal().Err(loadErr).Msg("Failed to load config")
		}
		ConfigureLogLevel(globalConfig.LogLevel)
		logger.Info().Msg("Configuration loaded successfully")
	})
	return globalConfig
}

// ConfigureLogLevel sets the global and logger level; invalid values fall back to info.
func ConfigureLogLevel(raw string) {
	level := zerolog.InfoLevel
	if raw != "" {
		if parsedLevel, err := zerolog.ParseLevel(raw); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", raw).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)
	logger.Debug().Str("level", level.String()).Msg("Logging configured")
}

func GetLogger() zerolog.Logger {
	return logger
}

// Timeout returns the per-call HTTP timeout. Unset or invalid values use 30s;
// explicit values are clamped into the 15s..30s window.
func (c *Config) Timeout() time.Duration {
	if c.ClientTimeout == "" {
		return defaultClientTimeout
	}
	parsed, err := time.ParseDuration(c.ClientTimeout)
	if err != nil {
		logger.Warn().Err(err).Str("timeout", c.ClientTimeout).Msg("Invalid timeout duration, using default 30s")
		return defaultClientTimeout
	}
	return min(max(parsed, minClientTimeout), maxClientTimeout)
}

// RetryAttempts returns the attempt budget, clamped to 2..3.
func (c *Config) RetryAttempts() int {
	if c.Retry.MaxAttempts == 0 {
		return defaultRetryAttempts
	}
	return min(max(c.Retry.MaxAttempts, 2), 3)
}

// BackoffUnit returns the per-attempt backoff step.
func (c *Config) BackoffUnit() time.Duration {
	if c.Retry.BackoffUnit == "" {
		return defaultBackoffUnit
	}
	parsed, err := time.ParseDuration(c.Retry.BackoffUnit)
	if err != nil || parsed < 0 {
		logger.Warn().Str("backoff_unit", c.Retry.BackoffUnit).Msg("Invalid backoff unit, using default 1s")
		return defaultBackoffUnit
	}
	return parsed
}

// DownloadLimit returns the maximum accepted subtitle payload size in bytes.
func (c *Config) DownloadLimit() int64 {
	if c.MaxDownloadBytes <= 0 {
		return defaultMaxDownloadBytes
	}
	return c.MaxDownloadBytes
}

// CacheTTL parses the cache TTL, defaulting to six hours.
func (c *Config) CacheTTL() time.Duration {
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || ttl <= 0 {
		return 6 * time.Hour
	}
	return ttl
}
