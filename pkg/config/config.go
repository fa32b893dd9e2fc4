package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server     ServerConfig
	SQLite     SQLiteConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Comparison ComparisonConfig
	Fetch      FetchConfig
	RateLimit  RateLimitConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    int
	WriteTimeout   int
	BodyLimit      int
	AllowedOrigins []string
	Development    bool
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	Size   int
	TTLSec int
}

// ComparisonConfig holds the engine defaults used when a request omits a parameter.
type ComparisonConfig struct {
	DirectoryDepth   int
	MinSimilarity    float64
	TopKeywordsCount int
	SortBy           string
	StatusFilter     string
}

type FetchConfig struct {
	TimeoutSec       int
	MaxAttempts      int
	FailureThreshold uint32
}

type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/seo-compare")

	return load(v)
}

// LoadFile reads configuration from an explicit path instead of the search paths.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("SEO_COMPARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.bodyLimit", 52428800)
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("server.development", false)

	v.SetDefault("sqlite.path", "./data/seo.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.ttlSec", 900)

	v.SetDefault("comparison.directoryDepth", 4)
	v.SetDefault("comparison.minSimilarity", 0.3)
	v.SetDefault("comparison.topKeywordsCount", 20)
	v.SetDefault("comparison.sortBy", "similarity")
	v.SetDefault("comparison.statusFilter", "all")

	v.SetDefault("fetch.timeoutSec", 15)
	v.SetDefault("fetch.maxAttempts", 3)
	v.SetDefault("fetch.failureThreshold", 5)

	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.burst", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")
}

// Validate checks the enumerated ranges of the comparison defaults.
func (c *Config) Validate() error {
	if err := ValidateDepth(c.Comparison.DirectoryDepth); err != nil {
		return err
	}
	if err := ValidateMinSimilarity(c.Comparison.MinSimilarity); err != nil {
		return err
	}
	if err := ValidateTopKeywordsCount(c.Comparison.TopKeywordsCount); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	return nil
}

func ValidateDepth(depth int) error {
	if depth < 1 || depth > 5 {
		return fmt.Errorf("%w: directoryDepth must be within 1..5, got %d", ErrInvalidConfig, depth)
	}
	return nil
}

// ValidateMinSimilarity accepts values in [0,1] on the 0.05 grid.
func ValidateMinSimilarity(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: minSimilarity must be within [0,1], got %v", ErrInvalidConfig, v)
	}
	steps := v / 0.05
	if math.Abs(steps-math.Round(steps)) > 1e-6 {
		return fmt.Errorf("%w: minSimilarity must be a multiple of 0.05, got %v", ErrInvalidConfig, v)
	}
	return nil
}

func ValidateTopKeywordsCount(n int) error {
	switch n {
	case 10, 20, 30, 50:
		return nil
	}
	return fmt.Errorf("%w: topKeywordsCount must be one of 10, 20, 30, 50, got %d", ErrInvalidConfig, n)
}
