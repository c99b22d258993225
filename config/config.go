package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log      Logger   `mapstructure:"logger"`
	API      API      `mapstructure:"api"`
	Cache    Cache    `mapstructure:"cache"`
	Analysis Analysis `mapstructure:"analysis"`
	Fetcher  Fetcher  `mapstructure:"fetcher"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type API struct {
	Port            int           `mapstructure:"port"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
	RateLimitExpire time.Duration `mapstructure:"rate_limit_expire"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type Analysis struct {
	// AllowSyntheticData enables mock fallback series when parsed input is too
	// short. Results built this way are tagged synthetic_fallback.
	AllowSyntheticData bool          `mapstructure:"allow_synthetic_data"`
	RandomSeed         int64         `mapstructure:"random_seed"`
	MaxConcurrency     int           `mapstructure:"max_concurrency"`
	TimeoutDuration    time.Duration `mapstructure:"timeout_duration"`
}

type Fetcher struct {
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
	UserAgent       string        `mapstructure:"user_agent"`
}

func Load() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Reports go to stdout, keep config noise on stderr.
		fmt.Fprintln(os.Stderr, "No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.rate_limit", 10)
	viper.SetDefault("api.rate_burst", 30)
	viper.SetDefault("api.rate_limit_expire", 3*time.Minute)
	viper.SetDefault("cache.default_expiration", 15*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 30*time.Minute)
	viper.SetDefault("analysis.allow_synthetic_data", false)
	viper.SetDefault("analysis.random_seed", 42)
	viper.SetDefault("analysis.max_concurrency", 4)
	viper.SetDefault("analysis.timeout_duration", 30*time.Second)
	viper.SetDefault("fetcher.timeout_duration", 15*time.Second)
	viper.SetDefault("fetcher.user_agent", "golang-stock-analysis/1.0")
}
