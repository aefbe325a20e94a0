package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ExchangeRateAPI struct {
	BaseURL string `mapstructure:"base_url"`
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type Rates struct {
	Bases []string `mapstructure:"bases"`
}

type Cache struct {
	Path        string  `mapstructure:"path"`
	MaxAgeHours float64 `mapstructure:"max_age_hours"`
	MaxItems    int64   `mapstructure:"max_items"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	ExchangeRateAPI ExchangeRateAPI `mapstructure:"exchange_rate_api"`
	HTTPClient      HTTPClient      `mapstructure:"http_client"`
	Rates           Rates           `mapstructure:"rates"`
	Cache           Cache           `mapstructure:"cache"`
	Logging         Logging         `mapstructure:"logging"`
}

// Options point Init at the files to load. Empty paths fall back to the defaults below.
type Options struct {
	ConfigFile string
	EnvFile    string
}

const (
	defaultConfigFile = "config.yaml"
	defaultEnvFile    = ".env"
)

// Init loads configuration from an optional .env file, an optional yaml file and the environment.
func Init(opts Options) (*AppConfig, error) {
	var cfg AppConfig

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = defaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		// .env is optional unless explicitly requested
		if opts.EnvFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = defaultConfigFile
	}
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	if _, statErr := os.Stat(configFile); statErr == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else if opts.ConfigFile != "" {
		return nil, fmt.Errorf("error reading config file: %w", statErr)
	}

	v.SetDefault("exchange_rate_api.base_url", "https://open.er-api.com/v6")
	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("rates.bases", []string{"USD", "EUR", "GBP", "RUB"})
	v.SetDefault("cache.path", "currency_rates.json")
	v.SetDefault("cache.max_age_hours", 24)
	v.SetDefault("cache.max_items", 16)
	v.SetDefault("logging.level", "warn")

	// exchange rate api env vars
	_ = v.BindEnv("exchange_rate_api.base_url", "EXCHANGE_RATE_API_BASE_URL")

	// http client env vars
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")

	// rates / cache env vars
	_ = v.BindEnv("rates.bases", "RATES_BASES")
	_ = v.BindEnv("cache.path", "CACHE_PATH")
	_ = v.BindEnv("cache.max_age_hours", "CACHE_MAX_AGE_HOURS")
	_ = v.BindEnv("cache.max_items", "CACHE_MAX_ITEMS")

	_ = v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *AppConfig) normalize() error {
	bases := make([]string, 0, len(cfg.Rates.Bases))
	seen := make(map[string]struct{}, len(cfg.Rates.Bases))
	for _, b := range cfg.Rates.Bases {
		code := strings.ToUpper(strings.TrimSpace(b))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		bases = append(bases, code)
	}
	if len(bases) == 0 {
		return errors.New("at least one base currency must be configured")
	}
	cfg.Rates.Bases = bases

	if cfg.Cache.MaxAgeHours <= 0 {
		return fmt.Errorf("cache max age must be positive, got %v", cfg.Cache.MaxAgeHours)
	}
	if strings.TrimSpace(cfg.Cache.Path) == "" {
		return errors.New("cache path is required")
	}
	if cfg.Cache.MaxItems <= 0 {
		cfg.Cache.MaxItems = 16
	}
	cfg.ExchangeRateAPI.BaseURL = strings.TrimSuffix(cfg.ExchangeRateAPI.BaseURL, "/")
	return nil
}
