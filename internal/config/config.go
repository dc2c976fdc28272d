// Package config loads settings from defaults, an optional YAML file, a
// .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/petasbytes/weather-agent/internal/evaluation"
	"github.com/petasbytes/weather-agent/internal/provider"
	"github.com/petasbytes/weather-agent/tools"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config stores all configuration of the application.
type Config struct {
	Provider           string        `mapstructure:"provider"`
	Model              string        `mapstructure:"model"`
	BaseURL            string        `mapstructure:"base_url"`
	APIKey             string        `mapstructure:"api_key"`
	Weather            WeatherConfig `mapstructure:"weather"`
	TokenBudget        int           `mapstructure:"token_budget"`        // <= 0 sends the whole history
	MaxRounds          int           `mapstructure:"max_rounds"`          // > 0 overrides every persona's cap
	ResultsFile        string        `mapstructure:"results_file"`        // comparison CSV
	LogLevel           string        `mapstructure:"log_level"`           // zerolog level name
	CompareParallelism int           `mapstructure:"compare_parallelism"` // personas run at once in compare
	MaxTokens          int           `mapstructure:"max_tokens"`          // completion length cap
}

// WeatherConfig stores weatherapi.com access details.
type WeatherConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// envBindings maps each key to the variables that may set it, highest
// precedence first. The unprefixed names are the ones earlier deployments used.
var envBindings = map[string][]string{
	"provider":            {"AGT_PROVIDER"},
	"model":               {"AGT_MODEL", "GROQ_MODEL"},
	"base_url":            {"AGT_BASE_URL", "GROQ_BASE_URL"},
	"api_key":             {"AGT_API_KEY", "GROQ_API_KEY", "ANTHROPIC_API_KEY"},
	"weather.api_key":     {"AGT_WEATHER_API_KEY", "WEATHER_API_KEY"},
	"weather.base_url":    {"AGT_WEATHER_BASE_URL"},
	"token_budget":        {"AGT_TOKEN_BUDGET"},
	"max_rounds":          {"AGT_MAX_ROUNDS"},
	"results_file":        {"AGT_RESULTS_FILE"},
	"log_level":           {"AGT_LOG_LEVEL"},
	"compare_parallelism": {"AGT_COMPARE_PARALLELISM"},
	"max_tokens":          {"AGT_MAX_TOKENS"},
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile is an explicit YAML file; it must exist when set.
	ConfigFile string
	// DotEnvFile defaults to ".env"; a missing file is ignored.
	DotEnvFile string
}

// Load reads configuration.
func Load(opts Options) (*Config, error) {
	dotenv := opts.DotEnvFile
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := LoadDotEnv(dotenv); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("weather-agent")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", provider.NameOpenAI)
	v.SetDefault("model", "")
	v.SetDefault("base_url", "")
	v.SetDefault("api_key", "")
	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.base_url", tools.DefaultWeatherBaseURL)
	v.SetDefault("token_budget", 0)
	v.SetDefault("max_rounds", 0)
	v.SetDefault("results_file", evaluation.DefaultResultsFile)
	v.SetDefault("log_level", "warn")
	v.SetDefault("compare_parallelism", 3)
	v.SetDefault("max_tokens", provider.DefaultMaxTokens)
}

// LoadDotEnv copies KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return fmt.Errorf("set %s from %s: %w", name, path, err)
		}
	}
	return nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Provider {
	case provider.NameOpenAI, provider.NameAnthropic:
	default:
		errs = append(errs, fmt.Errorf("provider %q is not one of %s, %s", c.Provider, provider.NameOpenAI, provider.NameAnthropic))
	}
	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, errors.New("model is required (AGT_MODEL or GROQ_MODEL)"))
	}
	if strings.TrimSpace(c.APIKey) == "" {
		errs = append(errs, errors.New("api key is required (AGT_API_KEY, GROQ_API_KEY or ANTHROPIC_API_KEY)"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.CompareParallelism < 0 {
		errs = append(errs, errors.New("compare_parallelism must not be negative"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// ProviderOptions returns the endpoint settings.
func (c *Config) ProviderOptions() provider.Options {
	return provider.Options{
		Provider:  c.Provider,
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		MaxTokens: c.MaxTokens,
	}
}

// NewLogger builds the diagnostic logger at the configured level.
func (c *Config) NewLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
