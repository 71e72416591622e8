// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

// DefaultPath is read when no config file is given; it may be absent.
const DefaultPath = "config.yaml"

const envPrefix = "TOPWORKPLACES_"

type Config struct {
	API struct {
		BaseURL   string `yaml:"baseURL"`
		Timeout   int    `yaml:"timeout"` // seconds
		UserAgent string `yaml:"userAgent"`
	} `yaml:"api"`

	RateLimit struct {
		RequestsPerSecond int `yaml:"requestsPerSecond"`
		Burst             int `yaml:"burst"`
	} `yaml:"rateLimit"`

	// Concurrency bounds the workplace lookups in flight. 1 keeps them sequential.
	Concurrency int `yaml:"concurrency"`

	Output struct {
		TopN         int  `yaml:"topN"`
		Indent       int  `yaml:"indent"`
		IncludeStats bool `yaml:"includeStats"`
		ShowProgress bool `yaml:"showProgress"`
	} `yaml:"output"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

// Load builds the configuration from, in increasing precedence: defaults,
// the YAML file, a .env file in the working directory, and the process
// environment. An empty path reads DefaultPath if it exists.
func Load(path string) (*Config, error) {
	var cfg Config

	required := path != ""
	if !required {
		path = DefaultPath
	}
	if err := loadFile(path, &cfg); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("error decoding config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(envPrefix + "BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"TIMEOUT", &cfg.API.Timeout},
		{"TOP_N", &cfg.Output.TopN},
		{"CONCURRENCY", &cfg.Concurrency},
		{"REQUESTS_PER_SECOND", &cfg.RateLimit.RequestsPerSecond},
	}
	for _, e := range ints {
		v := os.Getenv(envPrefix + e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s must be an integer: %w", envPrefix, e.name, err)
		}
		*e.dst = n
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:3000"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "TopWorkplaces/1.0"
	}
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 10
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 5
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 1
	}
	if cfg.Output.TopN == 0 {
		cfg.Output.TopN = 3
	}
	if cfg.Output.Indent == 0 {
		cfg.Output.Indent = 2
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Timeout returns the per-request client timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.Timeout) * time.Second
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("baseURL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("baseURL must use http or https, got %q", c.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("baseURL must include a host, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("requestsPerSecond must be positive")
	}
	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("burst must be positive")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.Output.TopN <= 0 {
		return fmt.Errorf("topN must be positive")
	}
	if c.Output.Indent < 0 || c.Output.Indent > 8 {
		return fmt.Errorf("indent must be between 0 and 8")
	}
	if _, err := zapcore.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}
