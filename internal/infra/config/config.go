package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/ciderworks/internal/domain/fermentation"
	"github.com/yanqian/ciderworks/internal/domain/gravity"
	"github.com/yanqian/ciderworks/internal/domain/schedule"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Postgres     PostgresConfig     `yaml:"postgres"`
	Valkey       ValkeyConfig       `yaml:"valkey"`
	Fermentation FermentationConfig `yaml:"fermentation"`
	// Schedules overrides the built-in measurement policy per product type.
	Schedules schedule.Policies `yaml:"schedules"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// PostgresConfig contains DSN and pooling settings. An empty DSN selects the in-memory repository.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for the calibration store.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// FermentationConfig holds the organization-wide analysis defaults.
type FermentationConfig struct {
	Thresholds                 fermentation.StageThresholds `yaml:"thresholds"`
	Stall                      fermentation.StallSettings   `yaml:"stall"`
	TerminalConfirmation       time.Duration                `yaml:"terminalConfirmation"`
	HydrometerCalibrationTempC float64                      `yaml:"hydrometerCalibrationTempC"`
}

// Settings converts the section into analysis settings.
func (f FermentationConfig) Settings() fermentation.Settings {
	return fermentation.Settings{
		Thresholds:           f.Thresholds,
		Stall:                f.Stall,
		TerminalConfirmation: f.TerminalConfirmation,
	}
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		origins := make([]string, 0)
		for _, origin := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		cfg.HTTP.AllowedOrigins = origins
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Valkey.Addr = v
	}
	if v := os.Getenv("VALKEY_PREFIX"); v != "" {
		cfg.Valkey.Prefix = v
	}
	if v := os.Getenv("STALL_DETECTION_ENABLED"); v != "" {
		cfg.Fermentation.Stall.Enabled = parseBool(v)
	}
	if v := os.Getenv("STALL_MIN_DAYS"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Fermentation.Stall.MinDays = parsed
		}
	}
	if v := os.Getenv("STALL_SG_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Fermentation.Stall.SGThreshold = parsed
		}
	}
	if v := os.Getenv("TERMINAL_CONFIRMATION"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Fermentation.TerminalConfirmation = parsed
		}
	}
	if v := os.Getenv("HYDROMETER_CALIBRATION_TEMP_C"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Fermentation.HydrometerCalibrationTempC = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				// creating batches and measurements is not idempotent
				Exclude: []string{"/batches", "/measurements"},
			},
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Valkey: ValkeyConfig{
			Prefix: "ciderworks",
		},
		Fermentation: FermentationConfig{
			Thresholds:                 fermentation.DefaultStageThresholds(),
			Stall:                      fermentation.DefaultStallSettings(),
			TerminalConfirmation:       fermentation.DefaultTerminalConfirmation,
			HydrometerCalibrationTempC: gravity.DefaultCalibrationTempC,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.Postgres.MaxConns < 0 || c.Postgres.MinConns < 0 {
		return errors.New("postgres pool sizes cannot be negative")
	}
	if c.Postgres.MaxConns > 0 && c.Postgres.MinConns > c.Postgres.MaxConns {
		return errors.New("postgres.minConns cannot exceed postgres.maxConns")
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when valkey is enabled")
	}
	if err := c.Fermentation.Thresholds.Validate(); err != nil {
		return fmt.Errorf("fermentation.thresholds: %w", err)
	}
	if err := c.Fermentation.Stall.Validate(); err != nil {
		return fmt.Errorf("fermentation.stall: %w", err)
	}
	if c.Fermentation.TerminalConfirmation <= 0 {
		return errors.New("fermentation.terminalConfirmation must be positive")
	}
	calib := c.Fermentation.HydrometerCalibrationTempC
	if calib < gravity.MinTemperatureC || calib > gravity.MaxTemperatureC {
		return fmt.Errorf("fermentation.hydrometerCalibrationTempC must be within [%v, %v]", gravity.MinTemperatureC, gravity.MaxTemperatureC)
	}
	for productType, policy := range c.Schedules {
		if _, err := schedule.ParseProductType(string(productType)); err != nil {
			return fmt.Errorf("schedules: %w", err)
		}
		if policy.DefaultIntervalDays != nil && *policy.DefaultIntervalDays <= 0 {
			return fmt.Errorf("schedules.%s.defaultIntervalDays must be positive", productType)
		}
	}
	return nil
}
