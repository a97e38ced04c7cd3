package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime configuration parameters
type Config struct {
	ListenAddr         string   `json:"listen_addr"`
	ConcurrentWorkers  int      `json:"concurrent_workers"`
	RequestTimeoutMs   int      `json:"request_timeout_ms"`
	BulkTimeoutMs      int      `json:"bulk_timeout_ms"`
	ExportDir          string   `json:"export_dir"`
	ExportFormat       string   `json:"export_format"`
	MetricsPath        string   `json:"metrics_path"`
	CacheTTLMinutes    *int     `json:"cache_ttl_minutes"`
	SkipArchiveLookup  bool     `json:"skip_archive_lookup"`
	RegistrarQuotes    bool     `json:"registrar_quotes"`
	RateLimitPerSecond float64  `json:"rate_limit_per_second"`
	DefaultTLDs        []string `json:"default_tlds"`
	DefaultMaxCheck    int      `json:"default_max_check"`
	DefaultMinDR       float64  `json:"default_min_dr"`
	TrafficBaseURL     string   `json:"traffic_base_url"`
	ArchiveBaseURL     string   `json:"archive_base_url"`
	BulkBaseURL        string   `json:"bulk_base_url"`
	RegistrarBaseURL   string   `json:"registrar_base_url"`
	LogLevel           string   `json:"log_level"`

	// Secrets come from the environment only
	RapidAPIKey string `json:"-"`
	C99APIKey   string `json:"-"`
}

// LoadConfig reads and validates configuration from a JSON file. A missing
// file yields the defaults; environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logrus.Infof("Config file %s not found, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	default:
		defer file.Close()
		decoder := json.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env: %v", err)
	}
	applyEnv(&cfg)

	// Apply defaults for missing values
	applyDefaults(&cfg)

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnv copies secrets and overrides from the process environment
func applyEnv(cfg *Config) {
	cfg.RapidAPIKey = os.Getenv("RAPIDAPI_KEY")
	cfg.C99APIKey = os.Getenv("C99_API_KEY")
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":5000"
	}
	if cfg.ConcurrentWorkers == 0 {
		cfg.ConcurrentWorkers = 20
	}
	if cfg.RequestTimeoutMs == 0 {
		cfg.RequestTimeoutMs = 15000
	}
	if cfg.BulkTimeoutMs == 0 {
		cfg.BulkTimeoutMs = 30000
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "static"
	}
	if cfg.ExportFormat == "" {
		cfg.ExportFormat = "xlsx"
	}
	cfg.ExportFormat = strings.ToLower(cfg.ExportFormat)
	if cfg.CacheTTLMinutes == nil {
		ttl := 1440
		cfg.CacheTTLMinutes = &ttl
	}
	if len(cfg.DefaultTLDs) == 0 {
		cfg.DefaultTLDs = []string{"sa.com", "ru.com", "in.com", "za.com", "br.com"}
	}
	if cfg.DefaultMaxCheck == 0 {
		cfg.DefaultMaxCheck = 50
	}
	if cfg.DefaultMinDR == 0 {
		cfg.DefaultMinDR = 10
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// validate checks that values are sensible
func validate(cfg *Config) error {
	if cfg.ConcurrentWorkers < 1 {
		return fmt.Errorf("concurrent_workers must be >= 1")
	}
	if cfg.RequestTimeoutMs < 1000 {
		return fmt.Errorf("request_timeout_ms must be >= 1000")
	}
	if cfg.BulkTimeoutMs < 1000 {
		return fmt.Errorf("bulk_timeout_ms must be >= 1000")
	}
	if cfg.ExportFormat != "xlsx" && cfg.ExportFormat != "sqlite" {
		return fmt.Errorf("export_format must be xlsx or sqlite")
	}
	if *cfg.CacheTTLMinutes < 0 {
		return fmt.Errorf("cache_ttl_minutes must be >= 0")
	}
	if cfg.RateLimitPerSecond < 0 {
		return fmt.Errorf("rate_limit_per_second must be >= 0")
	}
	if cfg.DefaultMaxCheck < 1 {
		return fmt.Errorf("default_max_check must be >= 1")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// RequestTimeout returns the per-adapter call timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// BulkTimeout returns the enumeration provider timeout
func (c *Config) BulkTimeout() time.Duration {
	return time.Duration(c.BulkTimeoutMs) * time.Millisecond
}

// CacheTTL returns the lookup cache lifetime; zero disables caching
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(*c.CacheTTLMinutes) * time.Minute
}
