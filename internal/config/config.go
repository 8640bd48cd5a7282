package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Search      SearchConfig      `yaml:"search"`
	Importer    ImporterConfig    `yaml:"importer"`
	SearchAgent SearchAgentConfig `yaml:"search_agent"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Retention   RetentionConfig   `yaml:"retention"`
	Logging     LoggingConfig     `yaml:"logging"`
	Timezone    string            `yaml:"timezone"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// ImporterConfig contains spreadsheet import settings
type ImporterConfig struct {
	MaxFileSizeMB     int  `yaml:"max_file_size_mb"`
	StrictMode        bool `yaml:"strict_mode"`
	HeaderScanRowsAIQ int  `yaml:"header_scan_rows_aiq"`
	HeaderScanRowsRed int  `yaml:"header_scan_rows_rediq"`
}

// SearchAgentConfig contains property search agent settings
type SearchAgentConfig struct {
	Mode                string `yaml:"mode"` // "mock" or "live"
	ListingsURL         string `yaml:"listings_url"`
	TimeoutSeconds      int    `yaml:"timeout_seconds"`
	UserAgent           string `yaml:"user_agent"`
	RecurringRunEnabled bool   `yaml:"recurring_run_enabled"`
	RecurringRunTime    string `yaml:"recurring_run_time"`
	WorkerPollSeconds   int    `yaml:"worker_poll_seconds"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	UploadsPerMinute  int  `yaml:"uploads_per_minute"`
	UploadsPerHour    int  `yaml:"uploads_per_hour"`
	SearchRunsPerHour int  `yaml:"search_runs_per_hour"`
}

// RetentionConfig contains cleanup settings for old import records
type RetentionConfig struct {
	Enabled          bool `yaml:"enabled"`
	ImportAgeDays    int  `yaml:"import_age_days"`
	MaxDeletionCount int  `yaml:"max_deletion_count"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
	LogImports  bool   `yaml:"log_imports"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Importer: ImporterConfig{
			MaxFileSizeMB:     25,
			StrictMode:        false,
			HeaderScanRowsAIQ: 10,
			HeaderScanRowsRed: 15,
		},
		SearchAgent: SearchAgentConfig{
			Mode:                "mock",
			TimeoutSeconds:      30,
			UserAgent:           "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
			RecurringRunEnabled: false,
			RecurringRunTime:    "06:00",
			WorkerPollSeconds:   15,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			UploadsPerMinute:  10,
			UploadsPerHour:    120,
			SearchRunsPerHour: 60,
		},
		Retention: RetentionConfig{
			Enabled:          false,
			ImportAgeDays:    90,
			MaxDeletionCount: 200,
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
			LogImports:  true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	// Read file
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// MaxFileSizeBytes returns the upload size limit in bytes
func (c *ImporterConfig) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// GetTimeout returns the listing fetch timeout as a duration
func (c *SearchAgentConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetWorkerPollInterval returns the queue worker poll interval as a duration
func (c *SearchAgentConfig) GetWorkerPollInterval() time.Duration {
	if c.WorkerPollSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.WorkerPollSeconds) * time.Second
}
