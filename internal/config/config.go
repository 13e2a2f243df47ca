package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Upload        UploadConfig        `yaml:"upload"`
	Search        SearchConfig        `yaml:"search"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Notifications NotificationsConfig `yaml:"notifications"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Logging       LoggingConfig       `yaml:"logging"`
	Timezone      string              `yaml:"timezone"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	DSN      string         `yaml:"dsn"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
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

// SQLiteConfig contains the SQLite database file path
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// AuthConfig contains bearer token verification settings
type AuthConfig struct {
	Secret    string `yaml:"secret"`
	Algorithm string `yaml:"algorithm"`
}

// UploadConfig contains file upload settings
type UploadConfig struct {
	Dir                string   `yaml:"dir"`
	MaxSizeMB          int      `yaml:"max_size_mb"`
	ImageExtensions    []string `yaml:"image_extensions"`
	DocumentExtensions []string `yaml:"document_extensions"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Enabled             bool              `yaml:"enabled"`
	Meilisearch         MeilisearchConfig `yaml:"meilisearch"`
	BreakerFailures     int               `yaml:"breaker_failures"`
	BreakerResetSeconds int               `yaml:"breaker_reset_seconds"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
	Index  string `yaml:"index"`
}

// SchedulerConfig controls the daily background run
type SchedulerConfig struct {
	DailyRunEnabled bool   `yaml:"daily_run_enabled"`
	DailyRunTime    string `yaml:"daily_run_time"`
}

// NotificationsConfig contains dedupe windows and retention
type NotificationsConfig struct {
	RetentionDays         int  `yaml:"retention_days"`
	MaxDeletionCount      int  `yaml:"max_deletion_count"`
	CleanupDryRun         bool `yaml:"cleanup_dry_run"`
	ContractDedupeHours   int  `yaml:"contract_dedupe_hours"`
	ReminderDedupeHours   int  `yaml:"reminder_dedupe_hours"`
	OverdueDedupeHours    int  `yaml:"overdue_dedupe_hours"`
	ContractsExpiringDays int  `yaml:"contracts_expiring_days"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
	RequestsPerDay    int  `yaml:"requests_per_day"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type: "postgres",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Database: "rental_manager",
				SSLMode:  "disable",
			},
			MySQL: MySQLConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Database: "rental_manager",
			},
			SQLite: SQLiteConfig{Path: "rental_manager.db"},
		},
		Server: ServerConfig{
			Port:        "8000",
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Auth: AuthConfig{
			Algorithm: "HS256",
		},
		Upload: UploadConfig{
			Dir:                "uploads",
			MaxSizeMB:          10,
			ImageExtensions:    []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
			DocumentExtensions: []string{".pdf", ".doc", ".docx"},
		},
		Search: SearchConfig{
			Enabled: false,
			Meilisearch: MeilisearchConfig{
				Host:  "http://localhost:7700",
				Index: "properties",
			},
			BreakerFailures:     3,
			BreakerResetSeconds: 30,
		},
		Scheduler: SchedulerConfig{
			DailyRunEnabled: false,
			DailyRunTime:    "06:00",
		},
		Notifications: NotificationsConfig{
			RetentionDays:         90,
			MaxDeletionCount:      10000,
			CleanupDryRun:         false,
			ContractDedupeHours:   72,
			ReminderDedupeHours:   12,
			OverdueDedupeHours:    72,
			ContractsExpiringDays: 30,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 30,
			RequestsPerHour:   600,
			RequestsPerDay:    5000,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "text",
			LogRequests: true,
		},
		Timezone: "UTC",
	}
}

// LoadConfig loads configuration from a YAML file, then applies .env and
// environment overrides
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	// .env is optional
	_ = godotenv.Load()

	if _, err := os.Stat(filepath); err == nil {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() {
	setString(&c.Database.Type, "DB_TYPE")
	setString(&c.Database.DSN, "DB_DSN")
	switch c.Database.Type {
	case "mysql":
		setString(&c.Database.MySQL.Host, "DB_HOST")
		setInt(&c.Database.MySQL.Port, "DB_PORT")
		setString(&c.Database.MySQL.User, "DB_USER")
		setString(&c.Database.MySQL.Password, "DB_PASSWORD")
		setString(&c.Database.MySQL.Database, "DB_NAME")
	case "sqlite":
		setString(&c.Database.SQLite.Path, "DB_NAME")
	default:
		setString(&c.Database.Postgres.Host, "DB_HOST")
		setInt(&c.Database.Postgres.Port, "DB_PORT")
		setString(&c.Database.Postgres.User, "DB_USER")
		setString(&c.Database.Postgres.Password, "DB_PASSWORD")
		setString(&c.Database.Postgres.Database, "DB_NAME")
	}

	setString(&c.Server.Port, "PORT")
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}
	setString(&c.Auth.Secret, "JWT_SECRET")
	setString(&c.Upload.Dir, "UPLOAD_DIR")
	setString(&c.Search.Meilisearch.Host, "MEILISEARCH_HOST")
	setString(&c.Search.Meilisearch.APIKey, "MEILISEARCH_KEY")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Timezone, "TZ")
}

// Validate checks settings that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Auth.Algorithm != "HS256" && c.Auth.Algorithm != "HS384" && c.Auth.Algorithm != "HS512" {
		return fmt.Errorf("unsupported jwt algorithm: %s", c.Auth.Algorithm)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// GetMaxSize returns the upload size limit in bytes
func (c *UploadConfig) GetMaxSize() int64 {
	return int64(c.MaxSizeMB) * 1024 * 1024
}

// GetBreakerReset returns how long an open search circuit waits before retrying
func (c *SearchConfig) GetBreakerReset() time.Duration {
	return time.Duration(c.BreakerResetSeconds) * time.Second
}

// GetContractDedupe returns the contract-expiring dedupe window
func (c *NotificationsConfig) GetContractDedupe() time.Duration {
	return time.Duration(c.ContractDedupeHours) * time.Hour
}

// GetReminderDedupe returns the payment reminder dedupe window
func (c *NotificationsConfig) GetReminderDedupe() time.Duration {
	return time.Duration(c.ReminderDedupeHours) * time.Hour
}

// GetOverdueDedupe returns the overdue dedupe window
func (c *NotificationsConfig) GetOverdueDedupe() time.Duration {
	return time.Duration(c.OverdueDedupeHours) * time.Hour
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
