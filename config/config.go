// Package config provides configuration management and environment variable handling for the application
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all configuration for the tariff sync service
type Config struct {
	Database  DatabaseConfig  `json:"database"`
	TariffAPI TariffAPIConfig `json:"tariff_api"`
	Google    GoogleConfig    `json:"google"`
	Export    ExportConfig    `json:"export"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Logging   LoggingConfig   `json:"logging"`
	Server    ServerConfig    `json:"server"`
	Cache     CacheConfig     `json:"cache"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
}

// DSN returns the keyword/value connection string used by gorm. Values are
// single-quoted so spaces, quotes and backslashes survive.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		quoteDSNValue(c.Host), c.Port, quoteDSNValue(c.User), quoteDSNValue(c.Password),
		quoteDSNValue(c.Name), quoteDSNValue(c.SSLMode))
}

var dsnValueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteDSNValue(v string) string {
	return "'" + dsnValueEscaper.Replace(v) + "'"
}

// URL returns the postgres:// form of the connection string used by the migration runner
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type TariffAPIConfig struct {
	BaseURL  string        `json:"base_url"`
	Token    string        `json:"-"`
	Timeout  time.Duration `json:"timeout"`
	SendDate bool          `json:"send_date"`
}

type GoogleConfig struct {
	CredentialsPath string `json:"credentials_path"`
	SpreadsheetID   string `json:"spreadsheet_id"`
	SheetRange      string `json:"sheet_range"`
}

type ExportConfig struct {
	IncludeHeader bool   `json:"include_header"`
	XLSXPath      string `json:"xlsx_path"`
}

type SchedulerConfig struct {
	IngestionSpec string        `json:"ingestion_spec"`
	ExportSpec    string        `json:"export_spec"`
	Timezone      string        `json:"timezone"`
	RunOnStart    bool          `json:"run_on_start"`
	TaskTimeout   time.Duration `json:"task_timeout"`
}

type LoggingConfig struct {
	Level      string `json:"level"`  // debug, info, warn, error
	Output     string `json:"output"` // stdout, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
}

type ServerConfig struct {
	Enabled         bool          `json:"enabled"`
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type CacheConfig struct {
	Enabled     bool   `json:"enabled"`
	RedisURL    string `json:"redis_url"`
	RedisDB     int    `json:"redis_db"`
	RedisPrefix string `json:"redis_prefix"`
}

// LoadConfig loads and validates configuration from environment variables.
// A .env file in the working directory is read first when present; variables
// already set in the environment win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "postgres"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
		},
		TariffAPI: TariffAPIConfig{
			BaseURL:  getEnvString("TARIFF_API_BASE_URL", "https://common-api.wildberries.ru"),
			Token:    getEnvString("TARIFF_API_TOKEN", ""),
			Timeout:  getEnvDuration("TARIFF_API_TIMEOUT", 30*time.Second),
			SendDate: getEnvBool("TARIFF_API_SEND_DATE", false),
		},
		Google: GoogleConfig{
			CredentialsPath: getEnvString("GOOGLE_CREDENTIALS_PATH", ""),
			SpreadsheetID:   getEnvString("GOOGLE_SPREADSHEET_ID", ""),
			SheetRange:      getEnvString("GOOGLE_SHEET_RANGE", "Sheet1!A1"),
		},
		Export: ExportConfig{
			IncludeHeader: getEnvBool("EXPORT_INCLUDE_HEADER", false),
			XLSXPath:      getEnvString("EXPORT_XLSX_PATH", ""),
		},
		Scheduler: SchedulerConfig{
			IngestionSpec: getEnvString("SCHEDULER_INGESTION_SPEC", "0 * * * *"),
			ExportSpec:    getEnvString("SCHEDULER_EXPORT_SPEC", "1 0 * * *"),
			Timezone:      getEnvString("SCHEDULER_TIMEZONE", "UTC"),
			RunOnStart:    getEnvBool("SCHEDULER_RUN_ON_START", true),
			TaskTimeout:   getEnvDuration("SCHEDULER_TASK_TIMEOUT", 10*time.Minute),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			Output:     getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:   getEnvString("LOG_FILE_PATH", "data/tariff-sync.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Server: ServerConfig{
			Enabled:         getEnvBool("SERVER_ENABLED", false),
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Cache: CacheConfig{
			Enabled:     getEnvBool("CACHE_ENABLED", false),
			RedisURL:    getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:     getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix: getEnvString("CACHE_REDIS_PREFIX", "tariff-sync:"),
		},
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// ValidateConfig validates the configuration and reports every problem at once.
// Google settings are not checked here: a missing credential fails each export
// run instead of the whole process.
func ValidateConfig(cfg *Config) error {
	var errs []string

	// Database
	if cfg.Database.Host == "" {
		errs = append(errs, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		errs = append(errs, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		errs = append(errs, "DB_NAME is required")
	}
	if cfg.Database.User == "" {
		errs = append(errs, "DB_USER is required")
	}

	// Tariff API
	if u, err := url.Parse(cfg.TariffAPI.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "TARIFF_API_BASE_URL must be an absolute URL")
	}
	if cfg.TariffAPI.Timeout <= 0 {
		errs = append(errs, "TARIFF_API_TIMEOUT must be positive")
	}

	// Scheduler
	if _, err := cron.ParseStandard(cfg.Scheduler.IngestionSpec); err != nil {
		errs = append(errs, fmt.Sprintf("SCHEDULER_INGESTION_SPEC is invalid: %v", err))
	}
	if _, err := cron.ParseStandard(cfg.Scheduler.ExportSpec); err != nil {
		errs = append(errs, fmt.Sprintf("SCHEDULER_EXPORT_SPEC is invalid: %v", err))
	}
	if _, err := time.LoadLocation(cfg.Scheduler.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("SCHEDULER_TIMEZONE is invalid: %v", err))
	}
	if cfg.Scheduler.TaskTimeout <= 0 {
		errs = append(errs, "SCHEDULER_TASK_TIMEOUT must be positive")
	}

	// Logging
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, cfg.Logging.Level) {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of: %v", validLevels))
	}
	validOutputs := []string{"stdout", "file", "both"}
	if !slices.Contains(validOutputs, cfg.Logging.Output) {
		errs = append(errs, fmt.Sprintf("LOG_OUTPUT must be one of: %v", validOutputs))
	}
	if cfg.Logging.Output != "stdout" && cfg.Logging.FilePath == "" {
		errs = append(errs, "LOG_FILE_PATH is required when LOG_OUTPUT writes to a file")
	}

	// Ops server
	if cfg.Server.Enabled && (cfg.Server.Port <= 0 || cfg.Server.Port > 65535) {
		errs = append(errs, "SERVER_PORT must be between 1 and 65535")
	}

	// Cache
	if cfg.Cache.Enabled && cfg.Cache.RedisURL == "" {
		errs = append(errs, "CACHE_REDIS_URL is required when cache is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}
