package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendview/internal/format"
)

type Config struct {
	// HTTP Server
	Port           string
	AllowedOrigins []string
	TrustedProxies []string

	// Backend selection
	DataBackend string

	// Upstream expense API
	SourceBaseURL string
	SourceToken   string
	SourceTimeout time.Duration

	// Database
	SQLiteDBPath string

	// Memory backend seed directory
	DataDir string

	// Google Sheets
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCategoriesSheet string

	// AMQP refresh notifications
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Dashboard
	Budget         decimal.Decimal
	Locale         string
	CurrencySymbol string
	Timezone       string
	CacheTTL       time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

var validBackends = []string{"http", "sqlite", "memory", "sheets"}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		TrustedProxies: getEnvList("TRUSTED_PROXIES", nil),

		DataBackend: getEnv("DATA_BACKEND", "http"),

		SourceBaseURL: getEnv("SOURCE_BASE_URL", "http://localhost:8080"),
		SourceToken:   getEnv("SOURCE_TOKEN", ""),
		SourceTimeout: getEnvDuration("SOURCE_TIMEOUT", 10*time.Second),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expenses.db"),
		DataDir:      getEnv("DATA_DIR", "data"),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", "Expenses"),
		GoogleCategoriesSheet: getEnv("GOOGLE_CATEGORIES_SHEET_NAME", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendview"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expenses_changed"),

		Budget:         getEnvDecimal("BUDGET", decimal.NewFromInt(3_000_000)),
		Locale:         getEnv("LOCALE", "ru"),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₽"),
		Timezone:       getEnv("TIMEZONE", "Local"),
		CacheTTL:       getEnvDuration("CACHE_TTL", time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "http":
		if u, err := url.Parse(c.SourceBaseURL); err != nil || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid source base URL '%s'", c.SourceBaseURL))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid source URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
		if c.SourceTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("invalid source timeout %v: must be positive", c.SourceTimeout))
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.Budget.IsNegative() {
		errors = append(errors, fmt.Sprintf("invalid budget %s: must not be negative", c.Budget))
	}
	if _, err := format.LocaleFor(c.Locale); err != nil {
		errors = append(errors, fmt.Sprintf("invalid locale '%s': must be 'ru' or 'en'", c.Locale))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location resolves the reporting timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(strings.ReplaceAll(value, "_", "")); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
