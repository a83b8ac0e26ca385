package config

import (
	"fmt"
	"os"
	"strconv"

	"viradsbench/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Report   ReportConfig
	Data     DataConfig
	Analysis AnalysisConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	Host    string
	Port    int
	Name    string
	User    string
	SSLMode string
}

// DSN returns the connection string to use: DATABASE_URL when set,
// otherwise a keyword DSN assembled from the individual DB_* settings.
// Empty when neither form is configured.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Host == "" {
		return ""
	}
	dsn := fmt.Sprintf("host=%s port=%d sslmode=%s", c.Host, c.Port, c.SSLMode)
	if c.Name != "" {
		dsn += " dbname=" + c.Name
	}
	if c.User != "" {
		dsn += " user=" + c.User
	}
	return dsn
}

// ServerConfig holds the JSON API server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ReportConfig holds the read-only report app settings
type ReportConfig struct {
	Port string
}

// DataConfig holds data file paths
type DataConfig struct {
	WorkbookFile string
	ExportFile   string
}

// AnalysisConfig holds the default analysis parameters; each can be
// overridden per request.
type AnalysisConfig struct {
	Cutoff            int
	Prevalence        float64
	PartialPercentage int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Report:   loadReportConfig(),
		Data:     loadDataConfig(),
		Analysis: loadAnalysisConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     getEnvOrDefault("DATABASE_URL", ""),
		Host:    getEnvOrDefault("DB_HOST", ""),
		Port:    getEnvIntOrDefault("DB_PORT", 5432),
		Name:    getEnvOrDefault("DB_NAME", ""),
		User:    getEnvOrDefault("DB_USER", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadReportConfig() ReportConfig {
	return ReportConfig{
		Port: getEnvOrDefault("REPORT_PORT", "8081"),
	}
}

func loadDataConfig() DataConfig {
	return DataConfig{
		WorkbookFile: getEnvOrDefault("WORKBOOK_FILE", ""),
		ExportFile:   getEnvOrDefault("EXPORT_FILE", "results.xlsx"),
	}
}

func loadAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Cutoff:            getEnvIntOrDefault("VIRADS_CUTOFF", 3),
		Prevalence:        getEnvFloatOrDefault("PREVALENCE", 0.5),
		PartialPercentage: getEnvIntOrDefault("PARTIAL_PERCENTAGE", 50),
	}
}

func validateConfig(config *Config) error {
	if config.Analysis.Cutoff < 2 || config.Analysis.Cutoff > 5 {
		return errors.ConfigInvalid("VIRADS_CUTOFF must be between 2 and 5")
	}
	if config.Analysis.Prevalence < 0 || config.Analysis.Prevalence > 1 {
		return errors.ConfigInvalid("PREVALENCE must be between 0 and 1")
	}
	if config.Analysis.PartialPercentage <= 0 || config.Analysis.PartialPercentage > 100 {
		return errors.ConfigInvalid("PARTIAL_PERCENTAGE must be in (0,100]")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
