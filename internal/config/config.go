package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Kafka      KafkaConfig
	Logging    LoggingConfig
	Refresh    RefreshConfig
	Scanner    ScannerConfig
	ServiceKey string
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig holds Kafka specific configuration. An empty broker list
// disables event publishing.
type KafkaConfig struct {
	Brokers string
	Topics  map[string]string
}

// ScanTopic returns the topic for scan completion events. Viper lowercases
// map keys during unmarshal, so lookups go through these accessors.
func (k KafkaConfig) ScanTopic() string {
	if t, ok := k.Topics["scanevents"]; ok && t != "" {
		return t
	}
	return "scan-events"
}

// RefreshTopic returns the topic for refresh completion events
func (k KafkaConfig) RefreshTopic() string {
	if t, ok := k.Topics["refreshevents"]; ok && t != "" {
		return t
	}
	return "refresh-events"
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// RefreshConfig holds indicator refresh configuration
type RefreshConfig struct {
	LookbackRows int
}

// ScannerConfig holds scanner output and rule-threshold configuration.
// Thresholds configured here are the source of truth for the rules.
type ScannerConfig struct {
	OutputDir    string
	HilegaMilega HMThresholds
	Weekly       WeeklyThresholds
}

// HMThresholds parameterizes the Hilega-Milega rule
type HMThresholds struct {
	MinClose       float64
	RSI3RSI9       float64
	RSI9EMA        float64
	EMAWMA         float64
	RSI3Max        float64
	WeeklyRSI3Min  float64
	MonthlyRSI3Min float64
}

// WeeklyThresholds parameterizes the weekly rule
type WeeklyThresholds struct {
	MinClose float64
	RSI3RSI9 float64
	RSI9EMA  float64
	EMAWMA   float64
	RSI9Min  float64
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variables override
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")

	// Kafka topic defaults
	v.SetDefault("kafka.topics.scanEvents", "scan-events")
	v.SetDefault("kafka.topics.refreshEvents", "refresh-events")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Refresh defaults
	v.SetDefault("refresh.lookbackRows", 250)

	// Scanner defaults
	v.SetDefault("scanner.outputDir", "data/scanner_results")
	v.SetDefault("scanner.hilegamilega.minClose", 60.0)
	v.SetDefault("scanner.hilegamilega.rsi3RSI9", 1.15)
	v.SetDefault("scanner.hilegamilega.rsi9EMA", 1.04)
	v.SetDefault("scanner.hilegamilega.emaWMA", 1.0)
	v.SetDefault("scanner.hilegamilega.rsi3Max", 60.0)
	v.SetDefault("scanner.hilegamilega.weeklyRSI3Min", 60.0)
	v.SetDefault("scanner.hilegamilega.monthlyRSI3Min", 50.0)
	v.SetDefault("scanner.weekly.minClose", 100.0)
	v.SetDefault("scanner.weekly.rsi3RSI9", 1.15)
	v.SetDefault("scanner.weekly.rsi9EMA", 1.04)
	v.SetDefault("scanner.weekly.emaWMA", 1.0)
	v.SetDefault("scanner.weekly.rsi9Min", 50.0)

	// Service auth default
	v.SetDefault("servicekey", "market-scanner-key")
}
