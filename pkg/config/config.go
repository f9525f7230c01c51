// Package config provides configuration management for the heap dominator
// analysis service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Output    OutputConfig    `mapstructure:"output"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

// AnalysisConfig holds engine-related configuration.
type AnalysisConfig struct {
	Version    string `mapstructure:"version"`
	MaxWorker  int    `mapstructure:"max_worker"`
	TopK       int    `mapstructure:"top_k"`
	ChunkSize  int    `mapstructure:"chunk_size"`
}

// OutputConfig holds the configuration for the bulk-extract writers.
type OutputConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
	ReportPath string `mapstructure:"report_path"`
	Gzip       bool   `mapstructure:"gzip"`
}

// StorageConfig holds object storage configuration for uploading results.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`     // e.g., "myqcloud.com"
	Scheme    string `mapstructure:"scheme"`     // e.g., "https" or "http"
	LocalPath string `mapstructure:"local_path"` // for local storage
}

// TelemetryConfig mirrors pkg/telemetry.Config's env-driven fields in the
// YAML config file. pkg/telemetry reads its settings from environment
// variables only and does not consume this section.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"`
	Protocol    string `mapstructure:"protocol"`
	Sampler     string `mapstructure:"sampler"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/heapdom")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw bytes (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("analysis.version", "1.0.0")
	v.SetDefault("analysis.max_worker", 5)
	v.SetDefault("analysis.top_k", 50)
	v.SetDefault("analysis.chunk_size", 4096)

	v.SetDefault("output.sqlite_path", "./heapdom.db")
	v.SetDefault("output.report_path", "./report.json")
	v.SetDefault("output.gzip", false)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./storage")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "heapdom")
	v.SetDefault("telemetry.protocol", "grpc")
	v.SetDefault("telemetry.sampler", "always_on")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "./logs")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Analysis.MaxWorker < 1 {
		return fmt.Errorf("analysis.max_worker must be at least 1")
	}
	if c.Analysis.TopK < 0 {
		return fmt.Errorf("analysis.top_k must not be negative")
	}

	// Storage config validation is delegated to the storage package.

	return nil
}
