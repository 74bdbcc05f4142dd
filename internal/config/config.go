package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "KPI"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Database  DatabaseConfig  `yaml:"database" envconfig:"DATABASE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" split_words:"true"`
	Port            int           `yaml:"port" split_words:"true"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
}

// Addr returns the listen address for the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" split_words:"true"`
	RPS     float64 `yaml:"rps" split_words:"true"`
	Burst   int     `yaml:"burst" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true"`
	Output   string `yaml:"output" split_words:"true"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// PathsConfig contains file system paths configuration.
// Relative paths are resolved against BaseDir, which defaults to the
// working directory.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" split_words:"true"`
	ParquetDir string `yaml:"parquet_dir" split_words:"true"`
	LogsDir    string `yaml:"logs_dir" split_words:"true"`
}

// DatabaseConfig describes the source database of the exporter.
// DSN, when set, is passed to the driver untouched.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver" split_words:"true"`
	Host            string        `yaml:"host" split_words:"true"`
	Port            int           `yaml:"port" split_words:"true"`
	User            string        `yaml:"user" split_words:"true"`
	Password        string        `yaml:"password" split_words:"true"`
	Name            string        `yaml:"name" split_words:"true"`
	DSN             string        `yaml:"dsn" split_words:"true"`
	MaxOpenConns    int           `yaml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int           `yaml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" split_words:"true"`
	QueryTimeout    time.Duration `yaml:"query_timeout" split_words:"true"`
}

// TelemetryConfig controls OpenTelemetry providers
type TelemetryConfig struct {
	Environment   string  `yaml:"environment" split_words:"true"`
	TraceExporter string  `yaml:"trace_exporter" split_words:"true"`
	EnableMetrics bool    `yaml:"enable_metrics" split_words:"true"`
	SampleRatio   float64 `yaml:"sample_ratio" split_words:"true"`
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file. An empty path skips the file.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching variable are left untouched, so env only
	// overrides what it names.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML file values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Paths.ParquetDir == "" {
		return fmt.Errorf("parquet directory must be set")
	}

	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	switch c.Telemetry.TraceExporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("unsupported trace exporter: %q", c.Telemetry.TraceExporter)
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "",
			Port:            8501,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			ParquetDir: DefaultParquetDir,
			LogsDir:    DefaultLogsDir,
		},
		Database: DatabaseConfig{
			Driver:          "mysql",
			Host:            "localhost",
			Port:            3306,
			User:            "root",
			Name:            "airline_analytics",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
			QueryTimeout:    10 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			Environment:   "development",
			TraceExporter: "none",
			EnableMetrics: true,
			SampleRatio:   1.0,
		},
	}
}
