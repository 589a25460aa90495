package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rpggio/burnup/internal/domain/metrics"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	// Mode is "stdio" or "http".
	Mode string `yaml:"mode"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

// IngestConfig tunes report ingestion.
type IngestConfig struct {
	// YieldTable is the CSV used to expand lumped fission products. Reports
	// with lumped products fail to ingest without one.
	YieldTable      string  `yaml:"yield_table"`
	CoolingFraction float64 `yaml:"cooling_fraction"`
	BlanketTracer   string  `yaml:"blanket_tracer"`
	// BlanketThreshold is in kg.
	BlanketThreshold float64 `yaml:"blanket_threshold"`
}

// MetricsConfig tunes the metrics engine.
type MetricsConfig struct {
	// Coefficients is an optional TOML file overriding the embedded tables.
	Coefficients string  `yaml:"coefficients"`
	IgnoreDose   bool    `yaml:"ignore_dose"`
	Density      string  `yaml:"density"`
	FixedDensity float64 `yaml:"fixed_density"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		DB: DBConfig{
			Path: "burnup.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Ingest: IngestConfig{
			CoolingFraction:  1.0,
			BlanketTracer:    "Pu239",
			BlanketThreshold: 1e-3,
		},
		Metrics: MetricsConfig{
			Density:      string(metrics.DensityFixed),
			FixedDensity: metrics.DefaultFixedDensity,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("BURNUP_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("BURNUP_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("BURNUP_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid BURNUP_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("BURNUP_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("BURNUP_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("BURNUP_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if token := os.Getenv("BURNUP_AUTH_TOKEN"); token != "" {
		cfg.Auth.Token = token
		cfg.Auth.Enabled = true
	}
	if table := os.Getenv("BURNUP_YIELD_TABLE"); table != "" {
		cfg.Ingest.YieldTable = table
	}
	if coeffs := os.Getenv("BURNUP_COEFFICIENTS"); coeffs != "" {
		cfg.Metrics.Coefficients = coeffs
	}
	if fracStr := os.Getenv("BURNUP_COOLING_FRACTION"); fracStr != "" {
		frac, err := strconv.ParseFloat(fracStr, 64)
		if err != nil {
			return fmt.Errorf("invalid BURNUP_COOLING_FRACTION: %w", err)
		}
		cfg.Ingest.CoolingFraction = frac
	}
	if ignore := os.Getenv("BURNUP_IGNORE_DOSE"); ignore != "" {
		v, err := strconv.ParseBool(ignore)
		if err != nil {
			return fmt.Errorf("invalid BURNUP_IGNORE_DOSE: %w", err)
		}
		cfg.Metrics.IgnoreDose = v
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q: want stdio or http", c.Transport.Mode)
	}
	if c.Transport.Mode == "http" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Auth.Enabled && strings.TrimSpace(c.Auth.Token) == "" {
		return fmt.Errorf("auth enabled without a token")
	}
	if c.Ingest.CoolingFraction <= 0 {
		return fmt.Errorf("cooling fraction must be positive, got %g", c.Ingest.CoolingFraction)
	}
	if c.Ingest.BlanketThreshold < 0 {
		return fmt.Errorf("blanket threshold must not be negative, got %g", c.Ingest.BlanketThreshold)
	}
	if _, err := metrics.ParseDensityModel(c.Metrics.Density); err != nil {
		return err
	}
	if c.Metrics.FixedDensity < 0 {
		return fmt.Errorf("fixed density must not be negative, got %g", c.Metrics.FixedDensity)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
