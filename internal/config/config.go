// Package config loads the application configuration from YAML with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Collector  CollectorConfig  `yaml:"collector"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Snowflake  SnowflakeConfig  `yaml:"snowflake"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Redis      RedisConfig      `yaml:"redis"`
	Storage    StorageConfig    `yaml:"storage"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the bind host, defaulting to localhost.
func (s ServerConfig) GetHost() string {
	if s.Host == "" {
		return "localhost"
	}
	return s.Host
}

// CollectorConfig holds the refresh loop settings.
type CollectorConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	Source          string `yaml:"source"` // "demo" or "snowflake"
}

// Interval returns the refresh cadence as a duration.
func (c CollectorConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// ThresholdsConfig points at an optional per-deployment band override file.
type ThresholdsConfig struct {
	OverrideFile string `yaml:"override_file"`
}

// SnowflakeConfig holds warehouse connection settings for the KPI rollup
// source.
type SnowflakeConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Account   string `yaml:"account"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
	Warehouse string `yaml:"warehouse"`
	Table     string `yaml:"table"`
}

// PostgresConfig holds the insight journal database settings.
type PostgresConfig struct {
	Enabled     bool   `yaml:"enabled"`
	DatabaseURL string `yaml:"database_url"`
}

// RedisConfig holds snapshot cache settings. The cache lets multiple
// server replicas serve the latest dashboard without each running a
// collector.
type RedisConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// TTL returns the cache entry lifetime.
func (r RedisConfig) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

// StorageConfig holds snapshot retention and archive settings.
type StorageConfig struct {
	HistorySize int    `yaml:"history_size"`
	S3Enabled   bool   `yaml:"s3_enabled"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3Prefix    string `yaml:"s3_prefix"`
	AWSRegion   string `yaml:"aws_region"`
	AWSProfile  string `yaml:"aws_profile"`
}

// Load reads and parses the configuration file. A missing file is not an
// error: the defaults run the server against the demo source.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// Defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if cfg.Collector.IntervalSeconds == 0 {
		cfg.Collector.IntervalSeconds = 300
	}
	if cfg.Collector.Source == "" {
		cfg.Collector.Source = "demo"
	}
	if cfg.Snowflake.Database == "" {
		cfg.Snowflake.Database = "EXEC_DATA_LAKE"
	}
	if cfg.Snowflake.Schema == "" {
		cfg.Snowflake.Schema = "KPI_ROLLUPS"
	}
	if cfg.Snowflake.Table == "" {
		cfg.Snowflake.Table = "KPI_DAILY"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.TTLSeconds == 0 {
		cfg.Redis.TTLSeconds = 900
	}
	if cfg.Storage.HistorySize == 0 {
		cfg.Storage.HistorySize = 96
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "us-west-2"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides. A
// .env file is loaded first if present, so secrets can live in .env
// locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DatabaseURL = v
		cfg.Postgres.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SNOWFLAKE_ACCOUNT"); v != "" {
		cfg.Snowflake.Account = v
	}
	if v := os.Getenv("SNOWFLAKE_USER"); v != "" {
		cfg.Snowflake.User = v
	}
	if v := os.Getenv("SNOWFLAKE_PASSWORD"); v != "" {
		cfg.Snowflake.Password = v
	}
	if v := os.Getenv("KPI_SOURCE"); v != "" {
		cfg.Collector.Source = v
	}
	if v := os.Getenv("SNAPSHOT_S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
		cfg.Storage.S3Enabled = true
	}

	return cfg, nil
}
