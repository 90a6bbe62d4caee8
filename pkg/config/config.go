// Package config holds the settings shared by docmodel programs: which store
// backend to open and how to log.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/sanskrit-coders/docmodel/pkg/logger"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Environment variables read by FromEnv.
const (
	EnvBackend           = "DOCMODEL_BACKEND"
	EnvPostgresDSN       = "DOCMODEL_POSTGRES_DSN"
	EnvPostgresTable     = "DOCMODEL_POSTGRES_TABLE"
	EnvFrontendName      = "DOCMODEL_FRONTEND_NAME"
	EnvExternalFileStore = "DOCMODEL_EXTERNAL_FILE_STORE"
	EnvLogPath           = "DOCMODEL_LOG_PATH"
	EnvLogLevel          = "DOCMODEL_LOG_LEVEL"
	EnvLogPretty         = "DOCMODEL_LOG_PRETTY"
)

// Config holds all configuration options for opening a store
type Config struct {
	// Store backend, "memory" or "postgres"
	Backend string `yaml:"backend" toml:"backend"`
	// PostgreSQL connection string, required for the postgres backend
	PostgresDSN string `yaml:"postgres_dsn" toml:"postgres_dsn"`
	// Table holding the documents
	PostgresTable string `yaml:"postgres_table" toml:"postgres_table"`

	// Service users are authorized against
	FrontendName string `yaml:"frontend_name" toml:"frontend_name"`
	// Directory of per-document auxiliary files; empty disables them
	ExternalFileStore string `yaml:"external_file_store" toml:"external_file_store"`

	// Log file; stderr when empty
	LogPath string `yaml:"log_path" toml:"log_path"`
	// zerolog level name
	LogLevel string `yaml:"log_level" toml:"log_level"`
	// Human readable log lines instead of JSON
	LogPretty bool `yaml:"log_pretty" toml:"log_pretty"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Backend:       BackendMemory,
		PostgresTable: "documents",
		FrontendName:  "docmodel",
		LogLevel:      "info",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres dsn is required for the %s backend", BackendPostgres)
		}
		if c.PostgresTable == "" {
			return fmt.Errorf("postgres table is required")
		}
	default:
		return fmt.Errorf("unknown backend %q, want %s or %s", c.Backend, BackendMemory, BackendPostgres)
	}
	return nil
}

func GetEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

// FromEnv overrides the fields of c whose environment variable is set.
func (c *Config) FromEnv() *Config {
	c.Backend = GetEnvOrDefault(EnvBackend, c.Backend)
	c.PostgresDSN = GetEnvOrDefault(EnvPostgresDSN, c.PostgresDSN)
	c.PostgresTable = GetEnvOrDefault(EnvPostgresTable, c.PostgresTable)
	c.FrontendName = GetEnvOrDefault(EnvFrontendName, c.FrontendName)
	c.ExternalFileStore = GetEnvOrDefault(EnvExternalFileStore, c.ExternalFileStore)
	c.LogPath = GetEnvOrDefault(EnvLogPath, c.LogPath)
	c.LogLevel = GetEnvOrDefault(EnvLogLevel, c.LogLevel)
	if pretty, err := strconv.ParseBool(GetEnvOrDefault(EnvLogPretty, strconv.FormatBool(c.LogPretty))); err == nil {
		c.LogPretty = pretty
	}
	return c
}

// LoadFile overrides the fields of c set in the YAML or TOML file at path.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		_, err = toml.Decode(string(data), c)
	default:
		return fmt.Errorf("config file %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

// Load returns the defaults overridden by the file at path, when path is not
// empty, and then by the environment.
func Load(path string) (*Config, error) {
	c := NewConfig()
	if path != "" {
		if err := c.LoadFile(path); err != nil {
			return nil, err
		}
	}
	c.FromEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Logger builds the zerolog logger described by c.
func (c *Config) Logger() (*logger.LogData, error) {
	return logger.New().FromPath(c.LogPath).Level(c.LogLevel).Pretty(c.LogPretty).Make()
}
