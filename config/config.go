// Package config provides CLI configuration management for the venda
// command-line tool. It supports loading configuration from YAML files,
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultFunnelID     = "comercial"
	DefaultTimeout      = 30 * time.Second
	DefaultOutputFormat = OutputFormatText
	DefaultConfigDir    = ".venda"
	DefaultConfigFile   = "config.yaml"
)

// ActorConfig identifies the seller running the CLI. Every mutation carries
// this identity; the engine's ownership guard checks it against the card's
// responsible seller.
type ActorConfig struct {
	// ID is the seller's identifier.
	ID string `yaml:"id"`

	// Name is the seller's display name.
	Name string `yaml:"name,omitempty"`
}

// DatabaseConfig holds PostgreSQL connection settings. The password is never
// stored here; it comes from the keyring or the VENDA_DB_PASSWORD variable.
type DatabaseConfig struct {
	// Host is the database server hostname.
	Host string `yaml:"host,omitempty"`

	// Port is the database server port (default: 5432).
	Port int `yaml:"port,omitempty"`

	// Database is the database name.
	Database string `yaml:"database,omitempty"`

	// User is the database username.
	User string `yaml:"user,omitempty"`

	// SSLMode is the SSL connection mode (disable, require, verify-ca, verify-full).
	SSLMode string `yaml:"sslmode,omitempty"`
}

// IsConfigured returns true if the database is configured with required fields.
func (c *DatabaseConfig) IsConfigured() bool {
	return c != nil && c.Host != "" && c.Database != "" && c.User != ""
}

// RedisConfig holds Redis settings for the funnel definition cache.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string `yaml:"addr,omitempty"`

	// DB is the Redis database number.
	DB int `yaml:"db,omitempty"`

	// TTL is how long cached funnel definitions stay fresh.
	TTL time.Duration `yaml:"-"`
}

// IsConfigured returns true if Redis caching is enabled.
func (c *RedisConfig) IsConfigured() bool {
	return c != nil && c.Addr != ""
}

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// Actor is the seller identity used for ownership checks.
	Actor ActorConfig `yaml:"actor"`

	// FunnelID is the funnel shown by default when no --funnel flag is given.
	FunnelID string `yaml:"funnel_id"`

	// Timeout is the default timeout for database operations.
	Timeout time.Duration `yaml:"timeout"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`

	// Database holds PostgreSQL connection settings. When unset, the CLI
	// runs against an in-memory store that lasts one invocation.
	Database *DatabaseConfig `yaml:"database,omitempty"`

	// Redis holds funnel cache settings.
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		FunnelID:     DefaultFunnelID,
		Timeout:      DefaultTimeout,
		OutputFormat: DefaultOutputFormat,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $VENDA_CONFIG_DIR if set, otherwise ~/.venda
func ConfigDir() (string, error) {
	if dir := os.Getenv("VENDA_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.venda/config.yaml or $VENDA_CONFIG_DIR/config.yaml)
// 3. Environment variables (VENDA_ACTOR_ID, VENDA_FUNNEL, VENDA_OUTPUT_FORMAT, ...)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// We need a temp struct for unmarshaling duration as string.
	type configFile struct {
		Actor        ActorConfig     `yaml:"actor"`
		FunnelID     string          `yaml:"funnel_id"`
		Timeout      string          `yaml:"timeout"`
		OutputFormat OutputFormat    `yaml:"output_format"`
		Debug        bool            `yaml:"debug"`
		Database     *DatabaseConfig `yaml:"database"`
		Redis        *RedisConfig    `yaml:"redis"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.Actor.ID != "" {
		cfg.Actor = fileCfg.Actor
	}
	if fileCfg.FunnelID != "" {
		cfg.FunnelID = fileCfg.FunnelID
	}
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.Database != nil {
		cfg.Database = fileCfg.Database
	}
	if fileCfg.Redis != nil {
		cfg.Redis = fileCfg.Redis
	}
	cfg.Debug = fileCfg.Debug

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("VENDA_ACTOR_ID"); v != "" {
		cfg.Actor.ID = v
	}

	if v := os.Getenv("VENDA_ACTOR_NAME"); v != "" {
		cfg.Actor.Name = v
	}

	if v := os.Getenv("VENDA_FUNNEL"); v != "" {
		cfg.FunnelID = v
	}

	if v := os.Getenv("VENDA_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		}
	}

	if v := os.Getenv("VENDA_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("VENDA_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}

	loadDatabaseFromEnv(cfg)
	loadRedisFromEnv(cfg)
}

// loadDatabaseFromEnv overlays database environment variables.
func loadDatabaseFromEnv(cfg *CLIConfig) {
	host := os.Getenv("VENDA_DB_HOST")
	database := os.Getenv("VENDA_DB_NAME")
	user := os.Getenv("VENDA_DB_USER")

	if host == "" && database == "" && user == "" {
		return // No env vars set.
	}

	if cfg.Database == nil {
		cfg.Database = &DatabaseConfig{}
	}

	if host != "" {
		cfg.Database.Host = host
	}
	if database != "" {
		cfg.Database.Database = database
	}
	if user != "" {
		cfg.Database.User = user
	}
	if v := os.Getenv("VENDA_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("VENDA_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
}

// loadRedisFromEnv overlays Redis environment variables.
func loadRedisFromEnv(cfg *CLIConfig) {
	addr := os.Getenv("VENDA_REDIS_ADDR")
	if addr == "" {
		return
	}

	if cfg.Redis == nil {
		cfg.Redis = &RedisConfig{}
	}
	cfg.Redis.Addr = addr

	if v := os.Getenv("VENDA_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if c.FunnelID == "" {
		return fmt.Errorf("funnel_id is required")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	// Convert to YAML-friendly format with duration as string.
	type configFile struct {
		Actor        ActorConfig     `yaml:"actor"`
		FunnelID     string          `yaml:"funnel_id"`
		Timeout      string          `yaml:"timeout"`
		OutputFormat OutputFormat    `yaml:"output_format"`
		Debug        bool            `yaml:"debug,omitempty"`
		Database     *DatabaseConfig `yaml:"database,omitempty"`
		Redis        *RedisConfig    `yaml:"redis,omitempty"`
	}

	fileCfg := configFile{
		Actor:        cfg.Actor,
		FunnelID:     cfg.FunnelID,
		Timeout:      cfg.Timeout.String(),
		OutputFormat: cfg.OutputFormat,
		Debug:        cfg.Debug,
		Database:     cfg.Database,
		Redis:        cfg.Redis,
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
