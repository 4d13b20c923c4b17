// Package config loads the Taxon service configuration from TOML files,
// dotenv files, and environment variables. A base config.toml is overlaid
// by config.<env>.toml, then environment variables take final precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/dhg-platform/taxon/internal/classifier"
	"github.com/dhg-platform/taxon/pkg/database"
	"github.com/dhg-platform/taxon/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvTaxonEnv             = "TAXON_ENV"
	EnvTaxonShutdownTimeout = "TAXON_SHUTDOWN_TIMEOUT"
	EnvTaxonVersion         = "TAXON_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "TAXON_DB_HOST",
	Port:            "TAXON_DB_PORT",
	Name:            "TAXON_DB_NAME",
	User:            "TAXON_DB_USER",
	Password:        "TAXON_DB_PASSWORD",
	SSLMode:         "TAXON_DB_SSL_MODE",
	MaxOpenConns:    "TAXON_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "TAXON_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "TAXON_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "TAXON_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "TAXON_STORAGE_CONTAINER_NAME",
	ConnectionString: "TAXON_STORAGE_CONNECTION_STRING",
}

var classifierEnv = &classifier.Env{
	Model:          "TAXON_CLASSIFIER_MODEL",
	APIKey:         "TAXON_CLASSIFIER_API_KEY",
	TimeoutSeconds: "TAXON_CLASSIFIER_TIMEOUT_SECONDS",
	MaxAttempts:    "TAXON_CLASSIFIER_MAX_ATTEMPTS",
}

// Config is the root configuration for the Taxon service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	Classifier      classifier.Config `toml:"classifier"`
	Workflow        WorkflowConfig    `toml:"workflow"`
	API             APIConfig         `toml:"api"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the TAXON_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvTaxonEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads dotenv files, the base config (if present), any environment
// overlay, and finalizes all values. If no config.toml exists, defaults and
// environment variables provide all configuration.
func Load() (*Config, error) {
	loadDotenv()

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Classifier.Merge(&overlay.Classifier)
	c.Workflow.Merge(&overlay.Workflow)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Classifier.Finalize(classifierEnv); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Workflow.Finalize(); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvTaxonShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvTaxonVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

// loadDotenv applies dotenv files in precedence order: .env.local wins
// over .env.<env>, which wins over .env. godotenv never overrides
// variables already set in the process environment.
func loadDotenv() {
	paths := []string{".env.local"}

	if env := os.Getenv(EnvTaxonEnv); env != "" {
		paths = append(paths, ".env."+env)
	}
	paths = append(paths, ".env")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvTaxonEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
