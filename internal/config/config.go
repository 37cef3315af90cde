// Package config loads the YAML configuration for the inventory and layer
// report commands. Values referencing ${ENV:NAME} are resolved from the
// environment, with a best-effort .env load first so connection strings can
// stay out of the config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "~/.archacks/archacks.yaml"
)

// Config is the top-level configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Inventory InventoryConfig `yaml:"inventory,omitempty"`
	Layers    LayersConfig    `yaml:"layers,omitempty"`
	Tools     ToolsConfig     `yaml:"tools,omitempty"`
	Logging   LogConfig       `yaml:"logging,omitempty"`
}

// InventoryConfig configures the container scan.
type InventoryConfig struct {
	Root         string            `yaml:"root,omitempty"`
	Output       string            `yaml:"output,omitempty"`
	IncludeLoose bool              `yaml:"include_loose,omitempty"`
	PostGISDSN   string            `yaml:"postgis_dsn,omitempty"`
	Catalog      CatalogSinkConfig `yaml:"catalog,omitempty"`
}

// CatalogSinkConfig configures the optional MongoDB catalog sink.
type CatalogSinkConfig struct {
	URI        string `yaml:"uri,omitempty"`
	Database   string `yaml:"database,omitempty"`
	Collection string `yaml:"collection,omitempty"`
}

// Enabled reports whether the sink is configured at all.
func (c *CatalogSinkConfig) Enabled() bool { return c.URI != "" }

// Validate requires a complete sink definition once a URI is set.
func (c *CatalogSinkConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Database, validation.Required),
		validation.Field(&c.Collection, validation.Required),
	)
}

// LayersConfig configures the layer metadata report.
type LayersConfig struct {
	Directory      string `yaml:"directory,omitempty"`
	AdminDirectory string `yaml:"admin_directory,omitempty"`
	OutputFilename string `yaml:"output_filename,omitempty"`
}

// ToolsConfig points at external executables.
type ToolsConfig struct {
	OGRInfo string `yaml:"ogrinfo,omitempty"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level     string `yaml:"level,omitempty"`
	Directory string `yaml:"directory,omitempty"`
}

// Validate validates the logging configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("", "debug", "info", "warn", "error")),
	)
}

// Validate validates the whole configuration.
func (c *Config) Validate() error {
	if err := c.Inventory.Catalog.Validate(); err != nil {
		return fmt.Errorf("inventory.catalog: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Load reads and parses the config file from the given path.
func Load(path string) (*Config, error) {
	// Ignore a missing .env; it is purely a convenience.
	_ = godotenv.Load()

	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
	}

	if err := cfg.resolveEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load, except that a missing file at the
// default path yields the built-in defaults instead of an error. An
// explicitly given path must still exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(ExpandHome(DefaultPath)); os.IsNotExist(err) {
			_ = godotenv.Load()
			return Default(), nil
		}
	}
	return Load(path)
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	cfg.applyDefaults()
	return cfg
}

// Save writes the config to the given path.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func (c *Config) applyDefaults() {
	if c.Inventory.Output == "" {
		c.Inventory.Output = filepath.Join("output", "inventory.xlsx")
	}
	if c.Layers.OutputFilename == "" {
		c.Layers.OutputFilename = "layer_metadata.md"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Directory == "" {
		c.Logging.Directory = ExpandHome("~/.archacks/logs/")
	}
}

var envPattern = regexp.MustCompile(`\$\{ENV:([^}]+)\}`)

func (c *Config) resolveEnv() error {
	var err error
	if c.Inventory.PostGISDSN, err = ResolveValue(c.Inventory.PostGISDSN); err != nil {
		return fmt.Errorf("inventory postgis_dsn: %w", err)
	}
	if c.Inventory.Catalog.URI, err = ResolveValue(c.Inventory.Catalog.URI); err != nil {
		return fmt.Errorf("inventory catalog uri: %w", err)
	}
	return nil
}

// ResolveValue resolves ${ENV:NAME} references in a string value.
func ResolveValue(val string) (string, error) {
	matches := envPattern.FindStringSubmatch(val)
	if matches == nil {
		return val, nil
	}
	v := os.Getenv(matches[1])
	if v == "" {
		return "", fmt.Errorf("environment variable %s not set", matches[1])
	}
	return envPattern.ReplaceAllString(val, v), nil
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
