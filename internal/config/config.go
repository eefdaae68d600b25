package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the facet API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Filters  []FilterConfig `yaml:"filters"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// CatalogConfig holds listing pagination settings.
type CatalogConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// FilterConfig declares one filter of the catalog. Kind selects the filter
// strategy; the remaining fields apply per kind and are ignored otherwise.
type FilterConfig struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"` // text, select, checkbox, range, date_range
	Label    string `yaml:"label"`
	Priority int    `yaml:"priority"`
	Disabled bool   `yaml:"disabled"`

	// Taxonomy name for select/checkbox kinds, field key for the rest.
	Taxonomy string `yaml:"taxonomy"`
	Field    string `yaml:"field"`

	Multiple  bool    `yaml:"multiple"`
	MaxItems  int     `yaml:"max_items"`
	MinLength int     `yaml:"min_length"`
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max"`
	Step      float64 `yaml:"step"`
	Prefix    string  `yaml:"prefix"`
	Suffix    string  `yaml:"suffix"`
}

// filterKinds enumerates the accepted FilterConfig.Kind values.
var filterKinds = map[string]bool{
	"text":       true,
	"select":     true,
	"checkbox":   true,
	"range":      true,
	"date_range": true,
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "facet:"
	}
	if c.Catalog.DefaultPageSize <= 0 {
		c.Catalog.DefaultPageSize = 20
	}
	if c.Catalog.MaxPageSize <= 0 {
		c.Catalog.MaxPageSize = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}

	seen := make(map[string]bool, len(c.Filters))
	for i, f := range c.Filters {
		if f.Name == "" {
			return fmt.Errorf("filters[%d].name is required", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("filters[%d]: duplicate filter name %q", i, f.Name)
		}
		seen[f.Name] = true

		if !filterKinds[f.Kind] {
			return fmt.Errorf("filters[%d].kind must be one of text, select, checkbox, range, date_range, got %q",
				i, f.Kind)
		}
		switch f.Kind {
		case "select", "checkbox":
			if f.Taxonomy == "" {
				return fmt.Errorf("filters[%d]: %s filter %q requires a taxonomy", i, f.Kind, f.Name)
			}
		case "range", "date_range":
			if f.Field == "" {
				return fmt.Errorf("filters[%d]: %s filter %q requires a field", i, f.Kind, f.Name)
			}
		}
	}
	return nil
}

// Taxonomies returns the distinct taxonomy names referenced by filters, in
// declaration order.
func (c *Config) Taxonomies() []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range c.Filters {
		if f.Taxonomy != "" && !seen[f.Taxonomy] {
			seen[f.Taxonomy] = true
			out = append(out, f.Taxonomy)
		}
	}
	return out
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
