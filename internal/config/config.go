// Package config loads settings for the serialbox command line tools.
//
// Configuration comes from a single YAML file named by the --config flag
// or, failing that, the SERIALBOX_CONFIG environment variable. Without
// either the defaults apply. Flags given on the command line override the
// file. Files named *.json or *.jsonc are read as JSON with comments.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-serialbox/internal/engine"
	"github.com/robert-malhotra/go-serialbox/internal/filter"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "SERIALBOX_CONFIG"

// Config is the tool configuration.
type Config struct {
	// Engine is the engine driver name.
	// Default: native
	Engine string `yaml:"engine"`

	// LibraryPaths are extra directories searched for the C wrapper
	// library when Engine is "cgo".
	LibraryPaths []string `yaml:"library_paths"`

	// Compression is the codec for newly written records.
	// Values: none, zlib, lz4, zstd
	// Default: none
	Compression string `yaml:"compression"`

	// Log configures diagnostics on stderr.
	Log LogConfig `yaml:"log"`

	// Compare configures serialbox-compare.
	Compare CompareConfig `yaml:"compare"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: warn
	Level string `yaml:"level"`

	// Format is text, json or auto. Auto picks text on a terminal and
	// JSON otherwise.
	// Default: auto
	Format string `yaml:"format"`
}

// CompareConfig configures field comparison.
type CompareConfig struct {
	// Tolerance is the largest accepted error.
	// Default: 1e-12
	Tolerance float64 `yaml:"tolerance"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Engine:      engine.DefaultDriver,
		Compression: "none",
		Log: LogConfig{
			Level:  "warn",
			Format: "auto",
		},
		Compare: CompareConfig{
			Tolerance: 1e-12,
		},
	}
}

// Load loads the file at path, or the file named by EnvVar when path is
// empty. With neither set it returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads and validates the file at path on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// Plain JSON is valid YAML.
		data = jsonc.ToJSON(data)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) expandVariables() {
	for i, p := range c.LibraryPaths {
		c.LibraryPaths[i] = os.ExpandEnv(p)
	}
}

// Validate checks the values that have a fixed set of choices.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine == "" {
		errs = append(errs, errors.New("engine must not be empty"))
	}
	if _, err := filter.ParseCodec(c.Compression); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be auto, text or json, got %q", c.Log.Format))
	}
	if c.Compare.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("compare.tolerance must not be negative, got %g", c.Compare.Tolerance))
	}
	return errors.Join(errs...)
}

// EngineConfig returns the engine settings.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		LibraryPaths: c.LibraryPaths,
		Compression:  c.Compression,
	}
}
