package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// ============================================================================
// CONFIGURATION LOADER
// ============================================================================

// Loader applies the configuration layers in order:
//  1. compiled defaults
//  2. {basePath}/base.yaml
//  3. {basePath}/{environment}.yaml
//  4. environment variables
//
// Missing files are skipped; malformed ones are errors.
type Loader struct {
	basePath    string
	environment Environment
	// environ replaces the process environment when non-nil.
	environ map[string]string
	sources []string
}

// NewLoader creates a loader reading files from basePath.
func NewLoader(basePath string, environment Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{basePath: basePath, environment: environment}
}

// WithEnvironment makes the loader read variables from vars instead of the
// process environment.
func (l *Loader) WithEnvironment(vars map[string]string) *Loader {
	l.environ = vars
	return l
}

// Load builds and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()
	cfg.Environment = l.environment
	l.sources = []string{"defaults"}

	if err := l.loadFile("base.yaml", cfg); err != nil {
		return nil, err
	}
	if l.environment != "" {
		if err := l.loadFile(string(l.environment)+".yaml", cfg); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: l.environ}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	l.sources = append(l.sources, "environment")
	cfg.LoadedFrom = l.sources

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Sources returns the layers applied by the last Load.
func (l *Loader) Sources() []string {
	return l.sources
}

func (l *Loader) loadFile(name string, cfg *Config) error {
	path := filepath.Join(l.basePath, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	l.sources = append(l.sources, path)
	return nil
}

// Load reads the configuration for the environment named by ENVIRONMENT
// (default development) from the directory named by CONFIG_PATH (default
// "config").
func Load() (*Config, error) {
	environment := Environment(os.Getenv("ENVIRONMENT"))
	if environment == "" {
		environment = Development
	}
	return NewLoader(os.Getenv("CONFIG_PATH"), environment).Load()
}
