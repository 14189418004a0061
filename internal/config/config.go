// Package config provides layered configuration: compiled defaults, a base
// YAML file, an environment-specific YAML file and finally environment
// variables, validated once after all layers are applied.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Environment is the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Valid reports whether e is a known environment.
func (e Environment) Valid() bool {
	switch e {
	case Development, Test, Staging, Production:
		return true
	}
	return false
}

// Config holds all application configuration.
type Config struct {
	Environment    Environment    `yaml:"environment" env:"ENVIRONMENT"`
	Database       Database       `yaml:"database"`
	CircuitBreaker CircuitBreaker `yaml:"circuit_breaker"`
	Logging        Logging        `yaml:"logging"`
	Metrics        Metrics        `yaml:"metrics"`
	Tracing        Tracing        `yaml:"tracing"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-"`
}

// Database configures the DynamoDB table and client.
type Database struct {
	TableName string `yaml:"table_name" env:"TABLE_NAME"`
	Region    string `yaml:"region" env:"AWS_REGION"`
	// Endpoint overrides the service endpoint, e.g. DynamoDB Local.
	Endpoint string `yaml:"endpoint" env:"DYNAMODB_ENDPOINT"`
	// MaxAttempts is the SDK attempt budget. 1 disables SDK retries.
	MaxAttempts    int           `yaml:"max_attempts" env:"DYNAMODB_MAX_ATTEMPTS"`
	Timeout        time.Duration `yaml:"timeout" env:"DYNAMODB_TIMEOUT"`
	ConsistentRead bool          `yaml:"consistent_read" env:"DYNAMODB_CONSISTENT_READ"`
}

// CircuitBreaker configures the breaker in front of the store.
type CircuitBreaker struct {
	Enabled      bool          `yaml:"enabled" env:"CIRCUIT_BREAKER_ENABLED"`
	MaxRequests  uint32        `yaml:"max_requests" env:"CIRCUIT_BREAKER_MAX_REQUESTS"`
	Interval     time.Duration `yaml:"interval" env:"CIRCUIT_BREAKER_INTERVAL"`
	Timeout      time.Duration `yaml:"timeout" env:"CIRCUIT_BREAKER_TIMEOUT"`
	FailureRatio float64       `yaml:"failure_ratio" env:"CIRCUIT_BREAKER_FAILURE_RATIO"`
	MinRequests  uint32        `yaml:"min_requests" env:"CIRCUIT_BREAKER_MIN_REQUESTS"`
}

// Logging configures the zap logger.
type Logging struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"` // json or console
	// SlowThreshold marks store calls slower than this with a warning.
	SlowThreshold time.Duration `yaml:"slow_threshold" env:"LOG_SLOW_THRESHOLD"`
}

// Metrics configures Prometheus collection.
type Metrics struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLE_METRICS"`
	Namespace string `yaml:"namespace" env:"METRICS_NAMESPACE"`
}

// Tracing configures OpenTelemetry export.
type Tracing struct {
	Enabled     bool    `yaml:"enabled" env:"ENABLE_TRACING"`
	ServiceName string  `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
	Endpoint    string  `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SampleRate  float64 `yaml:"sample_rate" env:"TRACING_SAMPLE_RATE"`
}

// Default returns the compiled defaults.
func Default() *Config {
	return &Config{
		Environment: Development,
		Database: Database{
			TableName:   "github-ddb-dev",
			Region:      "us-east-1",
			MaxAttempts: 1,
			Timeout:     5 * time.Second,
		},
		CircuitBreaker: CircuitBreaker{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     10 * time.Second,
			Timeout:      30 * time.Second,
			FailureRatio: 0.6,
			MinRequests:  3,
		},
		Logging: Logging{
			Level:         "info",
			Format:        "console",
			SlowThreshold: 500 * time.Millisecond,
		},
		Metrics: Metrics{
			Enabled:   false,
			Namespace: "github_ddb",
		},
		Tracing: Tracing{
			Enabled:     false,
			ServiceName: "github-ddb-backend",
			SampleRate:  0.1,
		},
	}
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error
	if !c.Environment.Valid() {
		errs = append(errs, fmt.Errorf("environment %q is not one of development, test, staging, production", c.Environment))
	}
	if c.Database.TableName == "" {
		errs = append(errs, errors.New("database.table_name is required"))
	}
	if c.Database.Region == "" {
		errs = append(errs, errors.New("database.region is required"))
	}
	if c.Database.Timeout <= 0 {
		errs = append(errs, errors.New("database.timeout must be positive"))
	}
	if c.Database.MaxAttempts < 1 {
		errs = append(errs, errors.New("database.max_attempts must be at least 1"))
	}
	if c.CircuitBreaker.Enabled {
		if r := c.CircuitBreaker.FailureRatio; r <= 0 || r > 1 {
			errs = append(errs, fmt.Errorf("circuit_breaker.failure_ratio %v must be in (0,1]", r))
		}
		if c.CircuitBreaker.Timeout <= 0 {
			errs = append(errs, errors.New("circuit_breaker.timeout must be positive"))
		}
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", c.Logging.Format))
	}
	if c.Tracing.Enabled {
		if r := c.Tracing.SampleRate; r <= 0 || r > 1 {
			errs = append(errs, fmt.Errorf("tracing.sample_rate %v must be in (0,1]", r))
		}
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the configuration targets production.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
