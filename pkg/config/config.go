// Package config handles workspace configuration for harness-runner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/webplat-dev/harness-runner/pkg/core"
)

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Scenario selection
	Scenarios   []string `yaml:"scenarios"`   // Glob patterns or manifest paths
	IncludeTags []string `yaml:"includeTags"` // Tags to include
	ExcludeTags []string `yaml:"excludeTags"` // Tags to exclude

	// Timeout policy. The corpus only signals extended timeouts via a
	// declarative tag, so both values stay configurable rather than
	// hard-coded.
	Timeout               Duration `yaml:"timeout"`               // Default per-test timeout
	LongTimeoutMultiplier int      `yaml:"longTimeoutMultiplier"` // Factor for "long" tests

	// Execution settings
	Parallelism int  `yaml:"parallelism"` // Concurrent scenario files (0 = sequential)
	StopOnFail  bool `yaml:"stopOnFail"`  // Stop the run on first scenario failure

	// Output
	Output string `yaml:"output"` // Report output directory
}

// Duration wraps time.Duration with yaml string parsing ("10s", "2m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Timeout:               Duration(10 * time.Second),
		LongTimeoutMultiplier: 6,
		Output:                "report",
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return core.ErrInvalidConfig.WithMessage("timeout must not be negative")
	}
	if c.LongTimeoutMultiplier < 0 {
		return core.ErrInvalidConfig.WithMessage("longTimeoutMultiplier must not be negative")
	}
	if c.Parallelism < 0 {
		return core.ErrInvalidConfig.WithMessage("parallelism must not be negative")
	}
	return nil
}
