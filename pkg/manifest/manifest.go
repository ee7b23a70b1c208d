// Package manifest parses and validates suite manifests: yaml files
// enumerating the scenario scripts of a conformance suite along with
// per-scenario timeout tags and filter tags.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/webplat-dev/harness-runner/pkg/core"
)

// Manifest describes one suite of scenario files.
type Manifest struct {
	Name      string     `yaml:"name"`
	Tags      []string   `yaml:"tags"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario is one scenario script plus its metadata.
type Scenario struct {
	File    string   `yaml:"file"`
	Name    string   `yaml:"name"`    // Display name; defaults to the file name
	Timeout string   `yaml:"timeout"` // "", "long", or a duration like "30s"
	Tags    []string `yaml:"tags"`
}

// DisplayName returns the scenario's name, falling back to its file name.
func (s Scenario) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return filepath.Base(s.File)
}

// IsLong reports whether the scenario opted into the extended timeout.
func (s Scenario) IsLong() bool { return s.Timeout == "long" }

// TimeoutOverride returns an explicit timeout duration, if the manifest
// set one, and whether it did.
func (s Scenario) TimeoutOverride() (time.Duration, bool) {
	if s.Timeout == "" || s.Timeout == "long" {
		return 0, false
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, false
	}
	return d, true
}

// Parse parses manifest yaml.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, core.ErrInvalidManifest.WithCause(err)
	}
	return &m, nil
}

// Load reads a manifest file, resolves scenario paths relative to the
// manifest's directory, and validates the result.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided manifest
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	for i := range m.Scenarios {
		if !filepath.IsAbs(m.Scenarios[i].File) {
			m.Scenarios[i].File = filepath.Join(dir, m.Scenarios[i].File)
		}
	}
	if m.Name == "" {
		m.Name = filepath.Base(dir)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the manifest for structural problems: scenarios
// without a file, unparseable timeout values, duplicate files, and
// referenced files that do not exist.
func (m *Manifest) Validate() error {
	if len(m.Scenarios) == 0 {
		return core.ErrInvalidManifest.WithMessage("manifest lists no scenarios")
	}
	seen := make(map[string]bool, len(m.Scenarios))
	for i, s := range m.Scenarios {
		if s.File == "" {
			return core.ErrInvalidManifest.WithMessage(
				fmt.Sprintf("scenario %d has no file", i))
		}
		if seen[s.File] {
			return core.ErrInvalidManifest.WithMessage(
				fmt.Sprintf("scenario file %s listed twice", s.File))
		}
		seen[s.File] = true
		if s.Timeout != "" && s.Timeout != "long" {
			if _, err := time.ParseDuration(s.Timeout); err != nil {
				return core.ErrInvalidManifest.WithMessage(
					fmt.Sprintf("scenario %s: bad timeout %q", s.File, s.Timeout))
			}
		}
		if _, err := os.Stat(s.File); err != nil {
			return core.ErrInvalidManifest.WithMessage(
				fmt.Sprintf("scenario file %s not found", s.File))
		}
	}
	return nil
}
