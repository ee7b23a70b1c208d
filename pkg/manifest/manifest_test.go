package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/webplat-dev/harness-runner/pkg/core"
)

func writeScenario(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("// scenario\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "basic.js")
	writeScenario(t, dir, "slow.js")

	manifestPath := filepath.Join(dir, "suite.yaml")
	content := `
name: storage-suite
tags: [storage]
scenarios:
  - file: basic.js
    name: basic operations
  - file: slow.js
    timeout: long
    tags: [slow]
`
	if err := os.WriteFile(manifestPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(manifestPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != "storage-suite" {
		t.Errorf("name = %q", m.Name)
	}
	if len(m.Scenarios) != 2 {
		t.Fatalf("scenarios = %d, want 2", len(m.Scenarios))
	}
	// Paths resolve relative to the manifest.
	if m.Scenarios[0].File != filepath.Join(dir, "basic.js") {
		t.Errorf("file = %q", m.Scenarios[0].File)
	}
	if m.Scenarios[0].DisplayName() != "basic operations" {
		t.Errorf("display name = %q", m.Scenarios[0].DisplayName())
	}
	if m.Scenarios[1].DisplayName() != "slow.js" {
		t.Errorf("fallback display name = %q", m.Scenarios[1].DisplayName())
	}
	if !m.Scenarios[1].IsLong() {
		t.Error("timeout: long not recognized")
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	existing := writeScenario(t, dir, "a.js")

	tests := []struct {
		name     string
		manifest Manifest
		wantErr  string
	}{
		{
			name:     "no scenarios",
			manifest: Manifest{Name: "empty"},
			wantErr:  "lists no scenarios",
		},
		{
			name: "missing file field",
			manifest: Manifest{Scenarios: []Scenario{
				{Name: "anonymous"},
			}},
			wantErr: "has no file",
		},
		{
			name: "duplicate file",
			manifest: Manifest{Scenarios: []Scenario{
				{File: existing},
				{File: existing},
			}},
			wantErr: "listed twice",
		},
		{
			name: "bad timeout",
			manifest: Manifest{Scenarios: []Scenario{
				{File: existing, Timeout: "soonish"},
			}},
			wantErr: "bad timeout",
		},
		{
			name: "file not found",
			manifest: Manifest{Scenarios: []Scenario{
				{File: filepath.Join(dir, "ghost.js")},
			}},
			wantErr: "not found",
		},
		{
			name: "valid",
			manifest: Manifest{Scenarios: []Scenario{
				{File: existing, Timeout: "30s"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.manifest.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
			var he *core.HarnessError
			if !errors.As(err, &he) || he.Code != "invalid_manifest" {
				t.Errorf("err = %v, want invalid_manifest", err)
			}
		})
	}
}

func TestTimeoutOverride(t *testing.T) {
	tests := []struct {
		timeout string
		want    time.Duration
		ok      bool
	}{
		{"", 0, false},
		{"long", 0, false},
		{"30s", 30 * time.Second, true},
		{"2m", 2 * time.Minute, true},
		{"garbage", 0, false},
	}
	for _, tt := range tests {
		d, ok := Scenario{Timeout: tt.timeout}.TimeoutOverride()
		if d != tt.want || ok != tt.ok {
			t.Errorf("TimeoutOverride(%q) = %v, %v", tt.timeout, d, ok)
		}
	}
}

func TestCollect_GlobAndManifest(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "b.js")
	writeScenario(t, dir, "a.js")
	writeScenario(t, dir, "listed.js")

	manifestPath := filepath.Join(dir, "suite.yml")
	content := "scenarios:\n  - file: listed.js\n    name: from manifest\n"
	if err := os.WriteFile(manifestPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Collect([]string{
		filepath.Join(dir, "[ab].js"),
		manifestPath,
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("scenarios = %d, want 3", len(got))
	}
	// Glob hits are sorted; the manifest entry follows.
	if filepath.Base(got[0].File) != "a.js" || filepath.Base(got[1].File) != "b.js" {
		t.Errorf("glob order: %q, %q", got[0].File, got[1].File)
	}
	if got[2].Name != "from manifest" {
		t.Errorf("manifest scenario = %+v", got[2])
	}
}

func TestFilterTags(t *testing.T) {
	scenarios := []Scenario{
		{File: "fast.js", Tags: []string{"fast"}},
		{File: "slow.js", Tags: []string{"slow"}},
		{File: "flaky.js", Tags: []string{"slow", "flaky"}},
		{File: "untagged.js"},
	}

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{
			name: "no filters keeps everything",
			want: []string{"fast.js", "slow.js", "flaky.js", "untagged.js"},
		},
		{
			name:    "include",
			include: []string{"slow"},
			want:    []string{"slow.js", "flaky.js"},
		},
		{
			name:    "exclude",
			exclude: []string{"flaky"},
			want:    []string{"fast.js", "slow.js", "untagged.js"},
		},
		{
			name:    "include and exclude",
			include: []string{"slow"},
			exclude: []string{"flaky"},
			want:    []string{"slow.js"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterTags(scenarios, tt.include, tt.exclude)
			if len(got) != len(tt.want) {
				t.Fatalf("kept %d scenarios, want %d", len(got), len(tt.want))
			}
			for i, s := range got {
				if s.File != tt.want[i] {
					t.Errorf("kept[%d] = %q, want %q", i, s.File, tt.want[i])
				}
			}
		})
	}
}
