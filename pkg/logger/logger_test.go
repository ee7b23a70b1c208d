package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	if err := Init(path, false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Close()

	Info("run %s started", "abc")
	Warn("scenario %s slow", "x.js")
	Error("scenario %s broke", "y.js")
	Debug("hidden without verbose")
	Script("z.js", "log", "hello from script")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"[INFO] run abc started",
		"[WARN] scenario x.js slow",
		"[ERROR] scenario y.js broke",
		"[SCRIPT] z.js log: hello from script",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q", want)
		}
	}
	if strings.Contains(out, "hidden without verbose") {
		t.Error("debug entry written without verbose mode")
	}
}

func TestDebugVerbose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	if err := Init(path, true); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Close()

	Debug("worker %d idle", 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "[DEBUG] worker 3 idle") {
		t.Error("debug entry missing in verbose mode")
	}
}

func TestWriteWithoutInit(t *testing.T) {
	Close()
	// Must not panic with no log file configured.
	Info("dropped")
	Script("a.js", "log", "dropped")
	if w := GetWriter(); w == nil {
		t.Error("GetWriter returned nil")
	}
}
