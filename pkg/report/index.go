package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// IndexFile is the name of the run index inside the report directory.
const IndexFile = "report.json"

// scenarioDir holds per-scenario detail files inside the report directory.
const scenarioDir = "scenarios"

// WriteIndex writes the run index to dir, atomically, so pollers never
// observe a half-written file.
func WriteIndex(dir string, ix *Index) error {
	return writeJSON(filepath.Join(dir, IndexFile), ix)
}

// ReadIndex reads the run index from dir.
func ReadIndex(dir string) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(dir, IndexFile)) //#nosec G304 -- caller-provided report dir
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return &ix, nil
}

// WriteScenario writes one scenario's detail file under dir.
func WriteScenario(dir, id string, rep *Report) error {
	if err := os.MkdirAll(filepath.Join(dir, scenarioDir), 0o755); err != nil {
		return fmt.Errorf("create scenario dir: %w", err)
	}
	return writeJSON(filepath.Join(dir, scenarioDir, id+".json"), rep)
}

// ReadScenario reads one scenario's detail file from dir.
func ReadScenario(dir, id string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(dir, scenarioDir, id+".json")) //#nosec G304
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", id, err)
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", id, err)
	}
	return &rep, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
