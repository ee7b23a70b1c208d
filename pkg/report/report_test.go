package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	rep := &Report{Entries: []Entry{
		{
			Name:       "connection opens",
			Ordinal:    0,
			Status:     StatusPassed,
			DurationMs: 12,
			Assertions: []Assertion{
				{Pass: true, Expected: "true", Actual: "true", Message: "opened"},
			},
		},
		{
			Name:       "rejects bad key",
			Ordinal:    1,
			Status:     StatusFailed,
			Message:    "key type",
			Expected:   "DataError",
			Actual:     "TypeError",
			DurationMs: 3,
			Assertions: []Assertion{
				{Pass: false, Expected: "DataError", Actual: "TypeError", Message: "key type"},
			},
		},
	}}
	rep.ComputeSummary()
	return rep
}

func TestComputeSummary(t *testing.T) {
	rep := &Report{Entries: []Entry{
		{Status: StatusPassed},
		{Status: StatusPassed},
		{Status: StatusFailed},
		{Status: StatusTimeout},
		{Status: StatusNotRun},
	}}
	rep.ComputeSummary()

	assert.Equal(t, Summary{Total: 5, Passed: 2, Failed: 1, Timeout: 1, NotRun: 1}, rep.Summary)
	assert.False(t, rep.Success())

	rep = &Report{Entries: []Entry{{Status: StatusPassed}}}
	rep.ComputeSummary()
	assert.True(t, rep.Success())
}

func TestScenarioDetailFormat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteScenario(dir, "scenario-000", sampleReport()))

	data, err := os.ReadFile(filepath.Join(dir, "scenarios", "scenario-000.json"))
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "scenario_detail", data)
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	ix := BuildIndex("run-1", []ScenarioRef{
		{Name: "storage basics", File: "scenarios/basics.js"},
	})
	require.NoError(t, WriteIndex(dir, ix))
	require.NoError(t, WriteScenario(dir, ix.Scenarios[0].ID, sampleReport()))

	gotIx, err := ReadIndex(dir)
	require.NoError(t, err)
	assert.Equal(t, "run-1", gotIx.RunID)
	assert.Equal(t, Version, gotIx.Version)
	require.Len(t, gotIx.Scenarios, 1)
	assert.Equal(t, "scenario-000", gotIx.Scenarios[0].ID)
	assert.Equal(t, "scenarios/scenario-000.json", gotIx.Scenarios[0].Detail)

	gotRep, err := ReadScenario(dir, "scenario-000")
	require.NoError(t, err)
	assert.Equal(t, sampleReport(), gotRep)
}

func TestIndexLifecycle(t *testing.T) {
	ix := BuildIndex("run-2", []ScenarioRef{
		{Name: "a", File: "a.js"},
		{Name: "b", File: "b.js"},
	})
	assert.Equal(t, StatusPending, ix.Status)
	assert.Equal(t, 2, ix.Summary.TotalScenarios)

	ix.MarkRunning(0)
	assert.Equal(t, StatusRunning, ix.Status)
	assert.Equal(t, StatusRunning, ix.Scenarios[0].Status)

	passing := &Report{Entries: []Entry{{Status: StatusPassed}}}
	passing.ComputeSummary()
	ix.MarkScenario(0, passing, 40, "")
	assert.Equal(t, StatusPassed, ix.Scenarios[0].Status)

	failing := sampleReport()
	ix.MarkRunning(1)
	ix.MarkScenario(1, failing, 25, "")
	assert.Equal(t, StatusFailed, ix.Scenarios[1].Status)

	ix.Finalize()
	assert.Equal(t, StatusFailed, ix.Status)
	require.NotNil(t, ix.EndTime)
	assert.False(t, ix.Success())

	assert.Equal(t, 3, ix.Summary.TotalTests)
	assert.Equal(t, 2, ix.Summary.PassedTests)
	assert.Equal(t, 1, ix.Summary.FailedTests)
}

func TestMarkScenario_ScriptError(t *testing.T) {
	ix := BuildIndex("run-3", []ScenarioRef{{Name: "broken", File: "broken.js"}})

	empty := &Report{}
	empty.ComputeSummary()
	ix.MarkScenario(0, empty, 5, "script error: SyntaxError")

	assert.Equal(t, StatusFailed, ix.Scenarios[0].Status)
	assert.Equal(t, "script error: SyntaxError", ix.Scenarios[0].Error)
	assert.Equal(t, 1, ix.Summary.FailedScenarios)
}

func TestRenderText(t *testing.T) {
	ix := BuildIndex("run-4", []ScenarioRef{
		{Name: "passing suite", File: "a.js"},
		{Name: "failing suite", File: "b.js"},
	})
	passing := &Report{Entries: []Entry{{Status: StatusPassed}}}
	passing.ComputeSummary()
	ix.MarkScenario(0, passing, 10, "")
	ix.MarkScenario(1, sampleReport(), 20, "")
	ix.Finalize()

	var buf bytes.Buffer
	RenderText(&buf, ix)
	out := buf.String()

	assert.Contains(t, out, "[PASS] passing suite")
	assert.Contains(t, out, "[FAIL] failing suite")
	assert.Contains(t, out, "2 scenarios: 1 passed, 1 failed")
	assert.Contains(t, out, "3 tests: 2 passed, 1 failed")
}

func TestRenderFailures(t *testing.T) {
	var buf bytes.Buffer
	RenderFailures(&buf, "storage", sampleReport())
	out := buf.String()

	assert.NotContains(t, out, "connection opens")
	assert.Contains(t, out, "storage :: rejects bad key [failed]")
	assert.Contains(t, out, "expected: DataError")
	assert.Contains(t, out, "actual:   TypeError")
}

func TestGenerateHTML(t *testing.T) {
	dir := t.TempDir()
	ix := BuildIndex("run-5", []ScenarioRef{{Name: "storage basics", File: "a.js"}})
	ix.MarkScenario(0, sampleReport(), 15, "")
	ix.Finalize()
	require.NoError(t, WriteIndex(dir, ix))
	require.NoError(t, WriteScenario(dir, "scenario-000", sampleReport()))

	require.NoError(t, GenerateHTML(dir, HTMLConfig{Title: "Storage Conformance"}))

	data, err := os.ReadFile(filepath.Join(dir, "report.html"))
	require.NoError(t, err)
	html := string(data)
	assert.True(t, strings.Contains(html, "Storage Conformance"))
	assert.True(t, strings.Contains(html, "storage basics"))
	assert.True(t, strings.Contains(html, "rejects bad key"))
}
