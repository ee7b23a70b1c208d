package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

// HTMLConfig contains configuration for HTML report generation.
type HTMLConfig struct {
	OutputPath string // Path to write the HTML file (default: <dir>/report.html)
	Title      string // Report title (default: "Conformance Report")
}

// GenerateHTML renders the run index and every scenario detail in dir
// into a single self-contained HTML page.
func GenerateHTML(reportDir string, cfg HTMLConfig) error {
	index, err := ReadIndex(reportDir)
	if err != nil {
		return err
	}

	if cfg.Title == "" {
		cfg.Title = "Conformance Report"
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join(reportDir, "report.html")
	}

	data := htmlData{Title: cfg.Title, Index: index}
	for _, entry := range index.Scenarios {
		detail, err := ReadScenario(reportDir, entry.ID)
		if err != nil {
			// A scenario that never ran has no detail file.
			detail = &Report{}
		}
		data.Scenarios = append(data.Scenarios, htmlScenario{
			Entry:  entry,
			Detail: detail,
		})
	}

	var out strings.Builder
	if err := htmlTmpl.Execute(&out, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if err := os.WriteFile(cfg.OutputPath, []byte(out.String()), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

type htmlData struct {
	Title     string
	Index     *Index
	Scenarios []htmlScenario
}

type htmlScenario struct {
	Entry  ScenarioEntry
	Detail *Report
}

var htmlTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem; color: #1a1a1a; }
h1 { font-size: 1.4rem; }
.summary { display: flex; gap: 1rem; margin: 1rem 0; }
.card { border: 1px solid #ddd; border-radius: 6px; padding: .6rem 1rem; min-width: 6rem; text-align: center; }
.card .n { font-size: 1.4rem; font-weight: 600; display: block; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5rem; }
th, td { text-align: left; padding: .35rem .6rem; border-bottom: 1px solid #eee; font-size: .88rem; }
.status { font-weight: 600; text-transform: uppercase; font-size: .75rem; }
.status.passed { color: #1a7f37; }
.status.failed { color: #cf222e; }
.status.timeout { color: #9a6700; }
.status.notrun { color: #6e7781; }
.msg { color: #57606a; font-size: .82rem; }
h2 { font-size: 1.05rem; margin-top: 1.6rem; }
.meta { color: #57606a; font-size: .82rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Run {{.Index.RunID}} &middot; started {{.Index.StartTime.Format "2006-01-02 15:04:05 MST"}} &middot; <span class="status {{.Index.Status}}">{{.Index.Status}}</span></p>
<div class="summary">
  <div class="card"><span class="n">{{.Index.Summary.TotalTests}}</span>tests</div>
  <div class="card"><span class="n">{{.Index.Summary.PassedTests}}</span>passed</div>
  <div class="card"><span class="n">{{.Index.Summary.FailedTests}}</span>failed</div>
  <div class="card"><span class="n">{{.Index.Summary.TimeoutTests}}</span>timeout</div>
  <div class="card"><span class="n">{{.Index.Summary.NotRunTests}}</span>not run</div>
</div>
{{range .Scenarios}}
<h2>{{.Entry.Name}} <span class="status {{.Entry.Status}}">{{.Entry.Status}}</span></h2>
<p class="meta">{{.Entry.File}} &middot; {{.Entry.DurationMs}} ms{{if .Entry.Error}} &middot; {{.Entry.Error}}{{end}}</p>
{{if .Detail.Entries}}
<table>
<tr><th>#</th><th>Test</th><th>Status</th><th>Duration</th><th>Detail</th></tr>
{{range .Detail.Entries}}
<tr>
  <td>{{.Ordinal}}</td>
  <td>{{.Name}}</td>
  <td><span class="status {{.Status}}">{{.Status}}</span></td>
  <td>{{.DurationMs}} ms</td>
  <td class="msg">{{.Message}}{{if .Expected}} (expected {{.Expected}}, got {{.Actual}}){{end}}</td>
</tr>
{{end}}
</table>
{{end}}
{{end}}
</body>
</html>
`))
