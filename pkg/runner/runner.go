// Package runner orchestrates scenario execution, connecting the
// script engine and harness suites to report output.
package runner

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/webplat-dev/harness-runner/pkg/harness"
	"github.com/webplat-dev/harness-runner/pkg/jsengine"
	"github.com/webplat-dev/harness-runner/pkg/logger"
	"github.com/webplat-dev/harness-runner/pkg/manifest"
	"github.com/webplat-dev/harness-runner/pkg/report"
)

// Config configures the scenario runner.
type Config struct {
	OutputDir   string // Report output directory
	Parallelism int    // Max concurrent scenario files (0/1 = sequential)
	StopOnFail  bool   // Stop the run after the first failing scenario

	// Timeout policy forwarded to each suite
	DefaultTimeout time.Duration
	LongMultiplier int

	// Live progress callbacks
	OnScenarioStart func(idx, total int, name, file string)
	OnTestComplete  func(scenario string, entry report.Entry)
	OnScenarioEnd   func(name string, passed bool, durationMs int64)
}

// Runner executes scenario files and maintains the run report.
type Runner struct {
	cfg Config
}

// New creates a Runner.
func New(cfg Config) *Runner {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "report"
	}
	return &Runner{cfg: cfg}
}

// Run executes all scenarios and returns the final run index. The
// index and per-scenario details are written to the output directory
// as the run progresses, so consumers can poll report.json live.
func (r *Runner) Run(ctx context.Context, scenarios []manifest.Scenario) (*report.Index, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios to run")
	}
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	runID := uuid.NewString()
	refs := make([]report.ScenarioRef, len(scenarios))
	for i, s := range scenarios {
		refs[i] = report.ScenarioRef{Name: s.DisplayName(), File: s.File}
	}
	index := report.BuildIndex(runID, refs)
	if err := report.WriteIndex(r.cfg.OutputDir, index); err != nil {
		return nil, err
	}
	logger.Info("run %s: %d scenarios", runID, len(scenarios))

	if r.cfg.Parallelism > 1 {
		if err := r.runParallel(ctx, index, scenarios); err != nil {
			return index, err
		}
	} else {
		if err := r.runSequential(ctx, index, scenarios); err != nil {
			return index, err
		}
	}

	index.Finalize()
	if err := report.WriteIndex(r.cfg.OutputDir, index); err != nil {
		return index, err
	}
	logger.Info("run %s finished: %s", runID, index.Status)
	return index, nil
}

func (r *Runner) runSequential(ctx context.Context, index *report.Index, scenarios []manifest.Scenario) error {
	for i, s := range scenarios {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.cfg.OnScenarioStart != nil {
			r.cfg.OnScenarioStart(i, len(scenarios), s.DisplayName(), s.File)
		}
		index.MarkRunning(i)
		if err := report.WriteIndex(r.cfg.OutputDir, index); err != nil {
			logger.Error("write index: %v", err)
		}

		rep, scErr, durMs := r.runScenario(ctx, s)
		r.recordScenario(index, i, rep, scErr, durMs)

		if r.cfg.OnTestComplete != nil {
			for _, entry := range rep.Entries {
				r.cfg.OnTestComplete(s.DisplayName(), entry)
			}
		}
		if r.cfg.OnScenarioEnd != nil {
			r.cfg.OnScenarioEnd(s.DisplayName(), index.Scenarios[i].Status == report.StatusPassed, durMs)
		}
		if r.cfg.StopOnFail && index.Scenarios[i].Status == report.StatusFailed {
			logger.Warn("stopping run after failure in %s", s.DisplayName())
			break
		}
	}
	return nil
}

func (r *Runner) recordScenario(index *report.Index, i int, rep *report.Report, scErr string, durMs int64) {
	if err := report.WriteScenario(r.cfg.OutputDir, index.Scenarios[i].ID, rep); err != nil {
		logger.Error("write scenario detail %s: %v", index.Scenarios[i].ID, err)
	}
	index.MarkScenario(i, rep, durMs, scErr)
	if err := report.WriteIndex(r.cfg.OutputDir, index); err != nil {
		logger.Error("write index: %v", err)
	}
}

// runScenario executes one scenario file in its own suite and engine.
// Returns the drained report, a scenario-level error (script failure,
// uncaught timer error, cancellation), and the duration.
func (r *Runner) runScenario(ctx context.Context, s manifest.Scenario) (*report.Report, string, int64) {
	start := time.Now()
	name := s.DisplayName()

	timeout := r.cfg.DefaultTimeout
	if d, ok := s.TimeoutOverride(); ok {
		timeout = d
	}
	opts := []harness.Option{harness.WithClassifier(jsengine.Classify)}
	if timeout > 0 {
		opts = append(opts, harness.WithDefaultTimeout(timeout))
	}
	if r.cfg.LongMultiplier > 0 {
		opts = append(opts, harness.WithLongMultiplier(r.cfg.LongMultiplier))
	}
	suite := harness.NewSuite(opts...)
	eng := jsengine.New(suite, name)
	if s.IsLong() {
		// Manifest-level long tag: every test in the file gets the
		// extended window, same as a script-level setup call.
		eng.SetLongTimeout()
	}

	var scErr string
	src, err := os.ReadFile(s.File) //#nosec G304 -- validated manifest path
	if err != nil {
		scErr = fmt.Sprintf("read scenario: %v", err)
	} else if err := eng.Run(string(src)); err != nil {
		scErr = err.Error()
		suite.AbandonPending(scErr)
		logger.Error("%s: %s", name, scErr)
	} else {
		if err := suite.Run(ctx); err != nil {
			scErr = err.Error()
		}
		if uncaught := eng.Uncaught(); len(uncaught) > 0 && scErr == "" {
			scErr = "uncaught error: " + strings.Join(uncaught, "; ")
		}
	}

	rep, repErr := suite.Report()
	if repErr != nil {
		if scErr == "" {
			scErr = repErr.Error()
		}
		rep = &report.Report{}
	}
	logger.Info("%s: %d tests, %d passed, %d failed",
		name, rep.Summary.Total, rep.Summary.Passed, rep.Summary.Failed)
	return rep, scErr, time.Since(start).Milliseconds()
}
