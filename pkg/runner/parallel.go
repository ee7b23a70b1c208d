package runner

import (
	"context"
	"sync"

	"github.com/webplat-dev/harness-runner/pkg/logger"
	"github.com/webplat-dev/harness-runner/pkg/manifest"
	"github.com/webplat-dev/harness-runner/pkg/report"
)

// workItem is one scenario plus its position in the run index.
type workItem struct {
	scenario manifest.Scenario
	index    int
}

// runParallel executes scenario files across a worker pool. Each file
// still runs on a single-threaded suite internally; only whole files
// run concurrently. Index updates are serialized.
func (r *Runner) runParallel(ctx context.Context, index *report.Index, scenarios []manifest.Scenario) error {
	workers := r.cfg.Parallelism
	if workers > len(scenarios) {
		workers = len(scenarios)
	}

	queue := make(chan workItem)
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		stopped bool
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for item := range queue {
				mu.Lock()
				if stopped {
					mu.Unlock()
					continue
				}
				if r.cfg.OnScenarioStart != nil {
					r.cfg.OnScenarioStart(item.index, len(scenarios),
						item.scenario.DisplayName(), item.scenario.File)
				}
				index.MarkRunning(item.index)
				if err := report.WriteIndex(r.cfg.OutputDir, index); err != nil {
					logger.Error("write index: %v", err)
				}
				mu.Unlock()

				rep, scErr, durMs := r.runScenario(ctx, item.scenario)

				mu.Lock()
				r.recordScenario(index, item.index, rep, scErr, durMs)
				failed := index.Scenarios[item.index].Status == report.StatusFailed
				if r.cfg.OnTestComplete != nil {
					for _, entry := range rep.Entries {
						r.cfg.OnTestComplete(item.scenario.DisplayName(), entry)
					}
				}
				if r.cfg.OnScenarioEnd != nil {
					r.cfg.OnScenarioEnd(item.scenario.DisplayName(), !failed, durMs)
				}
				if failed && r.cfg.StopOnFail {
					stopped = true
					logger.Warn("worker %d: stopping run after failure in %s",
						workerID, item.scenario.DisplayName())
				}
				mu.Unlock()
			}
		}(w)
	}

	var err error
feed:
	for i, s := range scenarios {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case queue <- workItem{scenario: s, index: i}:
		}
	}
	close(queue)
	wg.Wait()
	return err
}
