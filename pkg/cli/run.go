package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/webplat-dev/harness-runner/pkg/config"
	"github.com/webplat-dev/harness-runner/pkg/logger"
	"github.com/webplat-dev/harness-runner/pkg/manifest"
	"github.com/webplat-dev/harness-runner/pkg/report"
	"github.com/webplat-dev/harness-runner/pkg/runner"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Execute scenario files or suite manifests",
		ArgsUsage: "[manifest.yaml | glob ...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "parallel",
				Usage:   "Number of scenario files to run concurrently",
				EnvVars: []string{"HARNESS_PARALLEL"},
			},
			&cli.BoolFlag{
				Name:  "stop-on-fail",
				Usage: "Stop the run after the first failing scenario",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Default per-test timeout",
			},
			&cli.IntFlag{
				Name:  "long-multiplier",
				Usage: "Timeout factor for tests tagged long",
			},
			&cli.StringSliceFlag{
				Name:  "include-tags",
				Usage: "Only run scenarios with one of these tags",
			},
			&cli.StringSliceFlag{
				Name:  "exclude-tags",
				Usage: "Skip scenarios with one of these tags",
			},
			&cli.BoolFlag{
				Name:  "no-html",
				Usage: "Skip HTML report generation",
			},
			&cli.BoolFlag{
				Name:  "allure",
				Usage: "Also write Allure-compatible results",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	if c.Bool("no-ansi") {
		colorsEnabled = false
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyRunFlags(c, cfg)

	args := c.Args().Slice()
	if len(args) == 0 {
		args = cfg.Scenarios
	}
	if len(args) == 0 {
		return fmt.Errorf("no scenarios given: pass a manifest or glob, or set scenarios in config.yaml")
	}

	scenarios, err := manifest.Collect(args)
	if err != nil {
		return err
	}
	scenarios = manifest.FilterTags(scenarios, cfg.IncludeTags, cfg.ExcludeTags)
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios matched")
	}

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := logger.Init(filepath.Join(cfg.Output, "run.log"), c.Bool("verbose")); err != nil {
		return err
	}
	defer logger.Close()

	r := runner.New(runner.Config{
		OutputDir:      cfg.Output,
		Parallelism:    cfg.Parallelism,
		StopOnFail:     cfg.StopOnFail,
		DefaultTimeout: cfg.Timeout.Std(),
		LongMultiplier: cfg.LongTimeoutMultiplier,
		OnScenarioStart: func(idx, total int, name, file string) {
			fmt.Printf("%s[%d/%d]%s %s%s%s (%s)\n",
				color(colorCyan), idx+1, total, color(colorReset),
				color(colorBold), name, color(colorReset), file)
		},
		OnTestComplete: func(scenario string, entry report.Entry) {
			symbol := color(colorGreen) + "✓" + color(colorReset)
			if entry.Status != report.StatusPassed {
				symbol = color(colorRed) + "✗" + color(colorReset)
			}
			fmt.Printf("    %s %s %s(%dms)%s\n",
				symbol, entry.Name, color(colorGray), entry.DurationMs, color(colorReset))
			if entry.Message != "" {
				fmt.Printf("      %s╰─%s %s\n", color(colorGray), color(colorReset), entry.Message)
			}
		},
		OnScenarioEnd: func(name string, passed bool, durationMs int64) {
			mark := color(colorGreen) + "PASS" + color(colorReset)
			if !passed {
				mark = color(colorRed) + "FAIL" + color(colorReset)
			}
			fmt.Printf("  %s %s(%dms)%s\n", mark, color(colorGray), durationMs, color(colorReset))
		},
	})

	index, err := r.Run(c.Context, scenarios)
	if err != nil {
		return err
	}

	fmt.Println()
	report.RenderText(os.Stdout, index)
	printFailures(cfg.Output, index)

	if !c.Bool("no-html") {
		if err := report.GenerateHTML(cfg.Output, report.HTMLConfig{}); err != nil {
			return err
		}
		fmt.Printf("\nHTML report: %s\n", filepath.Join(cfg.Output, "report.html"))
	}
	if c.Bool("allure") {
		if err := report.GenerateAllure(cfg.Output, Version); err != nil {
			return err
		}
		fmt.Printf("Allure results: %s\n", filepath.Join(cfg.Output, "allure-results"))
	}

	if !index.Success() {
		return cli.Exit("", 1)
	}
	return nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadFromDir(".")
}

// applyRunFlags lets command-line flags override the workspace config.
func applyRunFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("parallel") {
		cfg.Parallelism = c.Int("parallel")
	}
	if c.IsSet("stop-on-fail") {
		cfg.StopOnFail = c.Bool("stop-on-fail")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = config.Duration(c.Duration("timeout"))
	}
	if c.IsSet("long-multiplier") {
		cfg.LongTimeoutMultiplier = c.Int("long-multiplier")
	}
	if c.IsSet("include-tags") {
		cfg.IncludeTags = c.StringSlice("include-tags")
	}
	if c.IsSet("exclude-tags") {
		cfg.ExcludeTags = c.StringSlice("exclude-tags")
	}
	if cfg.Output == "" {
		cfg.Output = "report"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.Duration(10 * time.Second)
	}
}

func printFailures(dir string, index *report.Index) {
	printedHeader := false
	for _, sc := range index.Scenarios {
		if sc.Status != report.StatusFailed {
			continue
		}
		detail, err := report.ReadScenario(dir, sc.ID)
		if err != nil {
			continue
		}
		if !printedHeader {
			fmt.Println("\nFailures:")
			printedHeader = true
		}
		report.RenderFailures(os.Stdout, sc.Name, detail)
	}
}
