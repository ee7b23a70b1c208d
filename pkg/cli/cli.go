// Package cli provides the command-line interface for harness-runner.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Workspace config file (default: config.yaml in the working directory)",
		EnvVars: []string{"HARNESS_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Report output directory",
		EnvVars: []string{"HARNESS_OUTPUT"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"HARNESS_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "harness-runner",
		Usage:   "Conformance test harness for web-platform scenario suites",
		Version: Version,
		Description: `harness-runner executes scenario scripts written against the test
harness contract (test, async_test, promise_test, assert_*) and
produces JSON and HTML conformance reports.

Examples:
   harness-runner run suites/idb/manifest.yaml
   harness-runner run 'scenarios/*.js' --timeout 5s
   harness-runner report --input report`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			runCommand(),
			reportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
