package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/webplat-dev/harness-runner/pkg/report"
)

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Summarize an existing run and regenerate its HTML report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Report directory containing report.json",
				Value:   "report",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "HTML report title",
			},
			&cli.BoolFlag{
				Name:  "no-html",
				Usage: "Only print the text summary",
			},
			&cli.BoolFlag{
				Name:  "allure",
				Usage: "Also write Allure-compatible results",
			},
		},
		Action: reportAction,
	}
}

func reportAction(c *cli.Context) error {
	dir := c.String("input")
	index, err := report.ReadIndex(dir)
	if err != nil {
		return err
	}

	report.RenderText(os.Stdout, index)

	if !c.Bool("no-html") {
		cfg := report.HTMLConfig{Title: c.String("title")}
		if err := report.GenerateHTML(dir, cfg); err != nil {
			return err
		}
		fmt.Printf("\nHTML report: %s\n", filepath.Join(dir, "report.html"))
	}
	if c.Bool("allure") {
		if err := report.GenerateAllure(dir, Version); err != nil {
			return err
		}
		fmt.Printf("Allure results: %s\n", filepath.Join(dir, "allure-results"))
	}
	return nil
}
