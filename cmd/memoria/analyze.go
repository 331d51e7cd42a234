package main

import (
	"fmt"

	"github.com/byronwade/memoria/internal/output"
	"github.com/byronwade/memoria/internal/pipeline"
	"github.com/byronwade/memoria/internal/progress"
	"github.com/urfave/cli/v2"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Run the pipeline once for a file and print its risk report",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format: table (default), json, or toon",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored table output",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("usage: memoria analyze <path>")
	}
	target := c.Args().First()

	repoRoot, err := repoRootFor(target)
	if err != nil {
		return fmt.Errorf("not a git repository: %w", err)
	}

	spinner := progress.NewSpinner("Analyzing " + target + "...")
	coord := pipeline.New(repoRoot)
	rep, err := coord.AnalyzeFile(c.Context, target)
	if err != nil {
		spinner.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	spinner.FinishSuccess()

	formatter := output.NewFormatter(output.ParseFormat(c.String("format")), !c.Bool("no-color"))
	return formatter.Output(rep)
}
