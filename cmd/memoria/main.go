package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "memoria",
		Usage:   "Local code-forensics engine: structured risk reports from git history",
		Version: version,
		Description: `Memoria inspects a file's git history -- who touched it, how often,
what else tends to change alongside it, and whether that coupling has
drifted -- and turns that into a single risk report. Run it once from the
command line, or point an MCP-capable assistant at "memoria serve".`,
		Commands: []*cli.Command{
			serveCmd(),
			analyzeCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
