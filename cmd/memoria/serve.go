package main

import (
	"fmt"

	"github.com/byronwade/memoria/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "Start the stdio MCP server (analyze_file, ask_history)",
		ArgsUsage: "[repoRoot]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "root",
				Usage: "Repository root to serve (defaults to the git root containing the current directory)",
			},
		},
		Action: runServeCmd,
	}
}

func runServeCmd(c *cli.Context) error {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	if c.Args().Len() > 0 {
		root = c.Args().First()
	}

	repoRoot, err := repoRootFor(root)
	if err != nil {
		return fmt.Errorf("not a git repository: %w", err)
	}

	server := mcpserver.NewServer(version, repoRoot)
	return server.Run(c.Context)
}
