package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/acms-au/tapfix/internal/batch"
	"github.com/acms-au/tapfix/internal/logger"
)

func fixCmd() *cli.Command {
	var (
		output  string
		dryRun  bool
		verbose bool
		jsonOut bool
	)

	return &cli.Command{
		Name:      "fix",
		Usage:     "Remove extra trailing tape marks, leaving the standard double mark",
		ArgsUsage: "<file.tap>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write the fixed image here instead of in place (single input only)",
				Destination: &output,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "report what would change without writing anything",
				Destination: &dryRun,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "also report files that need no fix",
				Destination: &verbose,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit the report as JSON",
				Destination: &jsonOut,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			files := c.Args().Slice()
			if len(files) == 0 {
				return cli.Exit("error: no input files given", 1)
			}
			if !c.IsSet("verbose") {
				verbose = loadConfig().Verbose
			}

			opts := batch.Options{
				Mode:   batch.ModeFix,
				Output: output,
				DryRun: dryRun,
			}
			report, err := batch.Run(files, opts, logger.FromContext(ctx))
			if err != nil {
				// Usage errors (like --output with several inputs) abort
				// before any file is touched.
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := printReport(report, verbose, jsonOut); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if !report.Ok() {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}
