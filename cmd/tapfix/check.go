package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/acms-au/tapfix/internal/batch"
	"github.com/acms-au/tapfix/internal/logger"
)

func checkCmd() *cli.Command {
	var (
		verbose bool
		jsonOut bool
	)

	return &cli.Command{
		Name:      "check",
		Usage:     "Report tape images with extra trailing tape marks",
		ArgsUsage: "<file.tap>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "also report files that are already OK",
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

			report, err := batch.Run(files, batch.Options{Mode: batch.ModeCheck}, logger.FromContext(ctx))
			if err != nil {
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
