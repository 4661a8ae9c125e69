package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:   "tapfix",
		Usage:  "SIMH tape image trailer toolkit",
		Flags:  loggingFlags(),
		Before: setupLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			checkCmd(),
			fixCmd(),
			infoCmd(),
			serveCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
