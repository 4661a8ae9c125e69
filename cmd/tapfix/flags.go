package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/acms-au/tapfix/internal/logger"
)

var (
	logLevel  string
	logFormat string
	debug     bool
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg := loadConfig()
	if cfg.LogLevel != "" && !cmd.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !cmd.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}

	level := logger.ParseLevel(logLevel)
	if debug {
		level = slog.LevelDebug
	}

	var log logger.Logger
	switch logFormat {
	case "json":
		log = logger.JSON(os.Stderr, level)
	case "text":
		log = logger.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	default:
		log = logger.Pretty(os.Stderr, level)
	}
	return logger.WithContext(ctx, log), nil
}
