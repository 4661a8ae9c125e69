package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/acms-au/tapfix/internal/api"
	"github.com/acms-au/tapfix/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		tapesDir    string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve trailer checks and repairs over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "tapes-dir",
				Usage:       "directory containing .tap images",
				Value:       ".",
				Destination: &tapesDir,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			cfg := loadConfig()
			if cfg.ServerAddress != "" && !cmd.IsSet("addr") {
				addr = cfg.ServerAddress
			}
			if cfg.TapesDir != "" && !cmd.IsSet("tapes-dir") {
				tapesDir = cfg.TapesDir
			}

			if stat, err := os.Stat(tapesDir); err != nil || !stat.IsDir() {
				return cli.Exit("error: --tapes-dir must be an existing directory", 1)
			}

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			api.NewServer(tapesDir, log).Register(e)

			log.Info("starting server", "address", addr, "tapes_dir", tapesDir)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
