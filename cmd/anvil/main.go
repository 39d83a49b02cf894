package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/anvil/internal/logger"
)

func main() {
	app := &cli.Command{
		Name:   "anvil",
		Usage:  "Fixed-point MAC accelerator core simulator",
		Flags:  loggingFlags(),
		Before: setupLogger,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			runCmd(),
			serveCmd(),
			benchCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogger builds the process logger from the logging flags and stores it
// in the command context.
func setupLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	applyLoggingConfig(cmd, LoadConfig())

	level := logger.ParseLevel(logLevel)
	if debug {
		level = logger.ParseLevel("debug")
	}

	var log logger.Logger
	switch logFormat {
	case "json":
		log = logger.JSON(os.Stderr, level)
	case "text":
		log = logger.Default()
	default:
		log = logger.Pretty(os.Stderr, level)
	}
	return logger.WithContext(ctx, log), nil
}
