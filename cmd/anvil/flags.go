package main

import "github.com/urfave/cli/v3"

var (
	jobPath   string
	logLevel  string
	logFormat string
	debug     bool
)

func jobFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "job",
			Aliases:     []string{"j"},
			Usage:       "path to a job file (.yaml, .yml or .json)",
			Required:    true,
			Destination: &jobPath,
		},
	}
}

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
