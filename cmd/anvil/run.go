package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/anvil/internal/core"
	"github.com/samcharles93/anvil/internal/job"
	"github.com/samcharles93/anvil/internal/logger"
)

func runCmd() *cli.Command {
	var trace bool

	flags := append([]cli.Flag{}, jobFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:        "trace",
			Usage:       "log every placed output element",
			Destination: &trace,
		},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Run one job file through the accelerator core",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			j, err := job.Load(jobPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			log.Info("job loaded",
				"path", jobPath,
				"width", j.Width,
				"lanes", j.Lanes,
				"hidden", j.Hidden,
				"patches", j.Patches)

			var traceFn core.TraceFunc
			if trace {
				traceFn = func(ev core.TraceEvent) {
					log.Debug("element placed",
						"tick", ev.Tick,
						"row", ev.Row,
						"col", ev.Col,
						"sum", ev.Sum,
						"bias", ev.Bias,
						"result", ev.Result)
				}
			}

			res, err := job.Run(ctx, j, traceFn)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			log.Info("job complete", "elements", res.Elements, "ticks", res.Ticks)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}
