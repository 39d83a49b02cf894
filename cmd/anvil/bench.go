package main

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sys/cpu"

	"github.com/samcharles93/anvil/internal/job"
	"github.com/samcharles93/anvil/internal/logger"
	"github.com/samcharles93/anvil/pkg/fixp"
)

func benchCmd() *cli.Command {
	var (
		warmupRuns int64
		benchRuns  int64
		lanes      int64
		hidden     int64
		patches    int64
		seed       int64
	)

	return &cli.Command{
		Name:  "bench",
		Usage: "Benchmark the simulated core on a synthetic job",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:        "warmup",
				Usage:       "number of warmup runs",
				Value:       1,
				Destination: &warmupRuns,
			},
			&cli.Int64Flag{
				Name:        "runs",
				Usage:       "number of benchmark runs",
				Value:       5,
				Destination: &benchRuns,
			},
			&cli.Int64Flag{
				Name:        "lanes",
				Usage:       "MAC lane count",
				Value:       16,
				Destination: &lanes,
			},
			&cli.Int64Flag{
				Name:        "hidden",
				Usage:       "hidden dimension (output rows)",
				Value:       64,
				Destination: &hidden,
			},
			&cli.Int64Flag{
				Name:        "patches",
				Usage:       "output patch count (output columns)",
				Value:       64,
				Destination: &patches,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "operand generator seed",
				Value:       1,
				Destination: &seed,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			logHostInfo(log)

			j := syntheticJob(int(lanes), int(hidden), int(patches), seed)
			log.Info("benchmark job",
				"lanes", j.Lanes, "hidden", j.Hidden, "patches", j.Patches)

			for i := int64(0); i < warmupRuns; i++ {
				if _, err := job.Run(ctx, j, nil); err != nil {
					return cli.Exit(fmt.Sprintf("error: warmup run: %v", err), 1)
				}
			}

			var totalTicks uint64
			var totalWall time.Duration
			for i := int64(0); i < benchRuns; i++ {
				start := time.Now()
				res, err := job.Run(ctx, j, nil)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: benchmark run: %v", err), 1)
				}
				wall := time.Since(start)
				totalTicks += res.Ticks
				totalWall += wall
				log.Info("run complete",
					"run", i+1,
					"ticks", res.Ticks,
					"elements", res.Elements,
					"wall", wall)
			}

			if totalWall > 0 {
				perSec := float64(totalTicks) / totalWall.Seconds()
				fmt.Printf("runs:       %d\n", benchRuns)
				fmt.Printf("ticks:      %d\n", totalTicks)
				fmt.Printf("wall:       %s\n", totalWall)
				fmt.Printf("ticks/sec:  %.0f\n", perSec)
			}
			return nil
		},
	}
}

// syntheticJob builds a deterministic full-range job for benchmarking.
func syntheticJob(lanes, hidden, patches int, seed int64) *job.Job {
	rng := rand.New(rand.NewSource(seed))
	min, max := fixp.MinMax(job.DefaultWidth)
	span := int(max - min + 1)
	wmin, wmax := fixp.MinMax(2 * job.DefaultWidth)
	wspan := int(wmax - wmin + 1)

	j := &job.Job{
		Width:   job.DefaultWidth,
		Lanes:   lanes,
		Hidden:  hidden,
		Patches: patches,
		Input:   make([]int32, hidden*lanes),
		Weights: make([]int32, lanes*patches),
		Bias:    make([]int32, hidden*patches),
	}
	for i := range j.Input {
		j.Input[i] = int32(min) + int32(rng.Intn(span))
	}
	for i := range j.Weights {
		j.Weights[i] = int32(min) + int32(rng.Intn(span))
	}
	for i := range j.Bias {
		j.Bias[i] = int32(wmin) + int32(rng.Intn(wspan))
	}
	return j
}

// logHostInfo records the machine the benchmark ran on.
func logHostInfo(log logger.Logger) {
	args := []any{
		"go", runtime.Version(),
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
		"cpus", runtime.NumCPU(),
	}
	switch runtime.GOARCH {
	case "amd64":
		args = append(args, "avx2", cpu.X86.HasAVX2, "avx512", cpu.X86.HasAVX512F)
	case "arm64":
		args = append(args, "neon", cpu.ARM64.HasASIMD, "sve", cpu.ARM64.HasSVE)
	}
	log.Info("host", args...)
}
