// Package job loads and runs accelerator job descriptions. A job file fixes
// the core geometry and carries the three input buffers; YAML and JSON are
// both accepted, dispatched on the file extension.
package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/anvil/internal/core"
)

// DefaultWidth is the operand width used when a job does not set one.
const DefaultWidth = 8

// Job describes one full computation: geometry plus the input-vector,
// weight-matrix and bias buffers, flattened exactly as the core expects them.
type Job struct {
	Width    int  `yaml:"width" json:"width"`
	Lanes    int  `yaml:"lanes" json:"lanes"`
	Hidden   int  `yaml:"hidden" json:"hidden"`
	Patches  int  `yaml:"patches" json:"patches"`
	WideBias bool `yaml:"wide_bias" json:"wide_bias"`

	Input   []int32 `yaml:"input" json:"input"`
	Weights []int32 `yaml:"weights" json:"weights"`
	Bias    []int32 `yaml:"bias" json:"bias"`
}

// Result is what a completed job produces.
type Result struct {
	Output   []int32 `json:"output"`
	Elements uint64  `json:"elements"`
	Ticks    uint64  `json:"ticks"`
}

// Load reads a job file. .yaml/.yml parse as YAML, .json as JSON; anything
// else is rejected.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parse(data, yaml.Unmarshal)
	case ".json":
		return parse(data, json.Unmarshal)
	default:
		return nil, fmt.Errorf("job file %q: unsupported extension (want .yaml, .yml or .json)", path)
	}
}

func parse(data []byte, unmarshal func([]byte, any) error) (*Job, error) {
	var j Job
	if err := unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse job: %w", err)
	}
	j.applyDefaults()
	return &j, nil
}

func (j *Job) applyDefaults() {
	if j.Width == 0 {
		j.Width = DefaultWidth
	}
}

// Config derives the core configuration for this job.
func (j *Job) Config() core.Config {
	return core.Config{
		Width:    j.Width,
		Lanes:    j.Lanes,
		Hidden:   j.Hidden,
		Patches:  j.Patches,
		WideBias: j.WideBias,
	}
}

// Validate checks the geometry and buffer sizes without building a core.
func (j *Job) Validate() error {
	if err := j.Config().Validate(); err != nil {
		return err
	}
	if got, want := len(j.Input), j.Hidden*j.Lanes; got != want {
		return fmt.Errorf("input buffer has %d elements, want hidden*lanes = %d", got, want)
	}
	if got, want := len(j.Weights), j.Lanes*j.Patches; got != want {
		return fmt.Errorf("weights buffer has %d elements, want lanes*patches = %d", got, want)
	}
	if got, want := len(j.Bias), j.Hidden*j.Patches; got != want {
		return fmt.Errorf("bias buffer has %d elements, want hidden*patches = %d", got, want)
	}
	return nil
}

// Run builds a core for the job, loads its buffers and drives the computation
// to completion. trace may be nil.
func Run(ctx context.Context, j *Job, trace core.TraceFunc) (*Result, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}
	c, err := core.New(j.Config())
	if err != nil {
		return nil, err
	}
	c.SetTrace(trace)
	if err := c.LoadInput(j.Input); err != nil {
		return nil, err
	}
	if err := c.LoadWeights(j.Weights); err != nil {
		return nil, err
	}
	if err := c.LoadBias(j.Bias); err != nil {
		return nil, err
	}
	out, err := c.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{
		Output:   out,
		Elements: c.Elements(),
		Ticks:    c.Ticks(),
	}, nil
}
