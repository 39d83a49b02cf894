package job

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const yamlJob = `width: 8
lanes: 2
hidden: 1
patches: 1
input: [3, 4]
weights: [2, 5]
bias: [10]
`

const jsonJob = `{
  "lanes": 2,
  "hidden": 1,
  "patches": 1,
  "input": [3, 4],
  "weights": [2, 5],
  "bias": [10]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAMLAndRun(t *testing.T) {
	j, err := Load(writeFile(t, "job.yaml", yamlJob))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	res, err := Run(context.Background(), j, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Output) != 1 || res.Output[0] != 36 {
		t.Fatalf("output = %v, want [36]", res.Output)
	}
	if res.Elements != 1 {
		t.Fatalf("elements = %d, want 1", res.Elements)
	}
	if res.Ticks == 0 {
		t.Fatalf("tick counter missing")
	}
}

func TestLoadJSONDefaultsWidth(t *testing.T) {
	j, err := Load(writeFile(t, "job.json", jsonJob))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if j.Width != DefaultWidth {
		t.Fatalf("width = %d, want default %d", j.Width, DefaultWidth)
	}
	res, err := Run(context.Background(), j, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Output[0] != 36 {
		t.Fatalf("output = %v, want [36]", res.Output)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	if _, err := Load(writeFile(t, "job.toml", "lanes = 2")); err == nil {
		t.Fatalf("unknown extension accepted")
	}
}

func TestValidateBufferSizes(t *testing.T) {
	j := &Job{Width: 8, Lanes: 2, Hidden: 1, Patches: 1,
		Input: []int32{3}, Weights: []int32{2, 5}, Bias: []int32{10}}
	if err := j.Validate(); err == nil {
		t.Fatalf("mis-sized input buffer accepted")
	}
	j.Input = []int32{3, 4}
	if err := j.Validate(); err != nil {
		t.Fatalf("valid job rejected: %v", err)
	}
	j.Bias = nil
	if err := j.Validate(); err == nil {
		t.Fatalf("mis-sized bias buffer accepted")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	j := &Job{Width: 8, Lanes: 1, Hidden: 1, Patches: 1,
		Input: []int32{1}, Weights: []int32{1}, Bias: []int32{0}}
	if _, err := Run(ctx, j, nil); err == nil {
		t.Fatalf("cancelled context not honored")
	}
}
