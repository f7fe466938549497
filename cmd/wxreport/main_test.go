package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chrissnell/wxreport/internal/report"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "storage:\n  backend: memory\nrenderer:\n  engine: static\n  width: 320\n  height: 200\npipeline:\n  workspace-root: " + dir + "\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestRunExitCodes(t *testing.T) {
	cfg := writeTestConfig(t)
	env := filepath.Join(t.TempDir(), "missing.env")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{
			name: "version",
			args: []string{"-version"},
			want: exitOK,
		},
		{
			name: "unknown flag",
			args: []string{"-no-such-flag"},
			want: exitInvalidRequest,
		},
		{
			name: "missing config",
			args: []string{"-env", env, "-config", filepath.Join(t.TempDir(), "nope.yaml"), "-stations", "A", "-parameters", "rainfall"},
			want: exitError,
		},
		{
			name: "no stations",
			args: []string{"-env", env, "-config", cfg, "-parameters", "rainfall", "-out", t.TempDir()},
			want: exitInvalidRequest,
		},
		{
			name: "no data",
			args: []string{"-env", env, "-config", cfg, "-stations", "A", "-parameters", "rainfall", "-range", "All", "-out", t.TempDir()},
			want: exitNoData,
		},
		{
			name: "seeded demo",
			args: []string{"-env", env, "-config", cfg, "-stations", "A", "-parameters", "rainfall", "-range", "All",
				"-seed-demo", "-seed-from", "2022", "-seed-to", "2022", "-out", t.TempDir()},
			want: exitOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestRunWritesReport(t *testing.T) {
	cfg := writeTestConfig(t)
	out := filepath.Join(t.TempDir(), "report")

	code := run([]string{"-env", filepath.Join(t.TempDir(), "missing.env"), "-config", cfg,
		"-stations", "A,B", "-parameters", "rainfall,humidity", "-range", "All",
		"-seed-demo", "-seed-from", "2023", "-seed-to", "2023", "-out", out})
	if code != exitOK {
		t.Fatalf("expected exit %d, got %d", exitOK, code)
	}

	for _, name := range []string{report.ManifestFileName, "rainfall.csv", "humidity.csv", "combined.csv", "rainfall.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("expected %s in the output directory: %v", name, err)
		}
	}
}
