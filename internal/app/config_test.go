package app

import (
	"strings"
	"testing"
	"time"

	"pathgrid/internal/solver"
	"pathgrid/internal/state"
	"pathgrid/internal/ui"
)

func TestValidateFillsDefaults(t *testing.T) {
	cfg := Config{MockSolver: true, DataDir: t.TempDir()}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Rows != 20 || cfg.Cols != 30 || cfg.MinDim != 10 || cfg.MaxDim != 50 {
		t.Fatalf("unexpected grid defaults %+v", cfg)
	}
	if cfg.Algorithm != "astar" || cfg.Delay() != 50*time.Millisecond {
		t.Fatalf("unexpected solve defaults %s %v", cfg.Algorithm, cfg.Delay())
	}
	if !strings.HasPrefix(cfg.PresetDir, cfg.DataDir) {
		t.Fatalf("expected preset dir under data dir, got %s", cfg.PresetDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"rows below bound": func(c *Config) { c.Rows = 5 },
		"cols above bound": func(c *Config) { c.Cols = 80 },
		"algorithm":        func(c *Config) { c.Algorithm = "teleport" },
		"density":          func(c *Config) { c.Density = 1.5 },
		"scenario":         func(c *Config) { c.MockScenario = "flaky" },
		"style":            func(c *Config) { c.UI.StyleVariant = "neon" },
		"no solver":        func(c *Config) { c.SolverURL = "" },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		cfg.DataDir = t.TempDir()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestValidateClampsDelayAndCanonicalizesAlgorithm(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.DelayMS = 5000
	cfg.Algorithm = "A*"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Delay() != MaxDelay {
		t.Fatalf("expected delay clamped to %v, got %v", MaxDelay, cfg.Delay())
	}
	if cfg.Algorithm != "astar" {
		t.Fatalf("expected canonical astar, got %s", cfg.Algorithm)
	}
}

func TestLoadEnvPinsKeys(t *testing.T) {
	t.Setenv("PATHGRID_ALGORITHM", "dfs")
	t.Setenv("PATHGRID_ROWS", "12")
	cfg := DefaultConfig()
	if err := LoadEnv(&cfg); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if cfg.Algorithm != "dfs" || cfg.Rows != 12 {
		t.Fatalf("expected env overlay, got %s %d", cfg.Algorithm, cfg.Rows)
	}
	if !cfg.Pinned("algorithm") || cfg.Pinned("delay_ms") {
		t.Fatalf("expected only set keys pinned, got %v", cfg.pinned)
	}
}

func TestApplySettingsRespectsPins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pin("algorithm")
	cfg.ApplySettings(map[string]string{
		"algorithm": "bfs",
		"delay_ms":  "120",
		"style":     "retro_terminal",
	})
	if cfg.Algorithm != "astar" {
		t.Fatalf("expected pinned algorithm kept, got %s", cfg.Algorithm)
	}
	if cfg.DelayMS != 120 || cfg.UI.StyleVariant != "retro_terminal" {
		t.Fatalf("expected unpinned settings applied, got %d %s", cfg.DelayMS, cfg.UI.StyleVariant)
	}

	cfg.ApplySettings(map[string]string{"delay_ms": "fast", "style": "neon"})
	if cfg.DelayMS != 120 || cfg.UI.StyleVariant != "retro_terminal" {
		t.Fatalf("expected bad values skipped")
	}
	if got := cfg.Settings(); got["delay_ms"] != "120" || got["algorithm"] != "astar" {
		t.Fatalf("unexpected settings %v", got)
	}
}

func TestStepDelayClamps(t *testing.T) {
	if got := stepDelay(50*time.Millisecond, 2); got != 30*time.Millisecond {
		t.Fatalf("expected 30ms, got %v", got)
	}
	if got := stepDelay(190*time.Millisecond, -5); got != MaxDelay {
		t.Fatalf("expected clamp to %v, got %v", MaxDelay, got)
	}
	if got := SliderDelay(200); got != MinDelay {
		t.Fatalf("expected fastest slider to give %v, got %v", MinDelay, got)
	}
	if got := SliderDelay(160); got != 50*time.Millisecond {
		t.Fatalf("expected 50ms, got %v", got)
	}
}

func TestExplainWithoutRun(t *testing.T) {
	md := buildExplainMarkdown("bfs", nil, ui.StatsRow{})
	if !strings.HasPrefix(md, "# "+solver.Label("bfs")) {
		t.Fatalf("expected heading, got %q", md)
	}
	if !strings.Contains(md, "shortest path") || !strings.Contains(md, "**space**") {
		t.Fatalf("expected notes and run hint, got %q", md)
	}
}

func TestExplainSummarizesLastRun(t *testing.T) {
	last := &solver.Result{Algorithm: "dfs"}
	md := buildExplainMarkdown("dfs", last, ui.StatsRow{NodesVisited: 1200, PathLength: 40, TimeTakenMS: 3.5, Outcome: state.OutcomeFound})
	if !strings.Contains(md, "1,200") {
		t.Fatalf("expected humanized node count, got %q", md)
	}
	if !strings.Contains(md, "30.0 cells") || !strings.Contains(md, "optimal") {
		t.Fatalf("expected ratio and optimality hint, got %q", md)
	}

	md = buildExplainMarkdown("bfs", &solver.Result{Algorithm: "bfs"}, ui.StatsRow{NodesVisited: 30, Outcome: state.OutcomeUnreachable})
	if !strings.Contains(md, "walled off") {
		t.Fatalf("expected unreachable note, got %q", md)
	}
}
