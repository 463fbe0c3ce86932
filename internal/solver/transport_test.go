package solver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"pathgrid/internal/maze"
	"pathgrid/internal/solver"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts need a unix shell")
	}
	path := filepath.Join(t.TempDir(), "solver.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\ncat >/dev/null\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecTransportSolves(t *testing.T) {
	script := writeScript(t, `[ "$1" = "solve" ] || exit 3
echo '{"success":true,"visited":[[0,0],[0,1],[0,2],[1,2]],"path":[[0,0],[0,1],[0,2],[1,2],[2,2]],"stats":{"nodesVisited":4,"pathLength":5,"timeTaken":0.2}}'`)
	tr, err := solver.NewExecTransport(script, 5*time.Second)
	if err != nil {
		t.Fatalf("new exec transport: %v", err)
	}
	g := solver.NewGateway(tr)
	res, err := g.Solve(context.Background(), newModel(t, 3, 3), "bfs")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !res.Found || len(res.Path) != 5 || res.Path[4] != maze.At(2, 2) {
		t.Fatalf("expected 5-cell path to (2,2), got %+v", res)
	}
}

func TestExecTransportFailureIsTransportError(t *testing.T) {
	script := writeScript(t, `echo "solver crashed" >&2
exit 1`)
	tr, err := solver.NewExecTransport(script, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	_, err = solver.NewGateway(tr).Solve(context.Background(), newModel(t, 3, 3), "bfs")
	if !errors.Is(err, solver.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestExecTransportMissingProgram(t *testing.T) {
	if _, err := solver.NewExecTransport("definitely-not-a-solver-binary", 0); !errors.Is(err, solver.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestExecTransportHonorsTimeout(t *testing.T) {
	script := writeScript(t, "exec sleep 10")
	tr, err := solver.NewExecTransport(script, 200*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	started := time.Now()
	_, err = solver.NewGateway(tr).Solve(context.Background(), newModel(t, 3, 3), "bfs")
	if !errors.Is(err, solver.ErrTransport) || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout transport error, got %v", err)
	}
	if elapsed := time.Since(started); elapsed > 5*time.Second {
		t.Fatalf("expected solve to stop near the timeout, took %v", elapsed)
	}
}
