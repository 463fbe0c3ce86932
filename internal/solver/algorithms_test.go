package solver

import (
	"errors"
	"strings"
	"testing"
)

func TestCanonicalAlgorithm(t *testing.T) {
	id, err := CanonicalAlgorithm("  A* ")
	if err != nil || id != "astar" {
		t.Fatalf("expected astar, got %q %v", id, err)
	}
	if _, err := CanonicalAlgorithm("dijkstr"); !errors.Is(err, ErrUnknownAlgorithm) || !strings.Contains(err.Error(), "dijkstra") {
		t.Fatalf("expected suggestion, got %v", err)
	}
	if _, err := CanonicalAlgorithm("simulated-annealing"); err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("expected plain unknown error, got %v", err)
	}
}

func TestNextAlgorithmWraps(t *testing.T) {
	if got := NextAlgorithm("jps"); got != "astar" {
		t.Fatalf("expected wrap to astar, got %s", got)
	}
	if got := NextAlgorithm("astar"); got != "bfs" {
		t.Fatalf("expected bfs after astar, got %s", got)
	}
	if got := NextAlgorithm("nope"); got != Algorithms[0] {
		t.Fatalf("expected first algorithm for unknown, got %s", got)
	}
}

func TestDecodeMaze(t *testing.T) {
	p, err := DecodeMaze([]byte(`{"grid": [[false, true], [false, false]], "start": [0,0], "end": [1,1]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !p.Grid[0][1] || p.End != [2]int{1, 1} {
		t.Fatalf("unexpected payload %+v", p)
	}
	if _, err := DecodeMaze([]byte(`{"grid": [], "start": [0,0], "end": [1,1]}`)); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected empty grid rejected, got %v", err)
	}
	if _, err := DecodeMaze([]byte(`{"grid": [[false]], "start": [-1,0], "end": [0,0]}`)); err == nil {
		t.Fatalf("expected negative coordinate rejected")
	}
}
