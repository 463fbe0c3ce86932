package animate

import (
	"pathgrid/internal/maze"
	"pathgrid/internal/render"
)

type batch struct {
	token render.Token
	cells []maze.Coord
}

// Run is one play of a visited sequence followed by a path sequence.
type Run struct {
	Generation uint64
	Visited    []maze.Coord
	Path       []maze.Coord

	batches    []batch
	next       int
	drawn      int
	resolved   bool
	superseded bool
	done       chan struct{}
}

func newRun(gen uint64, visited, path []maze.Coord, size int) *Run {
	run := &Run{
		Generation: gen,
		Visited:    visited,
		Path:       path,
		done:       make(chan struct{}),
	}
	run.batches = append(run.batches, chunk(visited, size, render.TokenVisited)...)
	run.batches = append(run.batches, chunk(path, size, render.TokenFinalPath)...)
	return run
}

func chunk(cells []maze.Coord, size int, t render.Token) []batch {
	var out []batch
	for i := 0; i < len(cells); i += size {
		j := i + size
		if j > len(cells) {
			j = len(cells)
		}
		out = append(out, batch{token: t, cells: cells[i:j]})
	}
	return out
}

// Done is closed when the run completes or is superseded.
func (r *Run) Done() <-chan struct{} { return r.done }

func (r *Run) Resolved() bool { return r.resolved }

func (r *Run) Superseded() bool { return r.superseded }

func (r *Run) Total() int { return len(r.Visited) + len(r.Path) }

// Progress is the drawn fraction in [0, 1].
func (r *Run) Progress() float64 {
	total := r.Total()
	if total == 0 {
		return 1
	}
	return float64(r.drawn) / float64(total)
}

// Batches is the number of ticks that draw cells.
func (r *Run) Batches() int { return len(r.batches) }
