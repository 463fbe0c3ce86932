package solver

import (
	"fmt"

	"pathgrid/internal/maze"
)

type checkFunc func(m *maze.Model, res Result) error

type responseCheck struct {
	id string
	fn checkFunc
	// foundOnly checks apply to responses that claim a path.
	foundOnly bool
}

var responseChecks = []responseCheck{
	{id: "in_bounds", fn: checkInBounds},
	{id: "path_endpoints", fn: checkPathEndpoints, foundOnly: true},
	{id: "path_contiguous", fn: checkPathContiguous, foundOnly: true},
	{id: "path_avoids_walls", fn: checkPathAvoidsWalls, foundOnly: true},
}

// verify runs the response checks against the maze the request was built
// from and reports the first failure.
func verify(m *maze.Model, res Result) error {
	for _, c := range responseChecks {
		if c.foundOnly && !res.Found {
			continue
		}
		if err := c.fn(m, res); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, c.id, err)
		}
	}
	return nil
}

func checkInBounds(m *maze.Model, res Result) error {
	for _, c := range res.Visited {
		if !m.InBounds(c) {
			return fmt.Errorf("visited cell %s outside %dx%d", c, m.Rows(), m.Cols())
		}
	}
	for _, c := range res.Path {
		if !m.InBounds(c) {
			return fmt.Errorf("path cell %s outside %dx%d", c, m.Rows(), m.Cols())
		}
	}
	return nil
}

func checkPathEndpoints(m *maze.Model, res Result) error {
	if len(res.Path) == 0 {
		return fmt.Errorf("empty path")
	}
	if first := res.Path[0]; first != m.Start() {
		return fmt.Errorf("path starts at %s, want %s", first, m.Start())
	}
	if last := res.Path[len(res.Path)-1]; last != m.End() {
		return fmt.Errorf("path ends at %s, want %s", last, m.End())
	}
	return nil
}

func checkPathContiguous(_ *maze.Model, res Result) error {
	for i := 1; i < len(res.Path); i++ {
		if !res.Path[i-1].Adjacent(res.Path[i]) {
			return fmt.Errorf("step %d jumps from %s to %s", i, res.Path[i-1], res.Path[i])
		}
	}
	return nil
}

func checkPathAvoidsWalls(m *maze.Model, res Result) error {
	for _, c := range res.Path {
		if m.IsWall(c) {
			return fmt.Errorf("path crosses wall at %s", c)
		}
	}
	return nil
}
