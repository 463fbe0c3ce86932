package solver

import (
	"errors"

	"pathgrid/internal/maze"
)

var (
	// ErrUnreachable is returned with a populated Result: the solver ran and
	// found no path, and Visited still holds whatever it explored.
	ErrUnreachable       = errors.New("no path between start and end")
	ErrTransport         = errors.New("solver transport failed")
	ErrMalformedResponse = errors.New("malformed solver response")
	ErrUnknownAlgorithm  = errors.New("unknown algorithm")
)

// Request is the solve payload.
type Request struct {
	Algorithm string   `json:"algorithm"`
	Grid      [][]bool `json:"grid"`
	Start     [2]int   `json:"start"`
	End       [2]int   `json:"end"`
}

type Stats struct {
	NodesVisited int     `json:"nodesVisited"`
	PathLength   int     `json:"pathLength"`
	TimeTaken    float64 `json:"timeTaken"`
}

type Response struct {
	Success bool     `json:"success"`
	Visited [][2]int `json:"visited,omitempty"`
	Path    [][2]int `json:"path,omitempty"`
	Stats   *Stats   `json:"stats,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type GenerateRequest struct {
	Rows    int     `json:"rows"`
	Cols    int     `json:"cols"`
	Density float64 `json:"density"`
}

// MazePayload is the whole-maze form used by generate, validate and maze
// files.
type MazePayload struct {
	Grid  [][]bool `json:"grid"`
	Start [2]int   `json:"start"`
	End   [2]int   `json:"end"`
	Error string   `json:"error,omitempty"`
}

type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Result is a normalized solve outcome.
type Result struct {
	Algorithm string
	Visited   []maze.Coord
	Path      []maze.Coord
	Stats     Stats
	Found     bool
	Message   string
}

// PayloadFor captures m in wire form.
func PayloadFor(m *maze.Model) MazePayload {
	return MazePayload{
		Grid:  m.ToGrid(),
		Start: m.Start().Pair(),
		End:   m.End().Pair(),
	}
}

func toCoords(pairs [][2]int) []maze.Coord {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]maze.Coord, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, maze.FromPair(p))
	}
	return out
}
