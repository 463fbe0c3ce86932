package presets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pathgrid/internal/maze"
	"pathgrid/internal/solver"
)

// ReadMazeFile loads a JSON maze file in the solver's maze payload form.
func ReadMazeFile(path string) (solver.MazePayload, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return solver.MazePayload{}, err
	}
	p, err := solver.DecodeMaze(b)
	if err != nil {
		return solver.MazePayload{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// WriteMazeFile saves m under dir with a timestamped name and returns the
// path written.
func WriteMazeFile(dir string, m *maze.Model, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(solver.PayloadFor(m), "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "maze-"+now.UTC().Format("20060102-150405")+".json")
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
