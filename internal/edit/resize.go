package edit

import (
	"errors"
	"fmt"

	"pathgrid/internal/maze"
	"pathgrid/internal/render"
)

var ErrDimensionOutOfRange = errors.New("grid dimension out of range")

// Bounds is the closed range accepted for both rows and cols.
type Bounds struct {
	Min int
	Max int
}

func DefaultBounds() Bounds { return Bounds{Min: 10, Max: 50} }

func (b Bounds) Check(rows, cols int) error {
	if rows < b.Min || rows > b.Max {
		return fmt.Errorf("%w: rows must be between %d and %d, got %d", ErrDimensionOutOfRange, b.Min, b.Max, rows)
	}
	if cols < b.Min || cols > b.Max {
		return fmt.Errorf("%w: cols must be between %d and %d, got %d", ErrDimensionOutOfRange, b.Min, b.Max, cols)
	}
	return nil
}

// ResizeController owns the operations that replace or remap the whole
// maze. Each one cancels the running animation, ends any drag session and
// rebuilds the backend from scratch.
type ResizeController struct {
	model   *maze.Model
	backend render.Backend
	overlay Overlay
	bounds  Bounds
	edits   *Controller
}

func NewResizeController(model *maze.Model, backend render.Backend, overlay Overlay, bounds Bounds, edits *Controller) *ResizeController {
	return &ResizeController{model: model, backend: backend, overlay: overlay, bounds: bounds, edits: edits}
}

func (r *ResizeController) Bounds() Bounds { return r.bounds }

// Resize remaps the maze onto rows x cols. Out-of-range dimensions are
// rejected before anything changes.
func (r *ResizeController) Resize(rows, cols int) (maze.ResizeReport, error) {
	if err := r.bounds.Check(rows, cols); err != nil {
		return maze.ResizeReport{}, err
	}
	r.interrupt()
	report, err := r.model.Resize(rows, cols)
	if err != nil {
		return report, err
	}
	r.rebuild()
	return report, nil
}

// Replace loads a whole maze, for generated mazes, presets and files.
func (r *ResizeController) Replace(grid [][]bool, start, end maze.Coord) error {
	rows := len(grid)
	cols := 0
	if rows > 0 {
		cols = len(grid[0])
	}
	if err := r.bounds.Check(rows, cols); err != nil {
		return err
	}
	if err := r.model.LoadFrom(grid, start, end); err != nil {
		return err
	}
	r.interrupt()
	r.rebuild()
	return nil
}

// Reset clears every wall and returns both markers to their corners.
func (r *ResizeController) Reset() {
	r.interrupt()
	r.model.Reset()
	r.rebuild()
}

func (r *ResizeController) ClearWalls() {
	r.interrupt()
	r.model.ClearWalls()
	r.rebuild()
}

func (r *ResizeController) interrupt() {
	if r.overlay != nil {
		r.overlay.Cancel()
	}
	if r.edits != nil {
		r.edits.Reset()
	}
}

func (r *ResizeController) rebuild() {
	r.backend.Rebuild(r.model.Rows(), r.model.Cols())
	render.Paint(r.backend, r.model)
}
