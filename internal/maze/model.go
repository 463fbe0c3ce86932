package maze

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidEdit marks a mutation refused because it would break a
	// marker/wall invariant. Callers driving edits from pointer input are
	// expected to ignore it.
	ErrInvalidEdit = errors.New("invalid edit")
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	ErrInvalidMaze = errors.New("invalid maze")
	ErrDimensions  = errors.New("invalid grid dimensions")
)

// Coord addresses a cell by row and column.
type Coord struct {
	Row int
	Col int
}

func At(row, col int) Coord { return Coord{Row: row, Col: col} }

func FromPair(p [2]int) Coord { return Coord{Row: p[0], Col: p[1]} }

func (c Coord) Pair() [2]int { return [2]int{c.Row, c.Col} }

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// Adjacent reports whether o is one orthogonal step away from c.
func (c Coord) Adjacent(o Coord) bool {
	dr := c.Row - o.Row
	dc := c.Col - o.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr+dc == 1
}

// Cell is the structural classification of a coordinate.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellWall
	CellStart
	CellEnd
)

func (c Cell) String() string {
	switch c {
	case CellWall:
		return "wall"
	case CellStart:
		return "start"
	case CellEnd:
		return "end"
	default:
		return "empty"
	}
}

// Model is the authoritative maze state. start and end never coincide and
// never sit on a wall; every wall is inside the grid.
type Model struct {
	rows  int
	cols  int
	start Coord
	end   Coord
	walls map[Coord]struct{}
}

// New returns a wall-free model with start at the top-left corner and end
// at the bottom-right corner.
func New(rows, cols int) (*Model, error) {
	if err := checkDims(rows, cols); err != nil {
		return nil, err
	}
	m := &Model{rows: rows, cols: cols}
	m.Reset()
	return m, nil
}

func checkDims(rows, cols int) error {
	if rows < 1 || cols < 1 || rows*cols < 2 {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, rows, cols)
	}
	return nil
}

func (m *Model) Rows() int    { return m.rows }
func (m *Model) Cols() int    { return m.cols }
func (m *Model) Start() Coord { return m.start }
func (m *Model) End() Coord   { return m.end }

func (m *Model) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < m.rows && c.Col >= 0 && c.Col < m.cols
}

func (m *Model) IsWall(c Coord) bool {
	_, ok := m.walls[c]
	return ok
}

func (m *Model) IsStart(c Coord) bool { return c == m.start }
func (m *Model) IsEnd(c Coord) bool   { return c == m.end }

func (m *Model) Classify(c Coord) Cell {
	switch {
	case c == m.start:
		return CellStart
	case c == m.end:
		return CellEnd
	case m.IsWall(c):
		return CellWall
	default:
		return CellEmpty
	}
}

func (m *Model) WallCount() int { return len(m.walls) }

// Walls returns the wall set in row-major order.
func (m *Model) Walls() []Coord {
	out := make([]Coord, 0, len(m.walls))
	for c := range m.walls {
		out = append(out, c)
	}
	sortCoords(out)
	return out
}

// SetWall marks c as a wall. Setting an existing wall is a no-op.
func (m *Model) SetWall(c Coord) error {
	if !m.InBounds(c) {
		return fmt.Errorf("%w: %w: wall at %s", ErrInvalidEdit, ErrOutOfBounds, c)
	}
	if c == m.start || c == m.end {
		return fmt.Errorf("%w: wall on marker %s", ErrInvalidEdit, c)
	}
	m.walls[c] = struct{}{}
	return nil
}

// ClearWall removes the wall at c if there is one.
func (m *Model) ClearWall(c Coord) error {
	if !m.InBounds(c) {
		return fmt.Errorf("%w: %w: clear at %s", ErrInvalidEdit, ErrOutOfBounds, c)
	}
	delete(m.walls, c)
	return nil
}

func (m *Model) ClearWalls() {
	m.walls = make(map[Coord]struct{})
}

// MoveStart relocates the start marker. The target may not be the end
// marker or a wall.
func (m *Model) MoveStart(c Coord) error {
	if err := m.checkMarkerTarget(c, m.end); err != nil {
		return fmt.Errorf("move start: %w", err)
	}
	m.start = c
	return nil
}

// MoveEnd relocates the end marker under the same rules as MoveStart.
func (m *Model) MoveEnd(c Coord) error {
	if err := m.checkMarkerTarget(c, m.start); err != nil {
		return fmt.Errorf("move end: %w", err)
	}
	m.end = c
	return nil
}

func (m *Model) checkMarkerTarget(c, other Coord) error {
	if !m.InBounds(c) {
		return fmt.Errorf("%w: %w: %s", ErrInvalidEdit, ErrOutOfBounds, c)
	}
	if c == other {
		return fmt.Errorf("%w: %s holds the other marker", ErrInvalidEdit, c)
	}
	if m.IsWall(c) {
		return fmt.Errorf("%w: %s is a wall", ErrInvalidEdit, c)
	}
	return nil
}

// Reset clears all walls and returns both markers to their corners.
func (m *Model) Reset() {
	m.walls = make(map[Coord]struct{})
	m.start = Coord{}
	m.end = Coord{Row: m.rows - 1, Col: m.cols - 1}
}

// ToGrid renders the wall set as a rows x cols matrix, true marking a wall.
func (m *Model) ToGrid() [][]bool {
	grid := make([][]bool, m.rows)
	for r := range grid {
		grid[r] = make([]bool, m.cols)
	}
	for c := range m.walls {
		grid[c.Row][c.Col] = true
	}
	return grid
}

// LoadFrom replaces the whole maze with grid, start and end. The model takes
// the grid's dimensions. A ragged or empty grid, an out-of-bounds marker or
// coinciding markers reject the load and leave the model untouched; a wall
// underneath a marker is dropped.
func (m *Model) LoadFrom(grid [][]bool, start, end Coord) error {
	rows := len(grid)
	if rows == 0 {
		return fmt.Errorf("%w: empty grid", ErrInvalidMaze)
	}
	cols := len(grid[0])
	for r, row := range grid {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidMaze, r, len(row), cols)
		}
	}
	if err := checkDims(rows, cols); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMaze, err)
	}
	next := &Model{rows: rows, cols: cols, start: start, end: end, walls: make(map[Coord]struct{})}
	if !next.InBounds(start) || !next.InBounds(end) {
		return fmt.Errorf("%w: %w: start %s end %s in %dx%d", ErrInvalidMaze, ErrOutOfBounds, start, end, rows, cols)
	}
	if start == end {
		return fmt.Errorf("%w: start and end both at %s", ErrInvalidMaze, start)
	}
	for r, row := range grid {
		for c, wall := range row {
			if !wall {
				continue
			}
			cell := Coord{Row: r, Col: c}
			if cell == start || cell == end {
				continue
			}
			next.walls[cell] = struct{}{}
		}
	}
	*m = *next
	return nil
}

// Clone returns an independent copy.
func (m *Model) Clone() *Model {
	out := &Model{rows: m.rows, cols: m.cols, start: m.start, end: m.end, walls: make(map[Coord]struct{}, len(m.walls))}
	for c := range m.walls {
		out.walls[c] = struct{}{}
	}
	return out
}

func sortCoords(cs []Coord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Row != cs[j].Row {
			return cs[i].Row < cs[j].Row
		}
		return cs[i].Col < cs[j].Col
	})
}
