package presets

import (
	"fmt"
	"regexp"
	"strings"

	"pathgrid/internal/maze"
)

const (
	PresetKind             = "maze"
	SupportedSchemaVersion = 1
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{2,63}$`)

// Preset is a named maze drawn as text rows: S start, E end, # wall and
// . empty.
type Preset struct {
	Kind          string   `yaml:"kind"`
	SchemaVersion int      `yaml:"schema_version"`
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Algorithm     string   `yaml:"algorithm"`
	DescriptionMD string   `yaml:"description_md"`
	Rows          []string `yaml:"rows"`

	Path    string `yaml:"-"`
	Builtin bool   `yaml:"-"`
}

func (p Preset) Validate() error {
	if p.Kind != PresetKind {
		return fmt.Errorf("kind must be %q", PresetKind)
	}
	if p.SchemaVersion == 0 {
		return fmt.Errorf("schema_version is required")
	}
	if p.SchemaVersion > SupportedSchemaVersion {
		return fmt.Errorf("unsupported preset schema_version %d (max supported %d)", p.SchemaVersion, SupportedSchemaVersion)
	}
	if !idPattern.MatchString(p.ID) {
		return fmt.Errorf("invalid id %q", p.ID)
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(p.Rows) == 0 {
		return fmt.Errorf("rows are required")
	}
	width := len(p.Rows[0])
	starts, ends := 0, 0
	for i, row := range p.Rows {
		if len(row) != width {
			return fmt.Errorf("rows[%d] has %d cells, want %d", i, len(row), width)
		}
		for j, ch := range row {
			switch ch {
			case '.', '#':
			case 'S':
				starts++
			case 'E':
				ends++
			default:
				return fmt.Errorf("rows[%d][%d]: unknown cell %q", i, j, ch)
			}
		}
	}
	if starts != 1 || ends != 1 {
		return fmt.Errorf("rows need exactly one S and one E, got %d and %d", starts, ends)
	}
	return nil
}

// Maze converts the rows into the wire grid and marker coordinates.
func (p Preset) Maze() ([][]bool, maze.Coord, maze.Coord, error) {
	if err := p.Validate(); err != nil {
		return nil, maze.Coord{}, maze.Coord{}, err
	}
	var start, end maze.Coord
	grid := make([][]bool, len(p.Rows))
	for r, row := range p.Rows {
		grid[r] = make([]bool, len(row))
		for c, ch := range row {
			switch ch {
			case '#':
				grid[r][c] = true
			case 'S':
				start = maze.At(r, c)
			case 'E':
				end = maze.At(r, c)
			}
		}
	}
	return grid, start, end, nil
}

// RowsFor draws m in preset row form.
func RowsFor(m *maze.Model) []string {
	rows := make([]string, m.Rows())
	for r := range rows {
		var b strings.Builder
		for c := 0; c < m.Cols(); c++ {
			switch m.Classify(maze.At(r, c)) {
			case maze.CellStart:
				b.WriteByte('S')
			case maze.CellEnd:
				b.WriteByte('E')
			case maze.CellWall:
				b.WriteByte('#')
			default:
				b.WriteByte('.')
			}
		}
		rows[r] = b.String()
	}
	return rows
}
