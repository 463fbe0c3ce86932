package render

import "pathgrid/internal/maze"

// Token is the visual kind drawn at a cell.
type Token uint8

const (
	TokenEmpty Token = iota
	TokenWall
	TokenStart
	TokenEnd
	TokenVisited
	TokenFinalPath
)

func (t Token) String() string {
	switch t {
	case TokenWall:
		return "wall"
	case TokenStart:
		return "start"
	case TokenEnd:
		return "end"
	case TokenVisited:
		return "visited"
	case TokenFinalPath:
		return "path"
	default:
		return "empty"
	}
}

// Overlay reports whether the token is an animation decoration rather than
// structural maze state.
func (t Token) Overlay() bool {
	return t == TokenVisited || t == TokenFinalPath
}

type PointerKind uint8

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerLeave
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	default:
		return "leave"
	}
}

// PointerEvent is a pointer action already translated to grid coordinates.
// Cell is meaningless for PointerLeave.
type PointerEvent struct {
	Kind PointerKind
	Cell maze.Coord
}

type PointerHandler func(PointerEvent)

// Backend is a matrix-addressable drawing surface. Implementations only draw;
// they never decide what a cell means.
type Backend interface {
	Place(c maze.Coord, t Token)
	Clear(c maze.Coord)
	OnPointer(h PointerHandler)
	Rebuild(rows, cols int)
}

// Grid is the read side of a maze needed to paint it.
type Grid interface {
	Rows() int
	Cols() int
	Classify(c maze.Coord) maze.Cell
}

func TokenFor(cell maze.Cell) Token {
	switch cell {
	case maze.CellWall:
		return TokenWall
	case maze.CellStart:
		return TokenStart
	case maze.CellEnd:
		return TokenEnd
	default:
		return TokenEmpty
	}
}

// Paint redraws every cell from the grid's classification, stripping any
// overlay decoration.
func Paint(b Backend, g Grid) {
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			at := maze.At(r, c)
			t := TokenFor(g.Classify(at))
			if t == TokenEmpty {
				b.Clear(at)
				continue
			}
			b.Place(at, t)
		}
	}
}

// PaintCell redraws a single cell from the grid's classification.
func PaintCell(b Backend, g Grid, at maze.Coord) {
	t := TokenFor(g.Classify(at))
	if t == TokenEmpty {
		b.Clear(at)
		return
	}
	b.Place(at, t)
}
