package render

import (
	"strings"

	"pathgrid/internal/maze"
)

// Surface is an in-memory Backend. The terminal view reads it to draw and
// tests read it to assert on what was rendered. It is not safe for
// concurrent use; every caller runs on the UI event loop.
type Surface struct {
	rows     int
	cols     int
	cells    []Token
	handlers []PointerHandler
	version  uint64
}

func NewSurface(rows, cols int) *Surface {
	s := &Surface{}
	s.Rebuild(rows, cols)
	return s
}

func (s *Surface) Rows() int { return s.rows }
func (s *Surface) Cols() int { return s.cols }

func (s *Surface) inBounds(c maze.Coord) bool {
	return c.Row >= 0 && c.Row < s.rows && c.Col >= 0 && c.Col < s.cols
}

func (s *Surface) Place(c maze.Coord, t Token) {
	if !s.inBounds(c) {
		return
	}
	idx := c.Row*s.cols + c.Col
	if s.cells[idx] == t {
		return
	}
	s.cells[idx] = t
	s.version++
}

func (s *Surface) Clear(c maze.Coord) { s.Place(c, TokenEmpty) }

// OnPointer registers h. Handlers survive Rebuild.
func (s *Surface) OnPointer(h PointerHandler) {
	if h == nil {
		return
	}
	s.handlers = append(s.handlers, h)
}

func (s *Surface) Rebuild(rows, cols int) {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	s.rows, s.cols = rows, cols
	s.cells = make([]Token, rows*cols)
	s.version++
}

// Token returns what is drawn at c; TokenEmpty outside the surface.
func (s *Surface) Token(c maze.Coord) Token {
	if !s.inBounds(c) {
		return TokenEmpty
	}
	return s.cells[c.Row*s.cols+c.Col]
}

// Dispatch delivers a pointer event to the registered handlers. Down and
// move events outside the surface are turned into a leave.
func (s *Surface) Dispatch(ev PointerEvent) {
	if (ev.Kind == PointerDown || ev.Kind == PointerMove) && !s.inBounds(ev.Cell) {
		ev = PointerEvent{Kind: PointerLeave}
	}
	for _, h := range s.handlers {
		h(ev)
	}
}

func (s *Surface) Count(t Token) int {
	n := 0
	for _, v := range s.cells {
		if v == t {
			n++
		}
	}
	return n
}

// Version changes whenever a drawn cell changes.
func (s *Surface) Version() uint64 { return s.version }

// Snapshot renders the surface as one line per row using . # S E v *.
func (s *Surface) Snapshot() string {
	var b strings.Builder
	for r := 0; r < s.rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c := 0; c < s.cols; c++ {
			b.WriteByte(Glyph(s.cells[r*s.cols+c]))
		}
	}
	return b.String()
}

// Glyph is the single-byte ASCII form of t.
func Glyph(t Token) byte {
	switch t {
	case TokenWall:
		return '#'
	case TokenStart:
		return 'S'
	case TokenEnd:
		return 'E'
	case TokenVisited:
		return 'v'
	case TokenFinalPath:
		return '*'
	default:
		return '.'
	}
}
