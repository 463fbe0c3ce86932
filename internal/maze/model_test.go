package maze

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func mustNew(t *testing.T, rows, cols int) *Model {
	t.Helper()
	m, err := New(rows, cols)
	if err != nil {
		t.Fatalf("new %dx%d: %v", rows, cols, err)
	}
	return m
}

func checkInvariants(t *testing.T, m *Model) {
	t.Helper()
	if m.Start() == m.End() {
		t.Fatalf("start and end coincide at %s", m.Start())
	}
	if m.IsWall(m.Start()) {
		t.Fatalf("start %s is a wall", m.Start())
	}
	if m.IsWall(m.End()) {
		t.Fatalf("end %s is a wall", m.End())
	}
	for _, w := range m.Walls() {
		if !m.InBounds(w) {
			t.Fatalf("wall %s out of %dx%d", w, m.Rows(), m.Cols())
		}
	}
}

func TestNewPlacesMarkersInCorners(t *testing.T) {
	m := mustNew(t, 10, 12)
	if m.Start() != At(0, 0) {
		t.Fatalf("expected start (0,0), got %s", m.Start())
	}
	if m.End() != At(9, 11) {
		t.Fatalf("expected end (9,11), got %s", m.End())
	}
	if m.WallCount() != 0 {
		t.Fatalf("expected no walls, got %d", m.WallCount())
	}
}

func TestNewRejectsDegenerateDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 5}, {5, 0}, {1, 1}, {-1, 3}} {
		if _, err := New(dims[0], dims[1]); !errors.Is(err, ErrDimensions) {
			t.Fatalf("expected ErrDimensions for %v, got %v", dims, err)
		}
	}
}

func TestInvariantsHoldUnderRandomEdits(t *testing.T) {
	m := mustNew(t, 8, 8)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		c := At(rng.Intn(10)-1, rng.Intn(10)-1)
		switch rng.Intn(4) {
		case 0:
			_ = m.SetWall(c)
		case 1:
			_ = m.ClearWall(c)
		case 2:
			_ = m.MoveStart(c)
		case 3:
			_ = m.MoveEnd(c)
		}
		checkInvariants(t, m)
	}
}

func TestSetWallIsIdempotent(t *testing.T) {
	m := mustNew(t, 5, 5)
	c := At(2, 3)
	if err := m.SetWall(c); err != nil {
		t.Fatalf("set wall: %v", err)
	}
	once := m.Walls()
	if err := m.SetWall(c); err != nil {
		t.Fatalf("set wall twice: %v", err)
	}
	if !reflect.DeepEqual(once, m.Walls()) {
		t.Fatalf("expected identical walls, got %v then %v", once, m.Walls())
	}

	if err := m.ClearWall(c); err != nil {
		t.Fatalf("clear wall: %v", err)
	}
	if err := m.ClearWall(c); err != nil {
		t.Fatalf("clear wall twice: %v", err)
	}
	if m.WallCount() != 0 {
		t.Fatalf("expected no walls after clearing, got %v", m.Walls())
	}
}

func TestSetWallRefusesMarkers(t *testing.T) {
	m := mustNew(t, 5, 5)
	if err := m.SetWall(m.Start()); !errors.Is(err, ErrInvalidEdit) {
		t.Fatalf("expected ErrInvalidEdit on start, got %v", err)
	}
	if err := m.SetWall(m.End()); !errors.Is(err, ErrInvalidEdit) {
		t.Fatalf("expected ErrInvalidEdit on end, got %v", err)
	}
	if err := m.SetWall(At(5, 0)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if m.WallCount() != 0 {
		t.Fatalf("expected refused walls to leave set empty")
	}
}

func TestMoveStartRejectsEndAndWalls(t *testing.T) {
	m := mustNew(t, 5, 5)
	if err := m.SetWall(At(1, 1)); err != nil {
		t.Fatal(err)
	}
	before := m.Clone()

	if err := m.MoveStart(m.End()); !errors.Is(err, ErrInvalidEdit) {
		t.Fatalf("expected ErrInvalidEdit moving onto end, got %v", err)
	}
	if err := m.MoveStart(At(1, 1)); !errors.Is(err, ErrInvalidEdit) {
		t.Fatalf("expected ErrInvalidEdit moving onto wall, got %v", err)
	}
	if err := m.MoveEnd(m.Start()); !errors.Is(err, ErrInvalidEdit) {
		t.Fatalf("expected ErrInvalidEdit moving end onto start, got %v", err)
	}
	if m.Start() != before.Start() || m.End() != before.End() {
		t.Fatalf("expected markers unchanged, got start %s end %s", m.Start(), m.End())
	}
	if !reflect.DeepEqual(m.Walls(), before.Walls()) {
		t.Fatalf("expected walls unchanged")
	}
}

func TestMoveStartVacatesOldCell(t *testing.T) {
	m := mustNew(t, 5, 5)
	if err := m.MoveStart(At(2, 2)); err != nil {
		t.Fatalf("move start: %v", err)
	}
	if got := m.Classify(At(0, 0)); got != CellEmpty {
		t.Fatalf("expected vacated cell empty, got %s", got)
	}
	if got := m.Classify(At(2, 2)); got != CellStart {
		t.Fatalf("expected start at (2,2), got %s", got)
	}
}

func TestToGridScenario(t *testing.T) {
	m := mustNew(t, 3, 3)
	if err := m.SetWall(At(1, 1)); err != nil {
		t.Fatal(err)
	}
	want := [][]bool{
		{false, false, false},
		{false, true, false},
		{false, false, false},
	}
	if got := m.ToGrid(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGridRoundTrip(t *testing.T) {
	src := mustNew(t, 6, 7)
	for _, c := range []Coord{At(0, 3), At(2, 2), At(4, 6), At(5, 0)} {
		if err := src.SetWall(c); err != nil {
			t.Fatal(err)
		}
	}
	if err := src.MoveStart(At(1, 1)); err != nil {
		t.Fatal(err)
	}
	if err := src.MoveEnd(At(3, 5)); err != nil {
		t.Fatal(err)
	}

	dst := mustNew(t, 6, 7)
	if err := dst.LoadFrom(src.ToGrid(), src.Start(), src.End()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(dst.Walls(), src.Walls()) {
		t.Fatalf("expected walls %v, got %v", src.Walls(), dst.Walls())
	}
	if dst.Start() != src.Start() || dst.End() != src.End() {
		t.Fatalf("expected markers %s/%s, got %s/%s", src.Start(), src.End(), dst.Start(), dst.End())
	}
}

func TestLoadFromRejectsBadInputWithoutMutation(t *testing.T) {
	m := mustNew(t, 4, 4)
	if err := m.SetWall(At(2, 2)); err != nil {
		t.Fatal(err)
	}
	grid := [][]bool{{false, false}, {false, false}}
	cases := []struct {
		name  string
		grid  [][]bool
		start Coord
		end   Coord
	}{
		{"empty", nil, At(0, 0), At(0, 1)},
		{"ragged", [][]bool{{false, false}, {false}}, At(0, 0), At(0, 1)},
		{"same markers", grid, At(1, 1), At(1, 1)},
		{"start outside", grid, At(2, 0), At(1, 1)},
	}
	for _, tc := range cases {
		if err := m.LoadFrom(tc.grid, tc.start, tc.end); !errors.Is(err, ErrInvalidMaze) {
			t.Fatalf("%s: expected ErrInvalidMaze, got %v", tc.name, err)
		}
		if m.Rows() != 4 || m.Cols() != 4 || !m.IsWall(At(2, 2)) {
			t.Fatalf("%s: expected model untouched", tc.name)
		}
	}
}

func TestLoadFromDropsWallsUnderMarkers(t *testing.T) {
	m := mustNew(t, 3, 3)
	grid := [][]bool{
		{true, false, false},
		{false, true, false},
		{false, false, true},
	}
	if err := m.LoadFrom(grid, At(0, 0), At(2, 2)); err != nil {
		t.Fatalf("load: %v", err)
	}
	checkInvariants(t, m)
	if m.WallCount() != 1 || !m.IsWall(At(1, 1)) {
		t.Fatalf("expected only (1,1) to remain a wall, got %v", m.Walls())
	}
}

func TestFingerprintTracksLayout(t *testing.T) {
	a := mustNew(t, 5, 5)
	b := mustNew(t, 5, 5)
	fa, err := a.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	fb, err := b.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	if fa != fb {
		t.Fatalf("expected equal fingerprints for equal mazes")
	}
	if err := b.SetWall(At(2, 2)); err != nil {
		t.Fatal(err)
	}
	fb, err = b.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	if fa == fb {
		t.Fatalf("expected fingerprint to change after adding a wall")
	}
}
