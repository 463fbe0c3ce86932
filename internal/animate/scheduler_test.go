package animate

import (
	"testing"
	"time"

	"pathgrid/internal/maze"
	"pathgrid/internal/render"
)

// manualTimer queues callbacks until the test steps them.
type manualTimer struct {
	pending []func()
	delays  []time.Duration
}

func (m *manualTimer) AfterFunc(d time.Duration, fn func()) {
	m.pending = append(m.pending, fn)
	m.delays = append(m.delays, d)
}

func (m *manualTimer) step() bool {
	if len(m.pending) == 0 {
		return false
	}
	fn := m.pending[0]
	m.pending = m.pending[1:]
	fn()
	return true
}

func (m *manualTimer) drain() int {
	n := 0
	for m.step() {
		n++
	}
	return n
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func setup(t *testing.T, rows, cols int, opts ...Option) (*maze.Model, *render.Surface, *manualTimer, *clock, *Scheduler) {
	t.Helper()
	m, err := maze.New(rows, cols)
	if err != nil {
		t.Fatal(err)
	}
	s := render.NewSurface(rows, cols)
	render.Paint(s, m)
	timer := &manualTimer{}
	clk := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	all := append([]Option{WithTimer(timer), WithClock(clk.Now)}, opts...)
	return m, s, timer, clk, NewScheduler(s, m, all...)
}

func row(r int, cols ...int) []maze.Coord {
	out := make([]maze.Coord, 0, len(cols))
	for _, c := range cols {
		out = append(out, maze.At(r, c))
	}
	return out
}

func TestPlayDrawsInBatchesVisitedThenPath(t *testing.T) {
	_, s, timer, _, sch := setup(t, 3, 5)
	visited := append(row(0, 0, 1, 2, 3, 4), row(1, 0, 1)...)
	path := append(append(row(0, 0, 1, 2, 3, 4), row(1, 4)...), row(2, 4)...)

	run := sch.Play(visited, path)
	if got := s.Count(render.TokenVisited); got != 2 {
		t.Fatalf("expected first batch of 3 drawn minus the start marker, got %d visited", got)
	}
	if s.Token(maze.At(0, 0)) != render.TokenStart {
		t.Fatalf("expected start never overdrawn")
	}

	timer.step()
	if got := s.Count(render.TokenVisited); got != 5 {
		t.Fatalf("expected 5 visited after second tick, got %d", got)
	}
	if s.Count(render.TokenFinalPath) != 0 {
		t.Fatalf("expected path to wait for visited")
	}
	timer.step()
	if got := s.Count(render.TokenVisited); got != 6 {
		t.Fatalf("expected all visited drawn, got %d", got)
	}

	timer.step()
	if got := s.Count(render.TokenFinalPath); got != 2 {
		t.Fatalf("expected first path batch minus start, got %d", got)
	}
	timer.step()
	timer.step()
	if run.Resolved() {
		t.Fatalf("expected run to resolve one tick after its last batch")
	}
	timer.step()
	if !run.Resolved() || run.Superseded() {
		t.Fatalf("expected run completed, resolved=%v superseded=%v", run.Resolved(), run.Superseded())
	}
	if s.Token(maze.At(2, 4)) != render.TokenEnd {
		t.Fatalf("expected end never overdrawn")
	}
	if got := s.Count(render.TokenFinalPath); got != 5 {
		t.Fatalf("expected 5 path cells drawn, got %d\n%s", got, s.Snapshot())
	}
	select {
	case <-run.Done():
	default:
		t.Fatalf("expected done channel closed")
	}
	if run.Progress() != 1 {
		t.Fatalf("expected full progress, got %f", run.Progress())
	}
}

func TestSecondPlaySupersedesFirst(t *testing.T) {
	_, s, timer, _, sch := setup(t, 4, 4)
	first := sch.Play(append(row(1, 0, 1, 2, 3), row(2, 0, 1, 2, 3)...), nil)
	firstGen := first.Generation

	second := sch.Play(row(3, 0, 1), row(3, 0, 1))
	if !first.Resolved() || !first.Superseded() {
		t.Fatalf("expected first run superseded")
	}
	if second.Generation <= firstGen {
		t.Fatalf("expected generation to increase")
	}
	timer.drain()

	for c := 0; c < 4; c++ {
		if got := s.Token(maze.At(1, c)); got == render.TokenVisited {
			t.Fatalf("expected first run's cells cleared, found visited at (1,%d)", c)
		}
		if got := s.Token(maze.At(2, c)); got == render.TokenVisited {
			t.Fatalf("expected first run's later batches never drawn, found visited at (2,%d)", c)
		}
	}
	if s.Token(maze.At(3, 0)) != render.TokenFinalPath || s.Token(maze.At(3, 1)) != render.TokenFinalPath {
		t.Fatalf("expected second run output:\n%s", s.Snapshot())
	}
	if !second.Resolved() || second.Superseded() {
		t.Fatalf("expected second run completed")
	}
}

func TestCancelStopsDrawingAndKeepsOverlay(t *testing.T) {
	_, s, timer, _, sch := setup(t, 3, 3)
	run := sch.Play(row(1, 0, 1, 2), row(2, 0, 1))
	drawn := s.Snapshot()
	if !sch.Cancel() {
		t.Fatalf("expected cancel to report a live run")
	}
	timer.drain()
	if s.Snapshot() != drawn {
		t.Fatalf("expected no drawing after cancel")
	}
	if !run.Superseded() {
		t.Fatalf("expected canceled run marked superseded")
	}
	if sch.Cancel() {
		t.Fatalf("expected second cancel to find nothing live")
	}
}

func TestClearOverlayRestoresStructure(t *testing.T) {
	m, s, timer, _, sch := setup(t, 3, 3)
	if err := m.SetWall(maze.At(1, 1)); err != nil {
		t.Fatal(err)
	}
	render.Paint(s, m)
	sch.Play(row(0, 1, 2), row(1, 0))
	timer.drain()
	if s.Count(render.TokenVisited) == 0 {
		t.Fatalf("expected overlay drawn")
	}
	sch.ClearOverlay()
	want := "S..\n.#.\n..E"
	if got := s.Snapshot(); got != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestWallsAndOutOfBoundsAreSkipped(t *testing.T) {
	m, s, timer, _, sch := setup(t, 3, 3)
	if err := m.SetWall(maze.At(1, 1)); err != nil {
		t.Fatal(err)
	}
	render.Paint(s, m)
	sch.Play([]maze.Coord{maze.At(1, 1), maze.At(5, 5), maze.At(-1, 0), maze.At(1, 2)}, nil)
	timer.drain()
	if s.Token(maze.At(1, 1)) != render.TokenWall {
		t.Fatalf("expected wall kept")
	}
	if s.Count(render.TokenVisited) != 1 {
		t.Fatalf("expected only (1,2) drawn, got\n%s", s.Snapshot())
	}
}

func TestEmptyRunResolvesImmediately(t *testing.T) {
	var resolved []*Run
	_, _, timer, _, sch := setup(t, 3, 3, WithResolve(func(r *Run) { resolved = append(resolved, r) }))
	run := sch.Play(nil, nil)
	if !run.Resolved() || len(timer.pending) != 0 {
		t.Fatalf("expected empty run resolved without ticks")
	}
	if len(resolved) != 1 || resolved[0] != run {
		t.Fatalf("expected resolve hook once, got %d", len(resolved))
	}
	if sch.Busy() {
		t.Fatalf("expected scheduler idle")
	}
}

func TestAdmitCollapsesTriggersInsideCooldown(t *testing.T) {
	_, _, timer, clk, sch := setup(t, 5, 5, WithDelay(100*time.Millisecond))
	if !sch.Admit() {
		t.Fatalf("expected first trigger admitted")
	}
	sch.Play(row(1, 0, 1, 2, 3), row(2, 0, 1, 2))
	if got := sch.Cooldown(4, 3); got != 300*time.Millisecond {
		t.Fatalf("expected cooldown of 3 ticks, got %s", got)
	}

	clk.now = clk.now.Add(150 * time.Millisecond)
	if sch.Admit() {
		t.Fatalf("expected trigger inside cooldown collapsed")
	}
	clk.now = clk.now.Add(200 * time.Millisecond)
	if !sch.Admit() {
		t.Fatalf("expected trigger after cooldown admitted")
	}
	if !sch.LastTriggerAt().Equal(clk.now) {
		t.Fatalf("expected last trigger recorded")
	}
	timer.drain()
}

func TestCancelResetsCooldown(t *testing.T) {
	_, _, _, _, sch := setup(t, 5, 5)
	sch.Play(row(1, 0, 1, 2, 3, 4), nil)
	if sch.Admit() {
		t.Fatalf("expected cooldown active while playing")
	}
	sch.Cancel()
	if !sch.Admit() {
		t.Fatalf("expected cancel to end the cooldown")
	}
}

func TestSetDelayAppliesToNextTicks(t *testing.T) {
	_, _, timer, _, sch := setup(t, 3, 3)
	sch.Play(row(1, 0, 1, 2), row(2, 0, 1))
	sch.SetDelay(120 * time.Millisecond)
	timer.step()
	if got := timer.delays[len(timer.delays)-1]; got != 120*time.Millisecond {
		t.Fatalf("expected new delay on later ticks, got %s", got)
	}
	if timer.delays[0] != DefaultDelay {
		t.Fatalf("expected first tick scheduled with default delay, got %s", timer.delays[0])
	}
}

func TestDefaultTimerWaitsForStep(t *testing.T) {
	m, err := maze.New(3, 5)
	if err != nil {
		t.Fatal(err)
	}
	s := render.NewSurface(3, 5)
	render.Paint(s, m)
	sch := NewScheduler(s, m, WithDelay(time.Millisecond))
	timer, ok := sch.opts.Timer.(*SteppedTimer)
	if !ok {
		t.Fatalf("expected stepped default timer, got %T", sch.opts.Timer)
	}

	sch.Play(append(row(0, 0, 1, 2, 3, 4), row(1, 0, 1)...), nil)
	time.Sleep(20 * time.Millisecond)
	if got := s.Count(render.TokenVisited); got != 2 {
		t.Fatalf("expected only the first batch before stepping, got %d visited", got)
	}
	if timer.Pending() != 1 {
		t.Fatalf("expected one pending tick, got %d", timer.Pending())
	}
	if !timer.Step() {
		t.Fatalf("expected a tick to run")
	}
	if got := s.Count(render.TokenVisited); got != 5 {
		t.Fatalf("expected second batch drawn after stepping, got %d visited", got)
	}
}
