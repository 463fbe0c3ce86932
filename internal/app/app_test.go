package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pathgrid/internal/devtools"
	"pathgrid/internal/edit"
	"pathgrid/internal/maze"
	"pathgrid/internal/presets"
	"pathgrid/internal/render"
	"pathgrid/internal/state"
	"pathgrid/internal/telemetry"
	"pathgrid/internal/ui"
)

type flash struct {
	level ui.Level
	msg   string
}

// fakeView stands in for the terminal loop: posted callbacks queue up and
// the test goroutine runs them.
type fakeView struct {
	posts chan func()

	mu      sync.Mutex
	flashes []flash
	info    string
	stopped bool
}

func newFakeView() *fakeView {
	return &fakeView{posts: make(chan func(), 4096)}
}

func (v *fakeView) Post(fn func()) { v.posts <- fn }

func (v *fakeView) FlashStatus(level ui.Level, msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.flashes = append(v.flashes, flash{level: level, msg: msg})
}

func (v *fakeView) SetInfo(title, markdown string, open bool) {
	v.info = markdown
}

func (v *fakeView) Stop() { v.stopped = true }

func (v *fakeView) lastFlash() flash {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.flashes) == 0 {
		return flash{}
	}
	return v.flashes[len(v.flashes)-1]
}

func (v *fakeView) pumpUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !cond() {
		select {
		case fn := <-v.posts:
			fn()
		case <-deadline:
			t.Fatalf("timed out waiting on the event loop")
		}
	}
}

type harness struct {
	app   *App
	view  *fakeView
	store *state.SQLiteStore
	mock  *devtools.Manager
}

func newHarness(t *testing.T, scenario string) *harness {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Rows, cfg.Cols = 10, 10
	cfg.DelayMS = 10
	cfg.DataDir = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}

	store, err := state.NewSQLite(filepath.Join(cfg.DataDir, "state.db"))
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	mock := devtools.NewManager(devtools.WithSeed(11))
	mock.SetScenario(scenario)
	view := newFakeView()

	a, err := assemble(cfg, view, store, mock.Transport(), telemetry.NewWriterLogger(io.Discard))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	builtin, err := presets.NewLoader().LoadBuiltin()
	if err != nil {
		t.Fatalf("load presets: %v", err)
	}
	a.presets = builtin
	t.Cleanup(a.Close)
	return &harness{app: a, view: view, store: store, mock: mock}
}

func (h *harness) settled() bool {
	return !h.app.busy() && !h.app.sched.Busy()
}

func TestRunAlgorithmAnimatesAndRecords(t *testing.T) {
	h := newHarness(t, "normal")
	if err := h.app.RunAlgorithm("bfs"); err != nil {
		t.Fatalf("run algorithm: %v", err)
	}
	h.view.pumpUntil(t, func() bool { return h.app.stats.Outcome == state.OutcomeFound && h.settled() })

	board := h.app.Board()
	// An open 10x10 grid: 19 path cells, both markers excluded.
	if got := board.Count(render.TokenFinalPath); got != 17 {
		t.Fatalf("expected 17 path cells drawn, got %d\n%s", got, board.Snapshot())
	}
	if board.Token(maze.At(0, 0)) != render.TokenStart || board.Token(maze.At(9, 9)) != render.TokenEnd {
		t.Fatalf("expected markers untouched")
	}
	if h.app.stats.PathLength != 19 {
		t.Fatalf("expected path length 19, got %+v", h.app.stats)
	}
	if h.view.lastFlash().level != ui.LevelSuccess {
		t.Fatalf("expected success notification, got %+v", h.view.lastFlash())
	}

	runs, err := h.store.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Outcome != state.OutcomeFound || runs[0].Algorithm != "bfs" || runs[0].Fingerprint == "" {
		t.Fatalf("unexpected recorded runs %+v", runs)
	}
}

func TestSecondSolveRejectedWhileInFlight(t *testing.T) {
	h := newHarness(t, "normal")
	if err := h.app.RunAlgorithm("astar"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := h.app.RunAlgorithm("astar"); !errors.Is(err, ErrSolveInFlight) {
		t.Fatalf("expected ErrSolveInFlight, got %v", err)
	}
	if h.view.lastFlash().level != ui.LevelError {
		t.Fatalf("expected rejection to be notified")
	}
	h.view.pumpUntil(t, h.settled)
}

func TestTriggerDuringAnimationIsRejected(t *testing.T) {
	h := newHarness(t, "normal")
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h.app.now = func() time.Time { return frozen }

	if err := h.app.RunAlgorithm("bfs"); err != nil {
		t.Fatal(err)
	}
	h.view.pumpUntil(t, func() bool { return h.app.sched.Busy() })
	if h.app.Board().Count(render.TokenVisited) == 0 {
		t.Fatalf("expected the first batch drawn")
	}
	if err := h.app.RunAlgorithm("bfs"); !errors.Is(err, ErrSolveInFlight) {
		t.Fatalf("expected ErrSolveInFlight while animating, got %v", err)
	}
	if h.view.lastFlash().level != ui.LevelError {
		t.Fatalf("expected rejection to be notified")
	}

	h.view.pumpUntil(t, h.settled)
	flashes := len(h.view.flashes)
	if err := h.app.RunAlgorithm("bfs"); err != nil {
		t.Fatalf("expected trigger inside cooldown to be dropped quietly, got %v", err)
	}
	if len(h.view.flashes) != flashes {
		t.Fatalf("expected no notification for a dropped trigger")
	}
	if h.app.busy() {
		t.Fatalf("expected a dropped trigger to leave the solver free")
	}
	h.app.wg.Wait()
	runs, err := h.store.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected a single solver request, got %d", len(runs))
	}
}

func TestEditDuringSolveDiscardsAnswer(t *testing.T) {
	h := newHarness(t, "normal")
	if err := h.app.RunAlgorithm("bfs"); err != nil {
		t.Fatal(err)
	}
	h.app.Board().Dispatch(render.PointerEvent{Kind: render.PointerDown, Cell: maze.At(4, 4)})
	h.app.Board().Dispatch(render.PointerEvent{Kind: render.PointerUp, Cell: maze.At(4, 4)})
	h.view.pumpUntil(t, h.settled)

	if !h.app.model.IsWall(maze.At(4, 4)) {
		t.Fatalf("expected the edit to apply while the solve was in flight")
	}
	board := h.app.Board()
	if board.Count(render.TokenVisited) != 0 || board.Count(render.TokenFinalPath) != 0 {
		t.Fatalf("expected stale answer to be discarded\n%s", board.Snapshot())
	}
}

func TestUnreachableAnimatesExploration(t *testing.T) {
	h := newHarness(t, "normal")
	if err := h.app.LoadPreset("walled-off"); err != nil {
		t.Fatalf("load preset: %v", err)
	}
	if err := h.app.RunAlgorithm(""); err != nil {
		t.Fatal(err)
	}
	h.view.pumpUntil(t, func() bool { return h.app.stats.Outcome == state.OutcomeUnreachable && h.settled() })

	board := h.app.Board()
	if board.Count(render.TokenVisited) == 0 {
		t.Fatalf("expected exploration to be drawn")
	}
	if board.Count(render.TokenFinalPath) != 0 || h.app.stats.PathLength != 0 {
		t.Fatalf("expected no path for an unreachable end")
	}
	if h.view.lastFlash().level != ui.LevelInfo {
		t.Fatalf("expected a non-fatal notification, got %+v", h.view.lastFlash())
	}
}

func TestTransportFailureLeavesGridUntouched(t *testing.T) {
	h := newHarness(t, "broken")
	if err := h.app.model.SetWall(maze.At(2, 2)); err != nil {
		t.Fatal(err)
	}
	render.Paint(h.app.Board(), h.app.model)
	before := h.app.Board().Snapshot()

	if err := h.app.RunAlgorithm("dfs"); err != nil {
		t.Fatal(err)
	}
	h.view.pumpUntil(t, func() bool { return h.app.stats.Outcome == state.OutcomeFailed && h.settled() })

	if got := h.app.Board().Snapshot(); got != before {
		t.Fatalf("expected board unchanged, got\n%s", got)
	}
	if h.view.lastFlash().level != ui.LevelError {
		t.Fatalf("expected error notification")
	}
	runs, err := h.store.RecentRuns(context.Background(), 1)
	if err != nil || len(runs) != 1 || runs[0].Outcome != state.OutcomeFailed {
		t.Fatalf("expected failed run recorded, got %+v %v", runs, err)
	}
}

func TestMazeRewritesRefusedWhileBusy(t *testing.T) {
	h := newHarness(t, "normal")
	if err := h.app.RunAlgorithm("bfs"); err != nil {
		t.Fatal(err)
	}
	if err := h.app.Resize(15, 15); !errors.Is(err, ErrSolveInFlight) {
		t.Fatalf("expected resize refused, got %v", err)
	}
	if err := h.app.ResetGrid(); !errors.Is(err, ErrSolveInFlight) {
		t.Fatalf("expected reset refused, got %v", err)
	}
	if err := h.app.GenerateMaze(); !errors.Is(err, ErrSolveInFlight) {
		t.Fatalf("expected generate refused, got %v", err)
	}
	if h.app.model.Rows() != 10 {
		t.Fatalf("expected dimensions unchanged")
	}
	h.view.pumpUntil(t, h.settled)
	if err := h.app.Resize(15, 12); err != nil {
		t.Fatalf("expected resize once idle, got %v", err)
	}
	if h.app.Board().Rows() != 15 || h.app.Board().Cols() != 12 {
		t.Fatalf("expected board rebuilt to 15x12")
	}
	if h.app.stats != (ui.StatsRow{}) {
		t.Fatalf("expected stats reset after resize")
	}
}

func TestResizeOutOfRangeIsRejected(t *testing.T) {
	h := newHarness(t, "normal")
	if err := h.app.Resize(5, 20); !errors.Is(err, edit.ErrDimensionOutOfRange) {
		t.Fatalf("expected ErrDimensionOutOfRange, got %v", err)
	}
	if h.app.model.Rows() != 10 || h.app.model.Cols() != 10 {
		t.Fatalf("expected no mutation")
	}
	if h.view.lastFlash().level != ui.LevelError {
		t.Fatalf("expected validation message")
	}
}

func TestGenerateMazeLoadsResult(t *testing.T) {
	h := newHarness(t, "normal")
	if err := h.app.GenerateMaze(); err != nil {
		t.Fatal(err)
	}
	h.view.pumpUntil(t, func() bool { return !h.app.solving && h.settled() })

	m := h.app.model
	if m.Rows() != 10 || m.Cols() != 10 {
		t.Fatalf("expected generated maze to keep the grid size")
	}
	if m.WallCount() == 0 {
		t.Fatalf("expected generated walls")
	}
	if h.app.Board().Count(render.TokenWall) != m.WallCount() {
		t.Fatalf("expected board repainted with the generated walls")
	}
}

func TestClearPathStripsOverlay(t *testing.T) {
	h := newHarness(t, "normal")
	if err := h.app.RunAlgorithm("bfs"); err != nil {
		t.Fatal(err)
	}
	h.view.pumpUntil(t, func() bool { return h.app.Board().Count(render.TokenVisited) > 0 })
	h.app.ClearPath()
	if h.app.busy() {
		t.Fatalf("expected clearing the path to free the solver")
	}
	if h.app.Board().Count(render.TokenVisited) != 0 || h.app.stats != (ui.StatsRow{}) {
		t.Fatalf("expected overlay and stats cleared")
	}
}

func TestSettingsPersist(t *testing.T) {
	h := newHarness(t, "normal")
	h.app.sched.SetDelay(50 * time.Millisecond)
	if got := h.app.CycleAlgorithm(); got != "bfs" {
		t.Fatalf("expected astar to cycle to bfs, got %s", got)
	}
	if got := h.app.AdjustSpeed(1); got != 40*time.Millisecond {
		t.Fatalf("expected 40ms delay, got %v", got)
	}
	if got := h.app.AdjustSpeed(10); got != MinDelay {
		t.Fatalf("expected delay clamped to %v, got %v", MinDelay, got)
	}
	h.app.wg.Wait()
	values, err := h.store.LoadSettings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if values["algorithm"] != "bfs" || values["delay_ms"] != "10" {
		t.Fatalf("unexpected persisted settings %+v", values)
	}
}

func TestExportMazeWritesFile(t *testing.T) {
	h := newHarness(t, "normal")
	if err := h.app.model.SetWall(maze.At(3, 3)); err != nil {
		t.Fatal(err)
	}
	if err := h.app.ExportMaze(); err != nil {
		t.Fatal(err)
	}
	h.view.pumpUntil(t, func() bool { return h.view.lastFlash().msg != "" })
	if h.view.lastFlash().level != ui.LevelSuccess {
		t.Fatalf("expected export success, got %+v", h.view.lastFlash())
	}
	entries, err := os.ReadDir(filepath.Join(h.app.cfg.DataDir, "mazes"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one exported maze, got %v %v", entries, err)
	}
	if err := h.app.LoadFile(filepath.Join(h.app.cfg.DataDir, "mazes", entries[0].Name())); err != nil {
		t.Fatalf("load exported maze: %v", err)
	}
	if !h.app.model.IsWall(maze.At(3, 3)) {
		t.Fatalf("expected exported wall to load back")
	}
}

func TestLoadHistory(t *testing.T) {
	h := newHarness(t, "normal")
	if err := h.app.RunAlgorithm("bfs"); err != nil {
		t.Fatal(err)
	}
	h.view.pumpUntil(t, h.settled)
	h.app.LoadHistory()
	h.view.pumpUntil(t, func() bool { return h.app.history.Loaded })
	p := h.app.Panel()
	if p.History.Runs != 1 || p.History.Found != 1 || len(p.History.Recent) != 1 {
		t.Fatalf("unexpected history %+v", p.History)
	}
	if p.History.BestPath["bfs"] != 19 {
		t.Fatalf("expected best bfs path 19, got %+v", p.History.BestPath)
	}
}

func TestExplainOpensInfo(t *testing.T) {
	h := newHarness(t, "normal")
	h.app.Explain()
	if h.view.info == "" {
		t.Fatalf("expected info markdown")
	}
	h.app.Quit()
	if !h.view.stopped {
		t.Fatalf("expected quit to stop the view")
	}
}
