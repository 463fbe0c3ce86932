package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"pathgrid/internal/maze"
	"pathgrid/internal/presets"
	"pathgrid/internal/solver"
	"pathgrid/internal/state"
	"pathgrid/internal/ui"
)

// RunAlgorithm solves the current maze with algo, or the selected
// algorithm when algo is empty, and animates the answer. Triggers inside
// the cooldown of the previous animation are dropped without notice.
func (a *App) RunAlgorithm(algo string) error {
	if algo == "" {
		algo = a.cfg.Algorithm
	}
	algo, err := solver.CanonicalAlgorithm(algo)
	if err != nil {
		a.notify(ui.LevelError, err.Error())
		return err
	}
	if !a.solverBusy.TryAcquire(1) {
		a.notify(ui.LevelError, "A solve is already running")
		return ErrSolveInFlight
	}
	if !a.sched.Admit() {
		a.solverBusy.Release(1)
		a.logger.Debug("solve.cooldown", map[string]any{"until": a.sched.CooldownUntil()})
		return nil
	}
	if a.cfg.Algorithm != algo {
		a.cfg.Algorithm = algo
		a.saveSettings()
	}

	ticket := a.ticket
	snapshot := a.model.Clone()
	fingerprint, err := snapshot.Fingerprint()
	if err != nil {
		a.logger.Error("solve.fingerprint_failed", map[string]any{"error": err.Error()})
	}
	a.solving = true
	a.stats = ui.StatsRow{Outcome: "solving"}
	a.logger.Info("solve.start", map[string]any{
		"algorithm":   algo,
		"rows":        snapshot.Rows(),
		"cols":        snapshot.Cols(),
		"walls":       snapshot.WallCount(),
		"fingerprint": fingerprint,
	})

	a.goAsync(func() {
		started := a.now()
		res, err := a.gateway.Solve(a.ctx, snapshot, algo)
		a.recordRun(state.SolveRun{
			SessionID:    a.sessionID,
			Algorithm:    algo,
			Rows:         snapshot.Rows(),
			Cols:         snapshot.Cols(),
			Fingerprint:  fingerprint,
			Outcome:      outcomeFor(err),
			NodesVisited: res.Stats.NodesVisited,
			PathLength:   res.Stats.PathLength,
			TimeTakenMS:  res.Stats.TimeTaken,
			StartTS:      started,
		})
		a.view.Post(func() { a.finishSolve(ticket, res, err) })
	})
	return nil
}

func (a *App) finishSolve(ticket uint64, res solver.Result, err error) {
	a.solving = false
	if ticket != a.ticket {
		a.solverBusy.Release(1)
		a.stats = ui.StatsRow{}
		a.logger.Info("solve.discarded", map[string]any{"algorithm": res.Algorithm})
		return
	}
	label := solver.Label(res.Algorithm)
	switch {
	case err == nil:
		a.stats = statsRow(res, state.OutcomeFound)
		a.notify(ui.LevelSuccess, fmt.Sprintf("%s found a path of %d cells", label, len(res.Path)))
	case errors.Is(err, solver.ErrUnreachable):
		a.stats = statsRow(res, state.OutcomeUnreachable)
		a.notify(ui.LevelInfo, "No path found: "+firstNonEmpty(res.Message, "the end is unreachable"))
	default:
		a.solverBusy.Release(1)
		a.stats = ui.StatsRow{Outcome: state.OutcomeFailed}
		a.logger.Error("solve.transport_failed", map[string]any{"error": err.Error()})
		a.notify(ui.LevelError, "Solver error: "+err.Error())
		return
	}
	a.last = &res
	a.logger.Info("solve.done", map[string]any{
		"algorithm": res.Algorithm,
		"visited":   len(res.Visited),
		"path":      len(res.Path),
		"found":     res.Found,
	})
	// Drop whatever is still live so only this run can release the solver.
	a.sched.Cancel()
	a.held = true
	a.sched.Play(res.Visited, res.Path)
}

func (a *App) recordRun(run state.SolveRun) {
	if _, err := a.store.RecordSolveRun(a.ctx, run); err != nil {
		a.logger.Error("store.record_failed", map[string]any{"error": err.Error()})
	}
}

// GenerateMaze asks the solver for a random maze of the current size and
// loads it.
func (a *App) GenerateMaze() error {
	if !a.solverBusy.TryAcquire(1) {
		a.notify(ui.LevelError, "Cannot generate while the solver is running")
		return ErrSolveInFlight
	}
	rows, cols, density := a.model.Rows(), a.model.Cols(), a.cfg.Density
	a.solving = true
	a.logger.Info("generate.start", map[string]any{"rows": rows, "cols": cols, "density": density})
	a.goAsync(func() {
		payload, err := a.gateway.Generate(a.ctx, rows, cols, density)
		a.view.Post(func() { a.finishGenerate(payload, err) })
	})
	return nil
}

func (a *App) finishGenerate(payload solver.MazePayload, err error) {
	a.solving = false
	a.solverBusy.Release(1)
	if err != nil {
		a.logger.Error("generate.failed", map[string]any{"error": err.Error()})
		a.notify(ui.LevelError, "Maze generation failed: "+err.Error())
		return
	}
	if err := a.replace(payload.Grid, maze.FromPair(payload.Start), maze.FromPair(payload.End)); err != nil {
		a.notify(ui.LevelError, "Generated maze rejected: "+err.Error())
		return
	}
	a.notify(ui.LevelSuccess, "New maze generated")
}

// ValidateMaze asks the solver whether the end is reachable.
func (a *App) ValidateMaze() error {
	if !a.solverBusy.TryAcquire(1) {
		a.notify(ui.LevelError, "Cannot validate while the solver is running")
		return ErrSolveInFlight
	}
	snapshot := a.model.Clone()
	a.solving = true
	a.goAsync(func() {
		out, err := a.gateway.Validate(a.ctx, snapshot)
		a.view.Post(func() {
			a.solving = false
			a.solverBusy.Release(1)
			switch {
			case err != nil:
				a.notify(ui.LevelError, "Validation failed: "+err.Error())
			case out.Valid:
				a.notify(ui.LevelSuccess, firstNonEmpty(out.Message, "Maze is solvable"))
			default:
				a.notify(ui.LevelInfo, firstNonEmpty(out.Message, "Maze has no solution"))
			}
		})
	})
	return nil
}

// ClearPath stops the animation and strips its overlay. Walls and markers
// stay.
func (a *App) ClearPath() {
	a.ClearOverlay()
	a.stats = ui.StatsRow{}
	a.last = nil
	a.logger.Info("grid.clear_path", nil)
}

func (a *App) ClearWalls() error {
	if err := a.refuseWhileBusy("clear walls"); err != nil {
		return err
	}
	a.resizer.ClearWalls()
	a.stats = ui.StatsRow{}
	a.last = nil
	a.logger.Info("grid.clear_walls", nil)
	return nil
}

// ResetGrid clears walls and returns the markers to their corners.
func (a *App) ResetGrid() error {
	if err := a.refuseWhileBusy("reset"); err != nil {
		return err
	}
	a.resizer.Reset()
	a.stats = ui.StatsRow{}
	a.last = nil
	a.logger.Info("grid.reset", map[string]any{"rows": a.model.Rows(), "cols": a.model.Cols()})
	return nil
}

func (a *App) Resize(rows, cols int) error {
	if err := a.refuseWhileBusy("resize"); err != nil {
		return err
	}
	report, err := a.resizer.Resize(rows, cols)
	if err != nil {
		a.notify(ui.LevelError, fmt.Sprintf("Rows and columns must be between %d and %d", a.cfg.MinDim, a.cfg.MaxDim))
		return err
	}
	a.cfg.Rows, a.cfg.Cols = rows, cols
	a.stats = ui.StatsRow{}
	a.last = nil
	a.logger.Info("grid.resize", map[string]any{
		"rows":                rows,
		"cols":                cols,
		"dropped_walls":       report.DroppedWalls,
		"walls_under_markers": report.WallsUnderMarkers,
		"start_clamped":       report.StartClamped,
		"end_clamped":         report.EndClamped,
		"end_relocated":       report.EndRelocated,
	})
	return nil
}

func (a *App) CycleAlgorithm() string {
	a.cfg.Algorithm = solver.NextAlgorithm(a.cfg.Algorithm)
	a.saveSettings()
	a.notify(ui.LevelInfo, "Algorithm: "+solver.Label(a.cfg.Algorithm))
	return a.cfg.Algorithm
}

// AdjustSpeed moves the per-tick delay by steps of 10ms; positive steps
// are faster.
func (a *App) AdjustSpeed(steps int) time.Duration {
	d := stepDelay(a.sched.Delay(), steps)
	a.sched.SetDelay(d)
	a.cfg.DelayMS = int(d / time.Millisecond)
	a.saveSettings()
	return d
}

func (a *App) LoadPreset(id string) error {
	if err := a.refuseWhileBusy("load a preset"); err != nil {
		return err
	}
	p, err := presets.Find(a.presets, id)
	if err != nil {
		a.notify(ui.LevelError, err.Error())
		return err
	}
	grid, start, end, err := p.Maze()
	if err != nil {
		a.notify(ui.LevelError, err.Error())
		return err
	}
	if err := a.replace(grid, start, end); err != nil {
		a.notify(ui.LevelError, fmt.Sprintf("Preset %s rejected: %v", p.ID, err))
		return err
	}
	if p.Algorithm != "" {
		if algo, err := solver.CanonicalAlgorithm(p.Algorithm); err == nil {
			a.cfg.Algorithm = algo
		}
	}
	a.notify(ui.LevelSuccess, "Loaded preset "+p.Name)
	return nil
}

// LoadFile replaces the maze with a JSON maze file.
func (a *App) LoadFile(path string) error {
	if err := a.refuseWhileBusy("load a maze"); err != nil {
		return err
	}
	p, err := presets.ReadMazeFile(path)
	if err != nil {
		return err
	}
	if err := a.replace(p.Grid, maze.FromPair(p.Start), maze.FromPair(p.End)); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	a.logger.Info("grid.load_file", map[string]any{"path": path})
	return nil
}

func (a *App) replace(grid [][]bool, start, end maze.Coord) error {
	if err := a.resizer.Replace(grid, start, end); err != nil {
		a.logger.Error("grid.replace_failed", map[string]any{"error": err.Error()})
		return err
	}
	a.cfg.Rows, a.cfg.Cols = a.model.Rows(), a.model.Cols()
	a.stats = ui.StatsRow{}
	a.last = nil
	return nil
}

// ExportMaze writes the maze as JSON under the data dir.
func (a *App) ExportMaze() error {
	snapshot := a.model.Clone()
	dir := filepath.Join(a.cfg.DataDir, "mazes")
	now := a.now()
	a.goAsync(func() {
		path, err := presets.WriteMazeFile(dir, snapshot, now)
		a.view.Post(func() {
			if err != nil {
				a.logger.Error("grid.export_failed", map[string]any{"error": err.Error()})
				a.notify(ui.LevelError, "Export failed: "+err.Error())
				return
			}
			a.logger.Info("grid.export", map[string]any{"path": path})
			a.notify(ui.LevelSuccess, "Saved "+path)
		})
	})
	return nil
}

// Explain opens the info modal for the selected algorithm and last run.
func (a *App) Explain() {
	a.view.SetInfo(solver.Label(a.cfg.Algorithm), buildExplainMarkdown(a.cfg.Algorithm, a.last, a.stats), true)
}

// LoadHistory refreshes the run history shown in the stats drawer.
func (a *App) LoadHistory() {
	a.goAsync(func() {
		sum, err := a.store.GetSummary(a.ctx)
		if err != nil {
			a.logger.Error("store.summary_failed", map[string]any{"error": err.Error()})
			return
		}
		runs, err := a.store.RecentRuns(a.ctx, 8)
		if err != nil {
			a.logger.Error("store.recent_failed", map[string]any{"error": err.Error()})
			return
		}
		h := historyState(sum, runs)
		a.view.Post(func() { a.history = h })
	})
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
