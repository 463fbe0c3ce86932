package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"pathgrid/internal/animate"
	"pathgrid/internal/devtools"
	"pathgrid/internal/edit"
	"pathgrid/internal/maze"
	"pathgrid/internal/presets"
	"pathgrid/internal/render"
	"pathgrid/internal/solver"
	"pathgrid/internal/state"
	"pathgrid/internal/telemetry"
	"pathgrid/internal/ui"
)

// App owns the maze and every controller around it. Apart from the
// goroutines that wait on the solver and the store, all of its state is
// touched only on the view's event loop.
type App struct {
	cfg    Config
	logger *telemetry.Logger
	store  Store
	view   View
	root   *ui.Root
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	model   *maze.Model
	board   *render.Surface
	sched   *animate.Scheduler
	edits   *edit.Controller
	resizer *edit.ResizeController
	gateway *solver.Gateway
	// solverBusy admits one solver request at a time. A solve keeps it
	// until its animation resolves.
	solverBusy *semaphore.Weighted
	held       bool
	solving    bool

	mockStop context.CancelFunc

	sessionID string
	presets   []presets.Preset
	stats     ui.StatsRow
	last      *solver.Result
	history   ui.HistoryState
	// ticket changes whenever the overlay is dropped, so a solve that
	// answers afterwards is discarded.
	ticket uint64
}

func New(cfg Config) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	logger, err := telemetry.NewLogger(cfg.LogPath)
	if err != nil {
		return nil, err
	}

	store, err := state.NewSQLite(filepath.Join(cfg.DataDir, "state.db"))
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	if err := store.EnsureSchema(context.Background()); err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}
	if settings, err := store.LoadSettings(context.Background()); err != nil {
		logger.Error("settings.load_failed", map[string]any{"error": err.Error()})
	} else {
		cfg.ApplySettings(settings)
	}

	transport, mockStop, err := openTransport(cfg, logger)
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	root := ui.New(ui.Options{
		ASCIIOnly:    cfg.ASCIIOnly,
		Debug:        cfg.Debug,
		StyleVariant: cfg.UI.StyleVariant,
		MotionLevel:  cfg.UI.MotionLevel,
	})
	a, err := assemble(cfg, root, store, transport, logger)
	if err != nil {
		if mockStop != nil {
			mockStop()
		}
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}
	a.root = root
	a.mockStop = mockStop
	root.SetController(a)

	loader := presets.NewLoader()
	all, err := loader.LoadAll(a.ctx, cfg.PresetDir)
	if err != nil {
		logger.Error("presets.load_failed", map[string]any{"dir": cfg.PresetDir, "error": err.Error()})
		all, _ = loader.LoadBuiltin()
	}
	a.presets = all

	if cfg.Load != "" {
		if err := a.LoadFile(cfg.Load); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

// openTransport starts the in-process mock solver when asked to and picks
// the transport for the gateway.
func openTransport(cfg Config, logger *telemetry.Logger) (solver.Transport, context.CancelFunc, error) {
	if !cfg.MockSolver {
		t, err := solver.Open(cfg.SolverURL, cfg.SolverCmd, cfg.SolverTimeout)
		return t, nil, err
	}
	mock := devtools.NewManager(devtools.WithStyle(cfg.MockStyle), devtools.WithLogger(logger))
	mock.SetScenario(cfg.MockScenario)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, nil, fmt.Errorf("start mock solver: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := mock.ServeListener(ctx, ln); err != nil {
			logger.Error("mock.serve_failed", map[string]any{"error": err.Error()})
		}
	}()
	return solver.NewHTTPTransport("http://"+ln.Addr().String(), cfg.SolverTimeout), cancel, nil
}

// assemble builds the core around view, store and transport.
func assemble(cfg Config, view View, store Store, transport solver.Transport, logger *telemetry.Logger) (*App, error) {
	model, err := maze.New(cfg.Rows, cfg.Cols)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		view:       view,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		model:      model,
		board:      render.NewSurface(model.Rows(), model.Cols()),
		gateway:    solver.NewGateway(transport),
		solverBusy: semaphore.NewWeighted(1),
		sessionID:  uuid.NewString(),
	}
	a.sched = animate.NewScheduler(a.board, a.model,
		animate.WithDelay(cfg.Delay()),
		animate.WithBatchSize(cfg.BatchSize),
		animate.WithClock(func() time.Time { return a.now() }),
		animate.WithTimer(animate.LoopTimer(view.Post)),
		animate.WithResolve(a.onResolve),
	)
	a.edits = edit.NewController(a.model, a.board, a)
	a.edits.OnEdit(func() {
		a.logger.Debug("grid.edit", map[string]any{"state": a.edits.State().String(), "walls": a.model.WallCount()})
	})
	a.edits.Attach()
	a.resizer = edit.NewResizeController(a.model, a.board, a, edit.Bounds{Min: cfg.MinDim, Max: cfg.MaxDim}, a.edits)
	render.Paint(a.board, a.model)
	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	if a.root == nil {
		return ErrNoView
	}
	a.logger.Info("app.start", map[string]any{
		"session":   a.sessionID,
		"transport": a.gateway.TransportName(),
		"rows":      a.model.Rows(),
		"cols":      a.model.Cols(),
	})
	go func() {
		select {
		case <-ctx.Done():
			a.root.Stop()
		case <-a.ctx.Done():
		}
	}()
	return a.root.Run()
}

func (a *App) Close() {
	a.cancel()
	a.wg.Wait()
	if a.mockStop != nil {
		a.mockStop()
	}
	a.logger.Info("app.stop", map[string]any{"session": a.sessionID})
	_ = a.store.Close()
	_ = a.logger.Close()
}

// ClearOverlay drops the solve overlay when the user starts editing.
func (a *App) ClearOverlay() {
	a.ticket++
	a.sched.ClearOverlay()
}

// Cancel stops the live animation and drops any answer still on its way.
func (a *App) Cancel() bool {
	a.ticket++
	return a.sched.Cancel()
}

func (a *App) onResolve(run *animate.Run) {
	event := "anim.done"
	if run.Superseded() {
		event = "anim.superseded"
	}
	a.logger.Debug(event, map[string]any{"generation": run.Generation, "cells": run.Total(), "progress": run.Progress()})
	if a.held {
		a.held = false
		a.solverBusy.Release(1)
	}
}

// busy reports whether a solver request or its animation is running.
func (a *App) busy() bool {
	if !a.solverBusy.TryAcquire(1) {
		return true
	}
	a.solverBusy.Release(1)
	return false
}

func (a *App) notify(level ui.Level, msg string) {
	a.view.FlashStatus(level, msg)
	a.logger.Info("ui.notify", map[string]any{"level": int(level), "message": msg})
}

// refuseWhileBusy notifies and returns ErrSolveInFlight when the maze must
// not be rewritten.
func (a *App) refuseWhileBusy(action string) error {
	if !a.busy() {
		return nil
	}
	a.notify(ui.LevelError, fmt.Sprintf("Cannot %s while the solver is running; press c to clear the path", action))
	return ErrSolveInFlight
}

// goAsync runs fn off the loop; Close waits for it.
func (a *App) goAsync(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

func (a *App) saveSettings() {
	values := a.cfg.Settings()
	a.goAsync(func() {
		if err := a.store.SaveSettings(a.ctx, values); err != nil {
			a.logger.Error("settings.save_failed", map[string]any{"error": err.Error()})
		}
	})
}

func (a *App) Board() *render.Surface { return a.board }

func (a *App) Panel() ui.PanelState {
	p := ui.PanelState{
		Algorithm:      a.cfg.Algorithm,
		AlgorithmLabel: solver.Label(a.cfg.Algorithm),
		Rows:           a.model.Rows(),
		Cols:           a.model.Cols(),
		MinDim:         a.cfg.MinDim,
		MaxDim:         a.cfg.MaxDim,
		Delay:          a.sched.Delay(),
		Walls:          a.model.WallCount(),
		EditState:      a.edits.State().String(),
		Busy:           a.solving,
		Animating:      a.sched.Busy(),
		Stats:          a.stats,
		Transport:      a.gateway.TransportName(),
		History:        a.history,
	}
	if run := a.sched.Current(); run != nil {
		p.Progress = run.Progress()
	}
	for _, pr := range a.presets {
		p.Presets = append(p.Presets, ui.PresetItem{ID: pr.ID, Name: pr.Name, Builtin: pr.Builtin})
	}
	return p
}

func (a *App) Quit() {
	a.logger.Info("app.quit", map[string]any{"session": a.sessionID})
	a.view.Stop()
}

var _ ui.Controller = (*App)(nil)
var _ edit.Overlay = (*App)(nil)
