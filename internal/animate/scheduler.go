package animate

import (
	"time"

	"pathgrid/internal/maze"
	"pathgrid/internal/render"
)

const (
	DefaultDelay     = 50 * time.Millisecond
	DefaultBatchSize = 3
)

// Timer schedules fn after d. Implementations must run fn on the same
// event loop that drives Play and Cancel.
type Timer interface {
	AfterFunc(d time.Duration, fn func())
}

// SteppedTimer holds callbacks until Step runs them on the caller's
// goroutine. It is the default when no Timer is given.
type SteppedTimer struct {
	pending []func()
}

func (t *SteppedTimer) AfterFunc(_ time.Duration, fn func()) {
	t.pending = append(t.pending, fn)
}

// Step runs the oldest pending callback and reports whether there was one.
func (t *SteppedTimer) Step() bool {
	if len(t.pending) == 0 {
		return false
	}
	fn := t.pending[0]
	t.pending = t.pending[1:]
	fn()
	return true
}

func (t *SteppedTimer) Pending() int { return len(t.pending) }

type loopTimer struct {
	post func(func())
}

// LoopTimer returns a Timer that waits on a runtime timer and hands the
// callback to post, which is expected to enqueue it on the event loop.
func LoopTimer(post func(func())) Timer {
	return loopTimer{post: post}
}

func (t loopTimer) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { t.post(fn) })
}

type Options struct {
	Delay     time.Duration
	BatchSize int
	Now       func() time.Time
	Timer     Timer
	// OnResolve runs once per run, when it completes or is superseded.
	OnResolve func(*Run)
}

type Option func(*Options)

func WithDelay(d time.Duration) Option {
	return func(o *Options) { o.Delay = d }
}

func WithBatchSize(n int) Option {
	return func(o *Options) { o.BatchSize = n }
}

func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

func WithTimer(t Timer) Option {
	return func(o *Options) { o.Timer = t }
}

func WithResolve(fn func(*Run)) Option {
	return func(o *Options) { o.OnResolve = fn }
}

// Scheduler replays solver output onto a backend in timed batches. At most
// one run is live: every Play or Cancel bumps the generation and callbacks
// stamped with an older generation return without drawing.
type Scheduler struct {
	backend render.Backend
	grid    render.Grid
	opts    Options

	generation    uint64
	current       *Run
	lastTriggerAt time.Time
	cooldownUntil time.Time
}

func NewScheduler(backend render.Backend, grid render.Grid, opts ...Option) *Scheduler {
	o := Options{
		Delay:     DefaultDelay,
		BatchSize: DefaultBatchSize,
		Now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.BatchSize < 1 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Delay <= 0 {
		o.Delay = DefaultDelay
	}
	if o.Timer == nil {
		o.Timer = &SteppedTimer{}
	}
	return &Scheduler{backend: backend, grid: grid, opts: o}
}

func (s *Scheduler) Generation() uint64 { return s.generation }

func (s *Scheduler) Current() *Run { return s.current }

// Busy reports whether a run is still drawing.
func (s *Scheduler) Busy() bool {
	return s.current != nil && !s.current.resolved
}

func (s *Scheduler) Delay() time.Duration { return s.opts.Delay }

// SetDelay changes the per-tick delay. Ticks already scheduled keep theirs.
func (s *Scheduler) SetDelay(d time.Duration) {
	if d > 0 {
		s.opts.Delay = d
	}
}

func (s *Scheduler) BatchSize() int { return s.opts.BatchSize }

// LastTriggerAt is when Admit last let a trigger through.
func (s *Scheduler) LastTriggerAt() time.Time { return s.lastTriggerAt }

func (s *Scheduler) CooldownUntil() time.Time { return s.cooldownUntil }

// Admit reports whether a new trigger falls outside the cooldown window of
// the last run and records it when it does.
func (s *Scheduler) Admit() bool {
	now := s.opts.Now()
	if now.Before(s.cooldownUntil) {
		return false
	}
	s.lastTriggerAt = now
	return true
}

// Cooldown is how long a run over visited and path cells takes to draw.
func (s *Scheduler) Cooldown(visited, path int) time.Duration {
	return s.opts.Delay * time.Duration(batches(visited, s.opts.BatchSize)+batches(path, s.opts.BatchSize))
}

// Play supersedes any live run, strips the previous overlay and starts
// drawing visited then path. The first batch is drawn before Play returns.
func (s *Scheduler) Play(visited, path []maze.Coord) *Run {
	s.supersede()
	s.generation++
	run := newRun(s.generation, visited, path, s.opts.BatchSize)
	s.current = run

	render.Paint(s.backend, s.grid)
	now := s.opts.Now()
	s.cooldownUntil = now.Add(s.Cooldown(len(visited), len(path)))

	s.tick(run)
	return run
}

// Cancel invalidates the live run without touching what is drawn. It
// reports whether a run was live.
func (s *Scheduler) Cancel() bool {
	s.generation++
	s.cooldownUntil = time.Time{}
	return s.supersede()
}

// ClearOverlay cancels the live run and repaints the structural maze.
func (s *Scheduler) ClearOverlay() {
	s.Cancel()
	render.Paint(s.backend, s.grid)
}

func (s *Scheduler) supersede() bool {
	run := s.current
	if run == nil || run.resolved {
		return false
	}
	run.superseded = true
	s.resolve(run)
	return true
}

func (s *Scheduler) tick(run *Run) {
	if run.Generation != s.generation || run.resolved {
		return
	}
	if run.next >= len(run.batches) {
		s.resolve(run)
		return
	}
	b := run.batches[run.next]
	run.next++
	for _, at := range b.cells {
		run.drawn++
		s.draw(at, b.token)
	}
	s.opts.Timer.AfterFunc(s.opts.Delay, func() { s.tick(run) })
}

// draw decorates at unless it is outside the grid or currently structural.
func (s *Scheduler) draw(at maze.Coord, t render.Token) {
	if at.Row < 0 || at.Row >= s.grid.Rows() || at.Col < 0 || at.Col >= s.grid.Cols() {
		return
	}
	if s.grid.Classify(at) != maze.CellEmpty {
		return
	}
	s.backend.Place(at, t)
}

func (s *Scheduler) resolve(run *Run) {
	if run.resolved {
		return
	}
	run.resolved = true
	close(run.done)
	if s.opts.OnResolve != nil {
		s.opts.OnResolve(run)
	}
}

func batches(n, size int) int {
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
