package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"

	"pathgrid/internal/maze"
	"pathgrid/internal/solver"
	"pathgrid/internal/telemetry"
)

// Scenario shapes how the mock answers, so failure paths can be exercised
// without a real solver.
type Scenario struct {
	Name string
	// Delay is added before every answer.
	Delay time.Duration
	// Unreachable makes every solve report no path after exploring.
	Unreachable bool
	// FailStatus, when non-zero, answers every request with that status.
	FailStatus int
	// Garbage answers with a body that is not JSON.
	Garbage bool
}

// Manager serves the solver endpoints from the in-process searches.
type Manager struct {
	mu       sync.Mutex
	scenario Scenario
	style    string
	seed     int64
	calls    int64
	logger   *telemetry.Logger
}

type Option func(*Manager)

// WithSeed fixes the generator seed; zero seeds from the clock.
func WithSeed(seed int64) Option {
	return func(m *Manager) { m.seed = seed }
}

// WithStyle picks the generator: "random" scatters walls by density,
// "perfect" carves a spanning-tree maze.
func WithStyle(style string) Option {
	return func(m *Manager) { m.style = style }
}

func WithLogger(l *telemetry.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{style: "random", scenario: Scenario{Name: "normal"}}
	for _, opt := range opts {
		opt(m)
	}
	if m.seed == 0 {
		m.seed = time.Now().UnixNano()
	}
	return m
}

func (m *Manager) Resolve(name string) Scenario {
	switch name {
	case "slow":
		return Scenario{Name: name, Delay: 1500 * time.Millisecond}
	case "unreachable":
		return Scenario{Name: name, Unreachable: true}
	case "broken":
		return Scenario{Name: name, FailStatus: http.StatusInternalServerError}
	case "garbage":
		return Scenario{Name: name, Garbage: true}
	default:
		return Scenario{Name: "normal"}
	}
}

func (m *Manager) SetScenario(name string) Scenario {
	sc := m.Resolve(name)
	m.mu.Lock()
	m.scenario = sc
	m.mu.Unlock()
	return sc
}

func (m *Manager) current() Scenario {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scenario
}

func (m *Manager) nextRand() *rand.Rand {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return rand.New(rand.NewSource(m.seed + m.calls))
}

func checkGrid(grid [][]bool, points ...[2]int) error {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return errors.New("Grid state not provided")
	}
	cols := len(grid[0])
	for _, row := range grid {
		if len(row) != cols {
			return errors.New("Grid rows have different lengths")
		}
	}
	for _, p := range points {
		if p[0] < 0 || p[0] >= len(grid) || p[1] < 0 || p[1] >= cols {
			return fmt.Errorf("Coordinate [%d, %d] is outside the grid", p[0], p[1])
		}
	}
	return nil
}

func (m *Manager) Solve(req solver.Request) (int, solver.Response) {
	if err := checkGrid(req.Grid, req.Start, req.End); err != nil {
		return http.StatusBadRequest, solver.Response{Error: err.Error()}
	}
	search, ok := searches[req.Algorithm]
	if !ok {
		return http.StatusBadRequest, solver.Response{Error: "Unknown algorithm: " + req.Algorithm}
	}
	began := time.Now()
	path, visited := search(newBoard(req.Grid, req.Start, req.End))
	elapsed := float64(time.Since(began).Microseconds()) / 1000

	if path == nil || m.current().Unreachable {
		return http.StatusOK, solver.Response{
			Error: "No path found between start and end points",
			Stats: &solver.Stats{NodesVisited: len(visited), TimeTaken: elapsed},
			// The real service omits visited here; the mock keeps it so
			// partial exploration can be animated.
			Visited: pairs(visited),
		}
	}
	return http.StatusOK, solver.Response{
		Success: true,
		Visited: pairs(visited),
		Path:    pairs(path),
		Stats: &solver.Stats{
			NodesVisited: len(visited),
			PathLength:   len(path),
			TimeTaken:    elapsed,
		},
	}
}

func (m *Manager) Generate(req solver.GenerateRequest) (int, solver.MazePayload) {
	rows, cols := req.Rows, req.Cols
	if rows <= 0 {
		rows = 30
	}
	if cols <= 0 {
		cols = 30
	}
	if rows*cols < 2 {
		return http.StatusBadRequest, solver.MazePayload{Error: "Maze needs at least two cells"}
	}
	density := req.Density
	if density < 0 || density > 1 {
		return http.StatusBadRequest, solver.MazePayload{Error: "Density must be between 0 and 1"}
	}
	rng := m.nextRand()
	if m.style == "perfect" {
		grid, start, end := perfectGrid(rng, rows, cols)
		return http.StatusOK, solver.MazePayload{Grid: grid, Start: start, End: end}
	}
	grid := randomGrid(rng, rows, cols, density)
	return http.StatusOK, solver.MazePayload{Grid: grid, Start: [2]int{0, 0}, End: [2]int{rows - 1, cols - 1}}
}

func (m *Manager) Validate(req solver.MazePayload) (int, solver.ValidateResponse) {
	if err := checkGrid(req.Grid, req.Start, req.End); err != nil {
		return http.StatusBadRequest, solver.ValidateResponse{Message: err.Error()}
	}
	if path, _ := breadthFirst(newBoard(req.Grid, req.Start, req.End)); path == nil {
		return http.StatusOK, solver.ValidateResponse{Message: "No path exists between start and end points"}
	}
	return http.StatusOK, solver.ValidateResponse{Valid: true, Message: "Valid maze with solution"}
}

// Handler serves POST /api/solve, /api/maze/generate and /api/maze/validate.
func (m *Manager) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, op := range []solver.Op{solver.OpSolve, solver.OpGenerate, solver.OpValidate} {
		mux.HandleFunc("POST "+op.Path(), func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, 32<<20))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "No data provided"})
				return
			}
			status, out, ok := m.Answer(r.Context(), op, body)
			if !ok {
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write(out)
		})
	}
	return mux
}

// Answer runs one request through the active scenario and returns the
// status and encoded body. ok is false when ctx ended first.
func (m *Manager) Answer(ctx context.Context, op solver.Op, body []byte) (status int, out []byte, ok bool) {
	sc := m.current()
	if sc.Delay > 0 {
		select {
		case <-time.After(sc.Delay):
		case <-ctx.Done():
			return 0, nil, false
		}
	}
	if sc.Garbage {
		return http.StatusOK, []byte("{not json"), true
	}
	if sc.FailStatus != 0 {
		return sc.FailStatus, encode(map[string]any{"success": false, "error": "mock solver scenario " + sc.Name}), true
	}
	var answer any
	switch op {
	case solver.OpSolve:
		var req solver.Request
		if err := json.Unmarshal(body, &req); err != nil {
			status, out = badRequest()
			return status, out, true
		}
		status, answer = m.Solve(req)
	case solver.OpGenerate:
		var req solver.GenerateRequest
		if err := json.Unmarshal(body, &req); err != nil {
			status, out = badRequest()
			return status, out, true
		}
		status, answer = m.Generate(req)
	case solver.OpValidate:
		var req solver.MazePayload
		if err := json.Unmarshal(body, &req); err != nil {
			status, out = badRequest()
			return status, out, true
		}
		status, answer = m.Validate(req)
	default:
		return http.StatusNotFound, encode(map[string]any{"success": false, "error": "unknown operation"}), true
	}
	m.logger.Info("mock.request", map[string]any{"op": string(op), "status": status, "scenario": sc.Name})
	return status, encode(answer), true
}

func badRequest() (int, []byte) {
	return http.StatusBadRequest, encode(map[string]any{"success": false, "error": "No data provided"})
}

func encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"success":false,"error":"encode failed"}`)
	}
	return b
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Serve listens on addr until ctx is done.
func (m *Manager) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return m.ServeListener(ctx, ln)
}

func (m *Manager) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	m.logger.Info("mock.listen", map[string]any{"addr": ln.Addr().String(), "style": m.style})
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func pairs(cells []maze.Coord) [][2]int {
	out := make([][2]int, 0, len(cells))
	for _, c := range cells {
		out = append(out, c.Pair())
	}
	return out
}
