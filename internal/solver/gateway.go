package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"pathgrid/internal/maze"
)

// Gateway is the only path from the app to the external solver.
type Gateway struct {
	transport Transport
}

func NewGateway(t Transport) *Gateway {
	return &Gateway{transport: t}
}

func (g *Gateway) TransportName() string {
	if g.transport == nil {
		return "none"
	}
	return g.transport.Name()
}

// Solve sends m and algorithm to the solver. m must not change while Solve
// runs; callers on an event loop pass a clone.
//
// When the solver finds no path the returned Result is still populated with
// the explored cells and stats, and the error wraps ErrUnreachable.
// Transport and decoding failures return a zero Result.
func (g *Gateway) Solve(ctx context.Context, m *maze.Model, algorithm string) (Result, error) {
	algo, err := CanonicalAlgorithm(algorithm)
	if err != nil {
		return Result{}, err
	}
	req := Request{
		Algorithm: algo,
		Grid:      m.ToGrid(),
		Start:     m.Start().Pair(),
		End:       m.End().Pair(),
	}
	var resp Response
	if err := g.call(ctx, OpSolve, req, schemaSolveResponse, &resp); err != nil {
		return Result{}, err
	}

	res := Result{
		Algorithm: algo,
		Visited:   toCoords(resp.Visited),
		Found:     resp.Success,
		Message:   resp.Error,
	}
	if resp.Success {
		res.Path = toCoords(resp.Path)
	}
	if resp.Stats != nil {
		res.Stats = *resp.Stats
	} else {
		res.Stats = Stats{NodesVisited: len(res.Visited), PathLength: len(res.Path)}
	}
	if err := verify(m, res); err != nil {
		return Result{}, err
	}
	if !res.Found {
		res.Stats.PathLength = 0
		msg := res.Message
		if msg == "" {
			msg = "solver reported failure"
		}
		return res, fmt.Errorf("%w: %s", ErrUnreachable, msg)
	}
	return res, nil
}

// Generate asks the solver for a random maze of the given size.
func (g *Gateway) Generate(ctx context.Context, rows, cols int, density float64) (MazePayload, error) {
	var out MazePayload
	req := GenerateRequest{Rows: rows, Cols: cols, Density: density}
	if err := g.call(ctx, OpGenerate, req, schemaMaze, &out); err != nil {
		return MazePayload{}, err
	}
	return out, nil
}

// Validate asks the solver whether m has a path from start to end.
func (g *Gateway) Validate(ctx context.Context, m *maze.Model) (ValidateResponse, error) {
	var out ValidateResponse
	if err := g.call(ctx, OpValidate, PayloadFor(m), schemaValidateResponse, &out); err != nil {
		return ValidateResponse{}, err
	}
	return out, nil
}

func (g *Gateway) call(ctx context.Context, op Op, req any, schema string, out any) error {
	if g.transport == nil {
		return fmt.Errorf("%w: no transport", ErrTransport)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}
	status, data, err := g.transport.Do(ctx, op, body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d: %s", ErrTransport, op, status, errorMessage(data))
	}
	return decodeChecked(schema, data, out)
}

// errorMessage pulls a message out of a failed response body.
func errorMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	if len(data) > 200 {
		data = data[:200]
	}
	return string(data)
}
