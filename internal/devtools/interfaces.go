package devtools

import (
	"context"
	"net/http"

	"pathgrid/internal/solver"
)

// Demo is a stand-in for the external solver service.
type Demo interface {
	Resolve(name string) Scenario
	SetScenario(name string) Scenario
	Solve(req solver.Request) (int, solver.Response)
	Generate(req solver.GenerateRequest) (int, solver.MazePayload)
	Validate(req solver.MazePayload) (int, solver.ValidateResponse)
	Handler() http.Handler
	Serve(ctx context.Context, addr string) error
}

var _ Demo = (*Manager)(nil)
