package app

import (
	"errors"

	"pathgrid/internal/solver"
	"pathgrid/internal/state"
	"pathgrid/internal/ui"
)

var (
	// ErrSolveInFlight rejects solver requests and maze rewrites while an
	// earlier request or its animation is still running.
	ErrSolveInFlight = errors.New("solver busy")
	ErrNoView        = errors.New("app has no terminal view")
)

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return state.OutcomeFound
	case errors.Is(err, solver.ErrUnreachable):
		return state.OutcomeUnreachable
	default:
		return state.OutcomeFailed
	}
}

func statsRow(res solver.Result, outcome string) ui.StatsRow {
	return ui.StatsRow{
		NodesVisited: res.Stats.NodesVisited,
		PathLength:   res.Stats.PathLength,
		TimeTakenMS:  res.Stats.TimeTaken,
		Outcome:      outcome,
	}
}

func historyState(sum state.Summary, runs []state.SolveRun) ui.HistoryState {
	out := ui.HistoryState{
		Loaded:      true,
		Runs:        sum.Runs,
		Found:       sum.Found,
		Unreachable: sum.Unreachable,
		Failed:      sum.Failed,
		BestPath:    sum.BestPath,
	}
	for _, r := range runs {
		out.Recent = append(out.Recent, ui.HistoryRow{
			Algorithm:    r.Algorithm,
			Outcome:      r.Outcome,
			Rows:         r.Rows,
			Cols:         r.Cols,
			NodesVisited: r.NodesVisited,
			PathLength:   r.PathLength,
			TimeTakenMS:  r.TimeTakenMS,
			When:         r.StartTS,
		})
	}
	return out
}
