package app

import (
	"context"

	"pathgrid/internal/state"
	"pathgrid/internal/ui"
)

// View is the part of the terminal view the app drives. Post is the only
// method safe to call off the event loop.
type View interface {
	Post(fn func())
	FlashStatus(level ui.Level, msg string)
	SetInfo(title, markdown string, open bool)
	Stop()
}

type Store interface {
	RecordSolveRun(ctx context.Context, run state.SolveRun) (int64, error)
	RecentRuns(ctx context.Context, limit int) ([]state.SolveRun, error)
	GetSummary(ctx context.Context) (state.Summary, error)
	SaveSettings(ctx context.Context, values map[string]string) error
	Close() error
}
