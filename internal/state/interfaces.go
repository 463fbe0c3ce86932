package state

import (
	"context"
	"time"
)

type Store interface {
	EnsureSchema(ctx context.Context) error
	RecordSolveRun(ctx context.Context, run SolveRun) (int64, error)
	RecentRuns(ctx context.Context, limit int) ([]SolveRun, error)
	GetSummary(ctx context.Context) (Summary, error)
	SaveSettings(ctx context.Context, values map[string]string) error
	LoadSettings(ctx context.Context) (map[string]string, error)
	Close() error
}

// Outcome values stored per solve run.
const (
	OutcomeFound       = "found"
	OutcomeUnreachable = "unreachable"
	OutcomeFailed      = "failed"
	OutcomeCancelled   = "cancelled"
)

type SolveRun struct {
	ID           int64
	RunID        string
	SessionID    string
	Algorithm    string
	Rows         int
	Cols         int
	Fingerprint  string
	Outcome      string
	NodesVisited int
	PathLength   int
	TimeTakenMS  float64
	StartTS      time.Time
}

type Summary struct {
	Runs        int
	Found       int
	Unreachable int
	Failed      int
	// BestPath maps algorithm to its shortest found path length.
	BestPath map[string]int
}
