package devtools

import (
	"context"

	"pathgrid/internal/solver"
)

// LocalTransport answers solver requests in process, skipping HTTP.
type LocalTransport struct {
	m *Manager
}

func (m *Manager) Transport() *LocalTransport {
	return &LocalTransport{m: m}
}

func (t *LocalTransport) Name() string { return "mock (in process)" }

func (t *LocalTransport) Do(ctx context.Context, op solver.Op, body []byte) (int, []byte, error) {
	status, out, ok := t.m.Answer(ctx, op, body)
	if !ok {
		return 0, nil, ctx.Err()
	}
	return status, out, nil
}

var _ solver.Transport = (*LocalTransport)(nil)
