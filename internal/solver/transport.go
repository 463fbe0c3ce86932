package solver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"
)

// Op names a solver endpoint.
type Op string

const (
	OpSolve    Op = "solve"
	OpGenerate Op = "generate"
	OpValidate Op = "validate"
)

func (o Op) Path() string {
	switch o {
	case OpGenerate:
		return "/api/maze/generate"
	case OpValidate:
		return "/api/maze/validate"
	default:
		return "/api/solve"
	}
}

// Transport carries one JSON request to the solver and returns the status
// and raw body. A non-nil error means nothing usable came back.
type Transport interface {
	Name() string
	Do(ctx context.Context, op Op, body []byte) (int, []byte, error)
}

const maxResponseBytes = 32 << 20

type HTTPTransport struct {
	base   string
	client *http.Client
}

func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPTransport{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTransport) Name() string { return "http " + t.base }

func (t *HTTPTransport) Do(ctx context.Context, op Op, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base+op.Path(), bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read %s response: %w", op, err)
	}
	return resp.StatusCode, data, nil
}

// ExecTransport runs an external solver program once per request as
// `<program> [args...] <op>`, with the request on stdin and the response on
// stdout. A non-zero exit or running past the timeout is a transport
// failure.
type ExecTransport struct {
	program string
	args    []string
	timeout time.Duration
}

func NewExecTransport(command string, timeout time.Duration) (*ExecTransport, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty solver command", ErrTransport)
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH", ErrTransport, fields[0])
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ExecTransport{program: fields[0], args: fields[1:], timeout: timeout}, nil
}

func (t *ExecTransport) Name() string { return "exec " + t.program }

func (t *ExecTransport) Do(ctx context.Context, op Op, body []byte) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	args := append(append([]string(nil), t.args...), string(op))
	cmd := exec.CommandContext(ctx, t.program, args...)
	// Children that inherited stdout must not hold Output open after a kill.
	cmd.WaitDelay = time.Second
	cmd.Stdin = bytes.NewReader(body)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, nil, fmt.Errorf("%s %s timed out after %s", t.program, op, t.timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return 0, nil, fmt.Errorf("%s %s failed: %s", t.program, op, msg)
	}
	return http.StatusOK, out, nil
}

// Open picks the exec transport when command is set and HTTP otherwise.
func Open(baseURL, command string, timeout time.Duration) (Transport, error) {
	if strings.TrimSpace(command) != "" {
		return NewExecTransport(command, timeout)
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("%w: no solver url or command configured", ErrTransport)
	}
	return NewHTTPTransport(baseURL, timeout), nil
}
