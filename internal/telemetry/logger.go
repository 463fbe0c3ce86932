package telemetry

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	clog "github.com/charmbracelet/log"
)

// Logger writes one JSON object per event. A nil *Logger discards.
type Logger struct {
	l *clog.Logger
	c io.Closer
}

// NewLogger logs to path, truncating it. An empty path discards events.
func NewLogger(path string) (*Logger, error) {
	if path == "" {
		return NewWriterLogger(io.Discard), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	lg := NewWriterLogger(f)
	lg.c = f
	return lg, nil
}

func NewWriterLogger(w io.Writer) *Logger {
	return &Logger{l: clog.NewWithOptions(w, clog.Options{
		Formatter:       clog.JSONFormatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		TimeFunction:    func(t time.Time) time.Time { return t.UTC() },
		Level:           clog.DebugLevel,
	})}
}

func (l *Logger) Debug(msg string, fields map[string]any) {
	l.log(clog.DebugLevel, msg, fields)
}

func (l *Logger) Info(msg string, fields map[string]any) {
	l.log(clog.InfoLevel, msg, fields)
}

func (l *Logger) Error(msg string, fields map[string]any) {
	l.log(clog.ErrorLevel, msg, fields)
}

func (l *Logger) log(level clog.Level, msg string, fields map[string]any) {
	if l == nil || l.l == nil {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	l.l.Log(level, msg, kv...)
}

func (l *Logger) Close() error {
	if l == nil || l.c == nil {
		return nil
	}
	return l.c.Close()
}
