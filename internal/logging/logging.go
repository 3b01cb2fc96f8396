// Package logging builds the structured loggers used by the runtime and its
// tools.
package logging

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"sync"

	"wakeos/hal"
)

// NewLogger creates a configured slog.Logger writing to w.
//
// level: slog level (DEBUG, INFO, WARN, ERROR)
// format: "text" (human-readable) or "json" (structured)
func NewLogger(level slog.Level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LineWriter adapts a line-oriented hal.Logger (a UART, the host console) to
// io.Writer. Partial lines are buffered until their newline arrives.
type LineWriter struct {
	mu   sync.Mutex
	out  hal.Logger
	pend []byte
}

func NewLineWriter(out hal.Logger) *LineWriter {
	return &LineWriter{out: out}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			w.pend = append(w.pend, p...)
			break
		}
		line := p[:i]
		if len(w.pend) > 0 {
			w.pend = append(w.pend, line...)
			line = w.pend
		}
		w.out.WriteLineBytes(bytes.TrimSuffix(line, []byte{'\r'}))
		w.pend = w.pend[:0]
		p = p[i+1:]
	}
	return n, nil
}
