// Package logging wires log/slog for the layers and backings. Loggers
// obtained from For follow whatever default handler is installed, so tests
// can swap it with CaptureForTest at any point.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var level = new(slog.LevelVar)

// Init installs the global slog handler. format is "text" or "json";
// anything else means text. A nil w writes to stderr.
func Init(levelStr, format string, w io.Writer) {
	level.Set(ParseLevel(levelStr))
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// For returns a logger that tags every record with component.
func For(component string) *slog.Logger {
	return slog.New(&componentHandler{component: component})
}

// SetLevel changes the minimum level at runtime.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Level reports the current minimum level.
func Level() slog.Level {
	return level.Level()
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to slog
// levels, case-insensitively. Unknown strings are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// componentHandler resolves slog.Default() on every call instead of capturing
// a handler at construction, so package-level loggers see later SetDefault calls.
type componentHandler struct {
	component string
	attrs     []slog.Attr
}

func (h *componentHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return slog.Default().Handler().Enabled(ctx, l)
}

func (h *componentHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(slog.String("component", h.component))
	r.AddAttrs(h.attrs...)
	return slog.Default().Handler().Handle(ctx, r)
}

func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &componentHandler{component: h.component, attrs: merged}
}

// WithGroup is a no-op; none of the loggers here use groups.
func (h *componentHandler) WithGroup(string) slog.Handler {
	return h
}
