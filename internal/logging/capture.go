package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Capture records slog output for assertions in specs.
type Capture struct {
	mu        sync.Mutex
	records   []slog.Record
	prev      *slog.Logger
	prevLevel slog.Level
}

// CaptureForTest installs a capturing default handler at debug level.
// Call Restore when done.
func CaptureForTest() *Capture {
	c := &Capture{
		prev:      slog.Default(),
		prevLevel: level.Level(),
	}
	slog.SetDefault(slog.New(&captureHandler{capture: c}))
	SetLevel(slog.LevelDebug)
	return c
}

// Restore reinstates the previous default logger and level.
func (c *Capture) Restore() {
	slog.SetDefault(c.prev)
	level.Set(c.prevLevel)
}

// Records returns a copy of the captured records.
func (c *Capture) Records() []slog.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]slog.Record, len(c.records))
	copy(out, c.records)
	return out
}

// Has reports whether a record at lvl contains msg in its message.
func (c *Capture) Has(lvl slog.Level, msg string) bool {
	for _, r := range c.Records() {
		if r.Level == lvl && strings.Contains(r.Message, msg) {
			return true
		}
	}
	return false
}

// Attr returns the string form of the first attribute named key on the first
// record whose message contains msg.
func (c *Capture) Attr(msg, key string) (string, bool) {
	for _, r := range c.Records() {
		if !strings.Contains(r.Message, msg) {
			continue
		}
		var val string
		var found bool
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				val, found = a.Value.String(), true
				return false
			}
			return true
		})
		if found {
			return val, true
		}
	}
	return "", false
}

type captureHandler struct {
	capture *Capture
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.capture.mu.Lock()
	defer h.capture.mu.Unlock()
	h.capture.records = append(h.capture.records, r.Clone())
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }
