package testenv

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// LogHandler is a slog.Handler that writes the message index, level,
// message and attributes without a timestamp, so that test log output is
// deterministic.
type LogHandler struct {
	mu    *sync.Mutex
	index *int
	w     io.Writer
	attrs []slog.Attr
}

func NewLogHandler(w io.Writer) *LogHandler {
	return &LogHandler{mu: &sync.Mutex{}, index: new(int), w: w}
}

//nolint:gocritic
func (h *LogHandler) Handle(_ context.Context, r slog.Record) error {
	var parts []string
	for _, a := range h.attrs {
		parts = append(parts, formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, formatAttr(a))
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	line := fmt.Sprintf("[%d] %s: %s", *h.index, r.Level, r.Message)
	if len(parts) > 0 {
		line += " " + strings.Join(parts, ", ")
	}
	*h.index++
	_, err := fmt.Fprintln(h.w, line)
	return err
}

func formatAttr(a slog.Attr) string {
	return fmt.Sprintf("%s=%v", a.Key, a.Value)
}

func (h *LogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{
		mu:    h.mu,
		index: h.index,
		w:     h.w,
		attrs: append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

// WithGroup is not supported; attributes keep their own keys.
func (h *LogHandler) WithGroup(string) slog.Handler {
	return h
}
