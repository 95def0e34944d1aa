//go:build js && wasm

package console

import (
	"context"
	"log/slog"
	"strings"
	"syscall/js"
)

// NewBrowser creates a logger that writes to the browser console, using
// console.warn and console.error for the matching levels.
func NewBrowser(level slog.Level) *slog.Logger {
	return slog.New(&browserHandler{level: level})
}

type browserHandler struct {
	level  slog.Level
	attrs  []slog.Attr
	prefix string
}

func (h *browserHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level
}

func (h *browserHandler) Handle(_ context.Context, rec slog.Record) error {
	var sb strings.Builder
	sb.WriteString(rec.Message)
	write := func(a slog.Attr) bool {
		a = renameError(nil, a)
		sb.WriteByte(' ')
		sb.WriteString(h.prefix + a.Key)
		sb.WriteByte('=')
		sb.WriteString(a.Value.String())
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	rec.Attrs(write)

	method := "log"
	switch {
	case rec.Level >= slog.LevelError:
		method = "error"
	case rec.Level >= slog.LevelWarn:
		method = "warn"
	case rec.Level < slog.LevelInfo:
		method = "debug"
	}
	js.Global().Get("console").Call(method, sb.String())
	return nil
}

func (h *browserHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *browserHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}
