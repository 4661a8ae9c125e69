package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiGray   = "\033[90m"
	ansiCyan   = "\033[36m"
)

// PrettyHandler is a slog.Handler producing compact colored lines for
// interactive use: [time] LEVEL message key=value ...
type PrettyHandler struct {
	w     io.Writer
	level slog.Level
	attrs []slog.Attr

	mu *sync.Mutex
}

func NewPrettyHandler(w io.Writer, level slog.Level) *PrettyHandler {
	return &PrettyHandler{w: w, level: level, mu: &sync.Mutex{}}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(ansiGray)
	b.WriteByte('[')
	b.WriteString(r.Time.Format(time.TimeOnly))
	b.WriteByte(']')
	b.WriteString(ansiReset)
	b.WriteByte(' ')

	b.WriteString(levelColor(r.Level))
	b.WriteString(fmt.Sprintf("%-5s", r.Level.String()))
	b.WriteString(ansiReset)
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PrettyHandler{w: h.w, level: h.level, attrs: merged, mu: h.mu}
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	// Groups are flattened; tapfix logging never nests them.
	return h
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	b.WriteByte(' ')
	b.WriteString(ansiCyan)
	b.WriteString(a.Key)
	b.WriteByte('=')
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\"") {
		val = fmt.Sprintf("%q", val)
	}
	b.WriteString(val)
	b.WriteString(ansiReset)
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level >= slog.LevelInfo:
		return ansiBlue
	default:
		return ansiGray
	}
}
