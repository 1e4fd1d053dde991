// Package logging provides the colourised slog handler used by the CLI
// and the HTTP server.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

const timeFormat = "15:04:05.000"

// Handler writes one line per record: time, level, message and key=value
// attributes. Levels and attribute keys are coloured when enabled.
type Handler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Leveler

	attrs  string // preformatted attributes from WithAttrs
	prefix string // group prefix from WithGroup, e.g. "http."

	debug, info, warn, errc, key *color.Color
}

// NewHandler returns a handler writing to out. Records below level are
// dropped.
func NewHandler(out io.Writer, level slog.Leveler, colorize bool) *Handler {
	h := &Handler{
		mu:    &sync.Mutex{},
		out:   out,
		level: level,
		debug: color.New(color.FgMagenta),
		info:  color.New(color.FgHiBlue),
		warn:  color.New(color.FgYellow),
		errc:  color.New(color.FgRed),
		key:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{h.debug, h.info, h.warn, h.errc, h.key} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if !r.Time.IsZero() {
		b.WriteString(r.Time.Format(timeFormat))
		b.WriteByte(' ')
	}
	b.WriteString(h.levelColor(r.Level).Sprint(r.Level.String() + ":"))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		h.appendAttr(&b, h.prefix, a)
	}
	c.attrs = b.String()
	return &c
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

func (h *Handler) appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			h.appendAttr(b, prefix, ga)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(h.key.Sprint(prefix + a.Key))
	b.WriteByte('=')
	b.WriteString(formatValue(a.Value))
}

func (h *Handler) levelColor(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return h.errc
	case l >= slog.LevelWarn:
		return h.warn
	case l >= slog.LevelInfo:
		return h.info
	default:
		return h.debug
	}
}

func formatValue(v slog.Value) string {
	s := fmt.Sprint(v.Any())
	if v.Kind() == slog.KindTime {
		s = v.Time().Format(timeFormat)
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
