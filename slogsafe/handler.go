// Package slogsafe wraps a slog.Handler so that entity-shaped attr values
// are serialized and redacted before they reach the inner handler. The inner
// handler keeps full control of levels, formatting and output.
package slogsafe

import (
	"context"
	"log/slog"

	"github.com/coffersTech/logsafe"
)

// Handler rewrites record attrs through a serializer registry and delegates
// everything else to the wrapped handler.
type Handler struct {
	inner slog.Handler
	s     logsafe.Serializers
}

// NewHandler wraps inner. A nil serializer registry gets logsafe.Default()
// with no redaction paths, which still normalizes entity shapes.
func NewHandler(inner slog.Handler, s logsafe.Serializers) *Handler {
	if s == nil {
		s = logsafe.Default()
	}
	return &Handler{inner: inner, s: s}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	nr := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		nr.AddAttrs(h.rewrite(a))
		return true
	})
	return h.inner.Handle(ctx, nr)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewritten := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewritten[i] = h.rewrite(a)
	}
	return &Handler{inner: h.inner.WithAttrs(rewritten), s: h.s}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name), s: h.s}
}

// rewrite serializes attr values that carry arbitrary Go values. Native slog
// kinds (strings, numbers, times) are already flat and pass through; groups
// are rewritten member by member. The serializer is picked by field name
// when the key is one of the six registry names, by classified shape
// otherwise.
func (h *Handler) rewrite(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		members := v.Group()
		out := make([]slog.Attr, len(members))
		for i, m := range members {
			out[i] = h.rewrite(m)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	case slog.KindAny:
		return slog.Any(a.Key, h.s.Apply(a.Key, v.Any()))
	}
	return slog.Attr{Key: a.Key, Value: v}
}
