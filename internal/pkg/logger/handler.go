package logger

import (
	"context"
	log "log/slog"
)

// MultiHandler 将同一条日志分发到多个下游 Handler
type MultiHandler struct {
	targets []log.Handler
}

func NewMultiHandler(targets ...log.Handler) *MultiHandler {
	return &MultiHandler{targets: targets}
}

func (s *MultiHandler) Enabled(ctx context.Context, level log.Level) bool {
	for _, h := range s.targets {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (s *MultiHandler) Handle(ctx context.Context, r log.Record) error {
	for _, h := range s.targets {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (s *MultiHandler) WithAttrs(attrs []log.Attr) log.Handler {
	targets := make([]log.Handler, len(s.targets))
	for i, h := range s.targets {
		targets[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{targets: targets}
}

func (s *MultiHandler) WithGroup(name string) log.Handler {
	targets := make([]log.Handler, len(s.targets))
	for i, h := range s.targets {
		targets[i] = h.WithGroup(name)
	}
	return &MultiHandler{targets: targets}
}

// TracedOnlyHandler 仅上报带 trace_id 的日志，其余留在本地
type TracedOnlyHandler struct {
	next log.Handler
}

func NewTracedOnlyHandler(next log.Handler) *TracedOnlyHandler {
	return &TracedOnlyHandler{next: next}
}

func (s *TracedOnlyHandler) Enabled(ctx context.Context, level log.Level) bool {
	return s.next.Enabled(ctx, level)
}

func (s *TracedOnlyHandler) Handle(ctx context.Context, r log.Record) error {
	traced := false
	r.Attrs(func(a log.Attr) bool {
		if a.Key == TraceIDKey && a.Value.String() != "" {
			traced = true
			return false
		}
		return true
	})
	if !traced {
		return nil
	}
	return s.next.Handle(ctx, r)
}

func (s *TracedOnlyHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &TracedOnlyHandler{next: s.next.WithAttrs(attrs)}
}

func (s *TracedOnlyHandler) WithGroup(name string) log.Handler {
	return &TracedOnlyHandler{next: s.next.WithGroup(name)}
}
