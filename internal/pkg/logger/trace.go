package logger

import (
	"context"
	log "log/slog"
)

// TraceIDKey 定义 Context 中的 Key
const TraceIDKey = "trace_id"

// ContextHandler 从 ctx 中提取 trace_id 附加到每条日志
type ContextHandler struct {
	next log.Handler
}

func NewContextHandler(next log.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

func (s *ContextHandler) Enabled(ctx context.Context, level log.Level) bool {
	return s.next.Enabled(ctx, level)
}

func (s *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID, ok := ctx.Value(TraceIDKey).(string); ok && traceID != "" {
			r.AddAttrs(log.String(TraceIDKey, traceID))
		}
	}
	return s.next.Handle(ctx, r)
}

func (s *ContextHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &ContextHandler{next: s.next.WithAttrs(attrs)}
}

func (s *ContextHandler) WithGroup(name string) log.Handler {
	return &ContextHandler{next: s.next.WithGroup(name)}
}
