package observability

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"
)

// Span is a lightweight in-process trace span. There is no exporter: spans
// exist so request handling and dataset loads can share trace identifiers in
// the structured logs.
type Span struct {
	TraceID   string
	SpanID    string
	ParentID  string
	Operation string
	Started   time.Time
	Ended     time.Time
	Tags      map[string]string
	Err       error
}

type spanContextKey struct{}

// StartSpan opens a span under any span already on the context. A root span
// mints a fresh trace id; children inherit it.
func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	span := &Span{
		SpanID:    randomID(8),
		Operation: operation,
		Started:   time.Now(),
		Tags:      make(map[string]string),
	}

	if parent := GetSpan(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	} else {
		span.TraceID = randomID(16)
	}

	return context.WithValue(ctx, spanContextKey{}, span), span
}

// Finish stamps the end time. Safe to call once, typically deferred.
func (s *Span) Finish() {
	s.Ended = time.Now()
}

// Elapsed is the span duration, measured against now while still open.
func (s *Span) Elapsed() time.Duration {
	if s.Ended.IsZero() {
		return time.Since(s.Started)
	}
	return s.Ended.Sub(s.Started)
}

func (s *Span) SetTag(key, value string) {
	if s.Tags == nil {
		s.Tags = make(map[string]string)
	}
	s.Tags[key] = value
}

func (s *Span) SetError(err error) {
	s.Err = err
}

// LogValue renders the span for slog output.
func (s *Span) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("trace_id", s.TraceID),
		slog.String("span_id", s.SpanID),
		slog.String("operation", s.Operation),
		slog.Duration("elapsed", s.Elapsed()),
	}
	if s.ParentID != "" {
		attrs = append(attrs, slog.String("parent_id", s.ParentID))
	}
	if s.Err != nil {
		attrs = append(attrs, slog.String("error", s.Err.Error()))
	}
	return slog.GroupValue(attrs...)
}

// GetSpan returns the span carried by the context, or nil.
func GetSpan(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanContextKey{}).(*Span); ok {
		return span
	}
	return nil
}

func randomID(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}
