package common

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	traceIDLogField   = "traceID"
	operationLogField = "op"
	tracerName        = "ai-tutorial-progress"
)

// Scope ties one controller operation to its span and a logger tagged with
// the trace id and operation name.
type Scope struct {
	Ctx     context.Context
	TraceID string
	Log     *log.Entry
	span    oteltrace.Span
}

// NewScope starts a span named name under whatever span ctx already holds.
func NewScope(ctx context.Context, name string) *Scope {
	return startScope(ctx, otel.Tracer(tracerName), name)
}

// NewChildScope starts a nested operation on the same tracer provider.
func (s *Scope) NewChildScope(name string) *Scope {
	return startScope(s.Ctx, s.span.TracerProvider().Tracer(tracerName), name)
}

func startScope(ctx context.Context, tracer oteltrace.Tracer, name string) *Scope {
	spanCtx, span := tracer.Start(ctx, name)
	traceID := span.SpanContext().TraceID().String()

	return &Scope{
		Ctx:     spanCtx,
		TraceID: traceID,
		Log: log.WithFields(log.Fields{
			traceIDLogField:   traceID,
			operationLogField: name,
		}),
		span: span,
	}
}

// Finish ends the span.
func (s *Scope) Finish() {
	s.span.End()
}

// TraceEvent adds a named event to the span.
func (s *Scope) TraceEvent(eventMessage string) {
	s.span.AddEvent(eventMessage)
}

// TraceError records err on the span and marks it failed.
func (s *Scope) TraceError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
	s.Log.Debugf("operation failed: %v", err)
}

// SetAttributes sets key on the span. Unsupported value types are logged and dropped.
func (s *Scope) SetAttributes(key string, value interface{}) {
	kv, ok := toAttribute(key, value)
	if !ok {
		s.Log.Errorf("could not set a span attribute of type %T", value)
		return
	}
	s.span.SetAttributes(kv)
}

func toAttribute(key string, value interface{}) (attribute.KeyValue, bool) {
	switch v := value.(type) {
	case bool:
		return attribute.Bool(key, v), true
	case string:
		return attribute.String(key, v), true
	case int:
		return attribute.Int(key, v), true
	case int64:
		return attribute.Int64(key, v), true
	case float64:
		return attribute.Float64(key, v), true
	case []string:
		return attribute.StringSlice(key, v), true
	default:
		return attribute.KeyValue{}, false
	}
}
