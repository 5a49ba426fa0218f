package boundary

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TraceAttribute represents a tracing attribute attached to boundary spans.
type TraceAttribute struct {
	Key   string
	Value any
}

// Tracer starts spans that wrap boundary operations.
type Tracer interface {
	StartSpan(name string, attrs ...TraceAttribute) Span
}

// Span records an operation's lifecycle, events and errors for tracing systems.
type Span interface {
	End(err error)
	AddEvent(name string, attrs ...TraceAttribute)
	RecordError(err error)
}

func (r *Runtime) startSpan(name string, attrs ...TraceAttribute) Span {
	if r == nil || r.tracer == nil {
		return nopSpan{}
	}
	span := r.tracer.StartSpan(name, attrs...)
	if span == nil {
		return nopSpan{}
	}
	return span
}

type nopSpan struct{}

func (nopSpan) End(error)                          {}
func (nopSpan) AddEvent(string, ...TraceAttribute) {}
func (nopSpan) RecordError(error)                  {}

// NewOTelTracer adapts an OpenTelemetry tracer to the Tracer interface.
func NewOTelTracer(tracer trace.Tracer) Tracer {
	return &otelTracer{tracer: tracer}
}

type otelTracer struct {
	tracer trace.Tracer
}

func (t *otelTracer) StartSpan(name string, attrs ...TraceAttribute) Span {
	_, span := t.tracer.Start(context.Background(), name, trace.WithAttributes(traceAttrs(attrs)...))
	return &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}

func (s *otelSpan) AddEvent(name string, attrs ...TraceAttribute) {
	s.span.AddEvent(name, trace.WithAttributes(traceAttrs(attrs)...))
}

func (s *otelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
}

func traceAttrs(attrs []TraceAttribute) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		switch v := attr.Value.(type) {
		case string:
			kvs = append(kvs, attribute.String(attr.Key, v))
		case bool:
			kvs = append(kvs, attribute.Bool(attr.Key, v))
		case int:
			kvs = append(kvs, attribute.Int(attr.Key, v))
		case int64:
			kvs = append(kvs, attribute.Int64(attr.Key, v))
		case uintptr:
			kvs = append(kvs, attribute.Int64(attr.Key, int64(v)))
		default:
			kvs = append(kvs, attribute.String(attr.Key, fmt.Sprint(v)))
		}
	}
	return kvs
}
