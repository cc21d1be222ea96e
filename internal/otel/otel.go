// Package otel wires OpenTelemetry tracing to the eventbus: one span per
// HTTP request and one per live execution, correlated by execution ID.
package otel

import (
	"context"
	"sync"

	eventbus "github.com/livegql/livegql/internal/eventbus"
	events "github.com/livegql/livegql/internal/events"
	execid "github.com/livegql/livegql/internal/execid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures the OTLP exporter and attaches eventbus subscribers.
// An empty endpoint disables telemetry; the returned shutdown func is then a
// no-op.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("livegql")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer    trace.Tracer
	httpSpans sync.Map // execid.ID -> trace.Span
	execSpans sync.Map // execid.ID -> trace.Span
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPStart) {
		id, _ := execid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "http.request")
		span.SetAttributes(
			semconv.HTTPMethodKey.String(e.Request.Method),
			attribute.String("http.target", e.Request.URL.Path),
		)
		s.httpSpans.Store(id, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		id, _ := execid.FromContext(ctx)
		v, ok := s.httpSpans.LoadAndDelete(id)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ExecutionStart) {
		id, _ := execid.FromContext(ctx)
		parent := ctx
		if v, ok := s.httpSpans.Load(id); ok {
			parent = trace.ContextWithSpan(ctx, v.(trace.Span))
		}
		_, span := s.tracer.Start(parent, "graphql.execution")
		span.SetAttributes(
			attribute.String("graphql.operation.name", e.OperationName),
			attribute.String("graphql.operation.type", e.OperationType),
		)
		s.execSpans.Store(id, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ExecutionFinish) {
		id, _ := execid.FromContext(ctx)
		v, ok := s.execSpans.LoadAndDelete(id)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(
			attribute.Int("graphql.emission_count", e.Emissions),
			attribute.Int("graphql.error_count", e.ErrorCount),
		)
		span.End()
	})
}
