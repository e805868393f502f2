package main

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "syndicate-ops"

// setupTelemetry registers an OTLP trace exporter. Tracing is opt-in: with no
// endpoint, or when disabled, it returns a no-op shutdown and spans go to the
// global no-op provider.
func setupTelemetry(ctx context.Context, cfg OTelConfig) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled || cfg.Endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.Endpoint),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// startActionSpan opens a span for one game action in a mode.
func startActionSpan(r *http.Request, mode Mode, action string) (context.Context, trace.Span) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return otel.Tracer(serviceName).Start(ctx, "syndicate."+action,
		trace.WithAttributes(
			attribute.String("syndicate.mode", string(mode)),
			attribute.String("http.route", r.URL.Path),
		),
	)
}

func recordStateAttributes(span trace.Span, s *Store) {
	span.SetAttributes(
		attribute.Int("syndicate.day", s.State.Day),
		attribute.Int("syndicate.heat", s.State.Heat),
		attribute.Int("syndicate.integrity", s.State.WarMachine.Integrity),
	)
}
