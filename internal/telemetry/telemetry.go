// Package telemetry provides tracing and correlation IDs for relay exchanges.
package telemetry

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName = "relaychat"
	tracerName  = "github.com/cchalm/relaychat"
)

// TelemetryConfig holds the configuration for telemetry
type TelemetryConfig struct {
	Enabled bool
	// Endpoint is the OTLP/HTTP collector URL, e.g. http://localhost:4318. Empty uses the OTEL_EXPORTER_OTLP_*
	// environment variables
	Endpoint       string
	ServiceVersion string
}

// Provider manages the tracing pipeline
type Provider struct {
	tracerProvider *sdktrace.TracerProvider // nil when disabled
	tracer         trace.Tracer
}

// NewProvider creates a new telemetry provider. A disabled provider hands out no-op tracers
func NewProvider(ctx context.Context, config TelemetryConfig) (*Provider, error) {
	if !config.Enabled {
		log.Printf("Telemetry disabled")
		return &Provider{tracer: noop.NewTracerProvider().Tracer(tracerName)}, nil
	}

	opts := []otlptracehttp.Option{}
	if config.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpointURL(config.Endpoint))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", config.ServiceVersion),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	log.Printf("Telemetry enabled, exporting traces to %s", displayEndpoint(config.Endpoint))

	return &Provider{
		tracerProvider: tp,
		tracer:         tp.Tracer(tracerName),
	}, nil
}

func displayEndpoint(endpoint string) string {
	if endpoint == "" {
		return "the endpoint configured by OTEL_EXPORTER_OTLP_* variables"
	}
	return endpoint
}

// Tracer returns the tracer relay components create spans with
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Shutdown flushes pending spans and stops the exporter
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider == nil {
		return nil
	}
	log.Printf("Shutting down telemetry provider")
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tracer provider: %w", err)
	}
	return nil
}

// NoopTracer returns a tracer that records nothing
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(tracerName)
}

type requestIDKey struct{}

// NewRequestID generates a new request UUID
func NewRequestID() string {
	return uuid.New().String()
}

// NewSessionID generates a new chat session UUID
func NewSessionID() string {
	return uuid.New().String()
}

// WithRequestID returns a context carrying the given request ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID carried by ctx, or "-" if there is none
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return "-"
}
