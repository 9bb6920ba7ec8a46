// Package tracing wires OpenTelemetry span export for scans.
//
// Setup with an empty endpoint installs nothing and returns a no-op tracer,
// so callers can pass the returned Tracer around unconditionally.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/waftester/dirhunter/pkg/defaults"
	"github.com/waftester/dirhunter/pkg/duration"
)

// InstrumentationName names the tracer used by the scanner and orchestrator.
const InstrumentationName = "dirhunter/scanner"

// ShutdownFunc flushes pending spans and stops the exporter.
type ShutdownFunc func() error

// Setup connects an OTLP/gRPC exporter to endpoint (host:port, plaintext)
// and installs it as the global tracer provider.
func Setup(ctx context.Context, endpoint string) (trace.Tracer, ShutdownFunc, error) {
	if endpoint == "" {
		return noop.NewTracerProvider().Tracer(InstrumentationName), func() error { return nil }, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, duration.ExporterConnect)
	defer cancel()

	exporter, err := otlptracegrpc.New(connectCtx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: create exporter: %w", err)
	}

	tp := NewProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)

	shutdown := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), duration.ExporterShutdown)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("tracing: shutdown tracer provider: %w", err)
		}
		return nil
	}
	return tp.Tracer(InstrumentationName), shutdown, nil
}

// NewProvider builds a tracer provider carrying the service resource.
// Extra options such as span processors are appended.
func NewProvider(opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	// Plain NewWithAttributes avoids schema URL conflicts with resource.Default.
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(defaults.ToolName),
		semconv.ServiceVersion(defaults.Version),
		attribute.String("service.component", "scanner"),
	)
	base := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	return sdktrace.NewTracerProvider(append(base, opts...)...)
}
