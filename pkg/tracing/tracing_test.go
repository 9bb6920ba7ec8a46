package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/waftester/dirhunter/pkg/defaults"
)

func TestSetup_EmptyEndpointIsNoop(t *testing.T) {
	tracer, shutdown, err := Setup(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, tracer)

	_, span := tracer.Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown())
}

func TestNewProvider_RecordsResource(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := NewProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer(InstrumentationName).Start(context.Background(), "scan")
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "scan", ended[0].Name())

	attrs := map[string]string{}
	for _, kv := range ended[0].Resource().Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, defaults.ToolName, attrs["service.name"])
	assert.Equal(t, defaults.Version, attrs["service.version"])
}
