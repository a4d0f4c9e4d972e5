package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/medeiros-dev/push-notification-service/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type mockExporter struct {
	shutdownErr error
	spans       []sdktrace.ReadOnlySpan
}

func (m *mockExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	m.spans = append(m.spans, spans...)
	return nil
}

func (m *mockExporter) Shutdown(ctx context.Context) error {
	return m.shutdownErr
}

var _ sdktrace.SpanExporter = (*mockExporter)(nil)

func resetGlobals() {
	otel.SetTracerProvider(noop.NewTracerProvider())
	Tracer = otel.Tracer(defaultTracerName)
	shutdownFunc = func(ctx context.Context) error { return nil }
}

func withExporter(t *testing.T, exp sdktrace.SpanExporter, err error) {
	t.Helper()
	original := newExporterFunc
	newExporterFunc = func(ctx context.Context, cfg *configs.Config) (sdktrace.SpanExporter, error) {
		return exp, err
	}
	t.Cleanup(func() { newExporterFunc = original })
}

func TestInitTracer(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		insecure bool
	}{
		{name: "insecure", endpoint: "fake:4317", insecure: true},
		{name: "secure", endpoint: "fake:4317", insecure: false},
		{name: "disabled", endpoint: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetGlobals()
			exp := &mockExporter{}
			withExporter(t, exp, nil)

			cfg := &configs.Config{
				OtelServiceName: "push-test",
				OtelEndpoint:    tc.endpoint,
				OtelInsecure:    tc.insecure,
			}
			shutdown, err := InitTracer(cfg)
			require.NoError(t, err)
			require.NotNil(t, shutdown)
			assert.NotNil(t, GetTracer())

			_, span := GetTracer().Start(context.Background(), "span-"+tc.name)
			span.End()

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			assert.NoError(t, shutdown(ctx))

			if tc.endpoint == "" {
				assert.Empty(t, exp.spans)
				return
			}
			require.Len(t, exp.spans, 1)
			assert.Equal(t, "span-"+tc.name, exp.spans[0].Name())
		})
	}
}

func TestInitTracer_ExporterError(t *testing.T) {
	resetGlobals()
	expectedErr := errors.New("exporter creation failed")
	withExporter(t, nil, expectedErr)

	shutdown, err := InitTracer(&configs.Config{OtelServiceName: "push-test", OtelEndpoint: "fake:4317"})

	require.Error(t, err)
	assert.Nil(t, shutdown)
	assert.ErrorIs(t, err, expectedErr)
}

func TestShutdownTracer(t *testing.T) {
	for _, shutdownErr := range []error{nil, errors.New("shutdown failed")} {
		resetGlobals()
		called := false
		shutdownFunc = func(ctx context.Context) error {
			called = true
			return shutdownErr
		}

		ShutdownTracer(context.Background())

		assert.True(t, called)
	}
}
