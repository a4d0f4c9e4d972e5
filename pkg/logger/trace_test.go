package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestL(t *testing.T) {
	InitializeLogger(true)
	assert.NotNil(t, L())
	assert.Same(t, log, L())
}

func TestTraceIDFromContext(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("logger-test").Start(context.Background(), "span")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(ctx))
	assert.Len(t, TraceIDFromContext(ctx), 32)
}
