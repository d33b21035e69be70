package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "span_test.txt")
	if !assert.NoError(t, Init("vaultflow", "0.0.1", fname)) {
		return
	}
	defer Shutdown(context.Background())

	_, span := StartSpan(context.Background(), "test", KindInternal)
	span.WithAttributes(map[string]string{"k": "v"})
	EndSpan(span, nil)

	data, err := os.ReadFile(fname)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestStartSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	if !assert.NoError(t, InitWithExporter("vaultflow", "0.0.1", exporter)) {
		return
	}
	defer Shutdown(context.Background())

	ctx, parent := StartSpan(context.Background(), "decision", KindServer)
	current, ok := SpanFromContext(ctx)
	assert.True(t, ok)
	assert.NotNil(t, current)

	_, child := StartSpan(ctx, "dispatch", KindClient)
	EndSpan(child, errors.New("relay down"))
	EndSpan(parent, nil)

	spans := exporter.GetSpans()
	if assert.Len(t, spans, 2) {
		assert.Equal(t, "dispatch", spans[0].Name)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
		assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
		assert.Equal(t, codes.Ok, spans[1].Status.Code)
	}

	_, found := SpanFromContext(context.Background())
	assert.False(t, found)
}
