package apm

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/fd1az/trader-sentinel/internal/logger"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		name string
		want Provider
	}{
		{"zipkin", ZipkinProvider},
		{" Zipkin ", ZipkinProvider},
		{"newrelic", NewRelicProvider},
		{"honeycomb", HoneycombProvider},
		{"console", ConsoleProvider},
		{"", EmptyProvider},
		{"jaeger", EmptyProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseProvider(tt.name))
		})
	}
}

func TestParseHeaders(t *testing.T) {
	got, err := ParseHeaders("x-honeycomb-team=abc, api-key = k=v")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x-honeycomb-team": "abc", "api-key": "k=v"}, got)

	got, err = ParseHeaders("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseHeaders("novalue")
	assert.Error(t, err)
}

func TestNewTraceProvider(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	tp, err := NewTraceProvider(Config{Provider: EmptyProvider}, log)
	require.NoError(t, err)
	assert.NoError(t, tp.Stop())

	_, err = NewTraceProvider(Config{Provider: HoneycombProvider, Endpoint: "https://api.honeycomb.io", Headers: "broken"}, log)
	assert.Error(t, err)

	_, err = NewTraceProvider(Config{Provider: "SMOKE_SIGNALS"}, log)
	assert.Error(t, err)
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))

	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	id := TraceID(ctx)
	assert.Len(t, id, 32)
	assert.Equal(t, span.SpanContext().TraceID().String(), id)
}
