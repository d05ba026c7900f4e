package telemetry

import (
	"context"
	"testing"
	"time"

	"storefront/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestSetupTracer_Disabled(t *testing.T) {
	before := otel.GetTracerProvider()

	tp, shutdown, err := SetupTracer(context.Background(), config.TelemetryConfig{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)

	assert.IsType(t, noop.TracerProvider{}, tp)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestSetupTracer_Enabled(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	tp, shutdown, err := SetupTracer(context.Background(), config.TelemetryConfig{
		Enabled:     true,
		Endpoint:    "http://localhost:4317",
		ServiceName: "storefront-test",
	}, zerolog.Nop())
	require.NoError(t, err)

	assert.IsType(t, &sdktrace.TracerProvider{}, tp)
	assert.Same(t, tp, otel.GetTracerProvider())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = shutdown(ctx)
}

func TestStripScheme(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "localhost:4317", want: "localhost:4317"},
		{in: "http://collector:4317", want: "collector:4317"},
		{in: "https://collector:4317", want: "collector:4317"},
		{in: "http://", want: "http://"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, stripScheme(tt.in))
		})
	}
}
