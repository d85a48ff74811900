package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	return trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
}

// logLine writes one record through WithContext and returns it decoded.
func logLine(t *testing.T, ctx context.Context) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	WithContext(ctx, NewWithWriter("cartstate", "info", &buf)).Info("state changed")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), buf.String())
	return out
}

func TestWithContext_Fields(t *testing.T) {
	tests := []struct {
		name    string
		ctx     func(t *testing.T) context.Context
		want    map[string]string
		missing []string
	}{
		{
			name:    "empty context",
			ctx:     func(*testing.T) context.Context { return context.Background() },
			missing: []string{"correlation_id", "mutation", "trace_id", "span_id"},
		},
		{
			name: "correlation id",
			ctx: func(*testing.T) context.Context {
				return WithCorrelationID(context.Background(), "req-123")
			},
			want:    map[string]string{"correlation_id": "req-123"},
			missing: []string{"mutation", "trace_id"},
		},
		{
			name: "mutation",
			ctx: func(*testing.T) context.Context {
				return WithMutation(context.Background(), "addItemToCart")
			},
			want:    map[string]string{"mutation": "addItemToCart"},
			missing: []string{"correlation_id"},
		},
		{
			name: "span",
			ctx:  spanContext,
			want: map[string]string{
				"trace_id": "4bf92f3577b34da6a3ce929d0e0e4736",
				"span_id":  "00f067aa0ba902b7",
			},
			missing: []string{"correlation_id", "mutation"},
		},
		{
			name: "everything",
			ctx: func(t *testing.T) context.Context {
				ctx := WithCorrelationID(spanContext(t), "req-9")
				return WithMutation(ctx, "toggleCartHidden")
			},
			want: map[string]string{
				"correlation_id": "req-9",
				"mutation":       "toggleCartHidden",
				"trace_id":       "4bf92f3577b34da6a3ce929d0e0e4736",
				"span_id":        "00f067aa0ba902b7",
				"service":        "cartstate",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := logLine(t, tt.ctx(t))

			for k, v := range tt.want {
				assert.Equal(t, v, out[k], k)
			}
			for _, k := range tt.missing {
				assert.NotContains(t, out, k)
			}
		})
	}
}

func TestContextAccessors_Empty(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, CorrelationIDFromContext(ctx))
	assert.Empty(t, MutationFromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(ctx))
}

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	l := Discard()

	assert.Same(t, l, FromContext(NewContext(context.Background(), l)))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("cartstate", "warn", &buf)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept", slog.Int("item_count", 2))
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "cartstate", out["service"])
	assert.Equal(t, "WARN", out["level"])
	assert.EqualValues(t, 2, out["item_count"])
	assert.NotContains(t, out, "source")
}

func TestNewWithWriter_DebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("cartstate", "debug", &buf).Debug("trace me")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Contains(t, out, "source")
}

func TestDiscard(t *testing.T) {
	l := Discard()

	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
