package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklog-tools/worklog/pkg/observability"
)

func TestInit_NoEndpointIsNoop(t *testing.T) {
	providers, err := observability.Init(observability.DefaultConfig())

	require.NoError(t, err)
	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)
	require.NotNil(t, providers.Logger)

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "a=1", want: map[string]string{"a": "1"}},
		{
			name: "multiple with spaces",
			raw:  "a=1, b = 2",
			want: map[string]string{"a": "1", "b": "2"},
		},
		{name: "malformed pairs skipped", raw: "nope", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, observability.ParseOTLPHeaders(tt.raw))
		})
	}
}

func TestTracingHandler_AttachesServiceMetadata(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(observability.NewTracingHandler(inner, "worklog", "dev"))

	logger.Info("hello")

	out := buf.String()

	assert.Contains(t, out, `"service":"worklog"`)
	assert.Contains(t, out, `"env":"dev"`)
}
