package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesRoleAndMessage(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "client")

	l.Info().Str("key", "value").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "client", entry["role"])
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "value", entry["key"])
}

func TestFromContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "sync")

	ctx := l.WithContext(context.Background())
	FromContext(ctx).Info().Msg("from context")

	assert.Contains(t, buf.String(), "from context")
	assert.Contains(t, buf.String(), `"role":"sync"`)
}

func TestNop_Discards(t *testing.T) {
	l := Nop()
	// Must not panic and must not write anywhere.
	l.Error().Msg("dropped")
}
