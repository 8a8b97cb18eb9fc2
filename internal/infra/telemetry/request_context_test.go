package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureRequestMetaMintsID(t *testing.T) {
	ctx, meta := EnsureRequestMeta(context.Background())

	require.NotEmpty(t, meta.RequestID)

	got, ok := RequestMetaFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, meta.RequestID, got.RequestID)
}

func TestEnsureRequestMetaReusesExistingID(t *testing.T) {
	ctx, first := EnsureRequestMeta(context.Background())
	_, second := EnsureRequestMeta(ctx)

	assert.Equal(t, first.RequestID, second.RequestID)
}

func TestRequestMetaFromContextMissing(t *testing.T) {
	_, ok := RequestMetaFromContext(context.Background())
	assert.False(t, ok)
}

func TestRequestFields(t *testing.T) {
	assert.Nil(t, RequestFields(RequestMeta{}))

	fields := RequestFields(RequestMeta{RequestID: "req-1", TraceID: "trace-1", SpanID: "span-1"})
	assert.Len(t, fields, 3)
}

func TestLoggerWithRequestNilBase(t *testing.T) {
	logger := LoggerWithRequest(context.Background(), nil)
	require.NotNil(t, logger)
}
