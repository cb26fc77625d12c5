package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = ContextWithRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
}

func TestStartTimeContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.True(t, StartTimeFromContext(ctx).IsZero())

	start := time.Now()
	ctx = ContextWithStartTime(ctx, start)
	assert.Equal(t, start, StartTimeFromContext(ctx))

	elapsed := ElapsedTime(ctx)
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
}

func TestElapsedTimeWithoutStart(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Duration(0), ElapsedTime(context.Background()))
}

func TestEndpointContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, EndpointFromContext(ctx))

	ctx = ContextWithEndpoint(ctx, "/users/{id}")
	assert.Equal(t, "/users/{id}", EndpointFromContext(ctx))
}

func TestPathParamsContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Nil(t, PathParamsFromContext(ctx))

	params := map[string]string{"id": "42"}
	ctx = ContextWithPathParams(ctx, params)
	assert.Equal(t, params, PathParamsFromContext(ctx))
}
