package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestEmptyValuesLeaveContextUntouched(t *testing.T) {
	base := context.Background()
	assert.Equal(t, base, WithRequestID(base, ""))
	assert.Equal(t, base, WithRoute(base, ""))
}

func TestRouteRoundTrip(t *testing.T) {
	ctx := WithRoute(context.Background(), "list")
	assert.Equal(t, "list", RouteFromContext(ctx))
}
