package correlation

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestEnsureCorrelationIDKeepsExisting(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "abc")
	ctx, cid := EnsureCorrelationID(ctx)
	require.Equal(t, "abc", cid)
	require.Equal(t, "abc", ExtractCorrelationID(ctx))
}

func TestEnsureCorrelationIDGeneratesULID(t *testing.T) {
	ctx, cid := EnsureCorrelationID(context.Background())
	require.NotEmpty(t, cid)
	_, err := ulid.ParseStrict(cid)
	require.NoError(t, err)
	require.Equal(t, cid, ExtractCorrelationID(ctx))
}
