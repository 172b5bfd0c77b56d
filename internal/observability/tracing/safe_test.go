package tracing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestSafeAttributesDropsBlockedAndTruncates(t *testing.T) {
	long := strings.Repeat("a", maxAttributeLength+10)
	attrs := SafeAttributes(
		attribute.String("http.request.body", "{}"),
		attribute.String("http.route", long),
		attribute.Int("http.status_code", 200),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
	assert.Len(t, attrs[0].Value.AsString(), maxAttributeLength)
	assert.Equal(t, int64(200), attrs[1].Value.AsInt64())
}

func TestSafeErrorKeepsFirstLine(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	err := SafeError(errors.New("duplicate key\nDETAIL: Key (external_reference)=(x)"))
	assert.EqualError(t, err, "duplicate key")
}

func TestExtractContextFromMapCarrier(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	carrier := MapCarrier{
		"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	}
	ctx := ExtractContext(context.Background(), carrier)
	sc := trace.SpanContextFromContext(ctx)
	require.True(t, sc.IsValid())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", sc.TraceID().String())
	assert.True(t, sc.IsRemote())
}
