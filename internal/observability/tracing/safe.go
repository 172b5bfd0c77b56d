package tracing

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

const maxAttributeLength = 256

// Attribute keys that may carry request payload or credentials.
var blockedAttributeKeys = map[attribute.Key]struct{}{
	"http.request.body":  {},
	"http.response.body": {},
	"authorization":      {},
	"cookie":             {},
}

// ExtractContext restores the remote parent span from the carrier.
func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if carrier == nil {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// SafeAttributes drops blocked keys and truncates oversized string values.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, blocked := blockedAttributeKeys[attr.Key]; blocked {
			continue
		}
		if attr.Value.Type() == attribute.STRING {
			if v := attr.Value.AsString(); len(v) > maxAttributeLength {
				attr = attribute.String(string(attr.Key), v[:maxAttributeLength])
			}
		}
		out = append(out, attr)
	}
	return out
}

// SafeError returns an error whose message is bounded in length. Database
// errors can echo statement text, so only the first line is kept.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	if len(msg) > maxAttributeLength {
		msg = msg[:maxAttributeLength]
	}
	return errors.New(msg)
}

// MapCarrier adapts lower-cased gateway headers to a propagation carrier.
type MapCarrier map[string]string

func (c MapCarrier) Get(key string) string {
	return c[strings.ToLower(key)]
}

func (c MapCarrier) Set(key, value string) {
	c[strings.ToLower(key)] = value
}

func (c MapCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
