package observability

import (
	"testing"

	"github.com/smallbiznis/metr/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "")

	cfg := LoadConfig(config.Config{Environment: "development", OTLPEndpoint: "collector:4317"})

	assert.Equal(t, "metr", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.Equal(t, "collector:4317", cfg.OtelExporterEndpoint)
	assert.False(t, cfg.OtelEnabled)
	assert.True(t, cfg.Debug())
}

func TestLoadConfigProductionEnablesExport(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("DEPLOYMENT_ENV", "")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := LoadConfig(config.Config{AppName: "meters", Environment: "production"})

	assert.Equal(t, "meters", cfg.ServiceName)
	assert.True(t, cfg.OtelEnabled)
	assert.False(t, cfg.Debug())
}

func TestTracesProtocolOverridesGeneric(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP/protobuf")

	cfg := LoadConfig(config.Config{})
	assert.Equal(t, "http/protobuf", cfg.OtelExporterProtocol)
}
