package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"

	obscontext "github.com/smallbiznis/metr/internal/observability/context"
)

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT * FROM meter":                          "SELECT",
		`INSERT INTO "meter" ("meter_id") VALUES (1)`:  "INSERT",
		"WITH x AS (SELECT 1) UPDATE meter SET a = 1": "SELECT",
		"  delete from meter where meter_id = 1":       "DELETE",
		"":                                             "UNKNOWN",
		"PRAGMA foreign_keys":                          "UNKNOWN",
	}
	for sql, want := range cases {
		assert.Equal(t, want, operationFromSQL(sql), sql)
	}
}

func TestGormLoggerParamsFilterDropsValues(t *testing.T) {
	l := NewGormLogger(DefaultGormLoggerConfig())
	sql, params := l.ParamsFilter(context.Background(), "SELECT ?", "secret")
	assert.Equal(t, "SELECT ?", sql)
	assert.Nil(t, params)
}

func TestGormLoggerTraceCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	l := NewGormLogger(DefaultGormLoggerConfig()).LogMode(gormlogger.Info)
	ctx := obscontext.WithRequestID(context.Background(), "req-42")
	l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)

	entries := logs.FilterMessage("db.query").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-42", fields["request_id"])
		assert.Equal(t, "SELECT", fields["operation"])
	}
}

func TestParseGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, ParseGormLevel("off", gormlogger.Warn))
	assert.Equal(t, gormlogger.Info, ParseGormLevel(" DEBUG ", gormlogger.Warn))
	assert.Equal(t, gormlogger.Warn, ParseGormLevel("bogus", gormlogger.Warn))
}
