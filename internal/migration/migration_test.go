package migration

import (
	"io/fs"
	"testing"

	meterdomain "github.com/smallbiznis/metr/internal/meter/domain"
	"github.com/smallbiznis/metr/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true
	}
	assert.True(t, names["0001_create_meter.up.sql"])
	assert.True(t, names["0001_create_meter.down.sql"])
}

func TestApplyCreatesMeterTable(t *testing.T) {
	conn := dbtest.Open(t)

	require.NoError(t, Apply(conn))
	assert.True(t, conn.Migrator().HasTable(&meterdomain.Meter{}))
	assert.True(t, conn.Migrator().HasIndex(&meterdomain.Meter{}, "ux_meter_external_reference"))

	// Re-running is a no-op.
	require.NoError(t, Apply(conn))
}

func TestApplyRequiresDB(t *testing.T) {
	assert.Error(t, Apply(nil))
	assert.Error(t, RunMigrations(nil))
}
