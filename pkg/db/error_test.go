package db

import (
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm sentinel", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"pgx", &pgconn.PgError{Code: "23505"}, true},
		{"pgx other code", &pgconn.PgError{Code: "23503"}, false},
		{"lib/pq", &pq.Error{Code: "23505"}, true},
		{"mysql", &mysqldriver.MySQLError{Number: 1062}, true},
		{"plain", errors.New("connection refused"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}

func TestIsDuplicateKeyErrSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:dupkey?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`CREATE TABLE things (code TEXT UNIQUE)`).Error)
	require.NoError(t, conn.Exec(`INSERT INTO things (code) VALUES ('a')`).Error)

	err = conn.Exec(`INSERT INTO things (code) VALUES ('a')`).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKeyErr(err))
}
