package db

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
	sqliteUniqueFailure  = "UNIQUE constraint failed"
	pgUniqueViolationMsg = "duplicate key value violates unique constraint"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	// with TranslateError enabled gorm reports its own sentinel
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return true
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, pgUniqueViolationMsg) ||
		strings.Contains(msg, "Error 1062") ||
		strings.Contains(msg, sqliteUniqueFailure)
}
