package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Dialect selects the SQL flavor and locking strategy of a Store.
type Dialect string

const (
	// DialectSQLite serializes writers with IMMEDIATE transactions.
	DialectSQLite Dialect = "sqlite3"

	// DialectPostgres locks parent and sibling rows with FOR UPDATE.
	DialectPostgres Dialect = "postgres"
)

// ParseDialect maps a driver name to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("invalid driver %q: must be sqlite3 or postgres", name)
	}
}

// rebind rewrites ? placeholders into the dialect's bind syntax.
// Queries in this package never contain a literal '?'.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// forUpdate returns the row-locking suffix for a locking read.
// SQLite holds the database write lock from BEGIN IMMEDIATE instead.
func (d Dialect) forUpdate() string {
	if d == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// isLockTimeout reports whether err means the lock could not be acquired
// in time: SQLite busy/locked, PostgreSQL lock_not_available, serialization
// failure or deadlock, or a context deadline hit while waiting.
func isLockTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}

	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		switch pe.Code {
		case "55P03", "40001", "40P01":
			return true
		}
	}
	return false
}

// isUniqueViolation reports whether err is a unique or primary key violation.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}
