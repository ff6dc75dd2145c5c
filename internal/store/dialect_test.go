package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	for _, name := range []string{"", "sqlite", "sqlite3", "SQLite3"} {
		d, err := ParseDialect(name)
		require.NoError(t, err)
		assert.Equal(t, DialectSQLite, d, name)
	}
	for _, name := range []string{"postgres", "postgresql", "pgx"} {
		d, err := ParseDialect(name)
		require.NoError(t, err)
		assert.Equal(t, DialectPostgres, d, name)
	}

	_, err := ParseDialect("mysql")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := `UPDATE children SET position = ? WHERE id = ? AND parent_id = ?`
	assert.Equal(t, q, DialectSQLite.rebind(q))
	assert.Equal(t,
		`UPDATE children SET position = $1 WHERE id = $2 AND parent_id = $3`,
		DialectPostgres.rebind(q))
}

func TestForUpdate(t *testing.T) {
	assert.Equal(t, "", DialectSQLite.forUpdate())
	assert.Equal(t, " FOR UPDATE", DialectPostgres.forUpdate())
}

func TestIsLockTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"deadline", fmt.Errorf("begin: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite locked", sqlite3.Error{Code: sqlite3.ErrLocked}, true},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"pg lock_not_available", &pgconn.PgError{Code: "55P03"}, true},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, true},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"pg unique", &pgconn.PgError{Code: "23505"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isLockTimeout(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	assert.True(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}))
	assert.False(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}
