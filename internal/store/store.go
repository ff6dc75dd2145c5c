package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQLite string

//go:embed schema_postgres.sql
var schemaPostgres string

// Schema version tracking (SQLite user_version):
// 1 - parents(order_cache, revision), children(position) with UNIQUE(parent_id, position)
const currentSchemaVersion = 1

// DefaultLockTimeout bounds how long a transaction waits for another
// transaction's exclusive scope before failing with a conflict.
const DefaultLockTimeout = 5 * time.Second

// Store provides transactional access to parents, children and positions.
type Store struct {
	db          *sql.DB
	dialect     Dialect
	lockTimeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout sets the lock-wait timeout. It bounds how long a
// transaction waits for another transaction's exclusive scope before
// failing with a conflict: SET LOCAL lock_timeout on PostgreSQL, and on
// SQLite both busy_timeout and the wait for the pooled connection.
// Non-positive values keep DefaultLockTimeout.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - IMMEDIATE transactions (write lock taken at BEGIN)
//   - busy_timeout equal to the lock timeout
//   - one pooled connection, waited for at most the lock timeout
//   - WAL mode, NORMAL synchronous mode, foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	s := newStore(nil, DialectSQLite, opts)

	db, err := sql.Open("sqlite3", sqliteDSN(path, s.lockTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time. A single pooled connection
	// also makes concurrent callers in this process queue on the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	s.db = db
	if err := s.ApplySchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return s, nil
}

// OpenPostgres connects to PostgreSQL through the pgx stdlib driver and
// applies the schema.
func OpenPostgres(dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := newStore(db, DialectPostgres, opts)
	if err := s.ApplySchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return s, nil
}

// New wraps an existing database handle. The schema is not applied;
// call ApplySchema when the tables may be missing.
func New(db *sql.DB, dialect Dialect, opts ...Option) *Store {
	return newStore(db, dialect, opts)
}

func newStore(db *sql.DB, dialect Dialect, opts []Option) *Store {
	s := &Store{
		db:          db,
		dialect:     dialect,
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - position columns must only change through a Tx.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect this store speaks.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// LockTimeout returns the configured lock-wait timeout.
func (s *Store) LockTimeout() time.Duration {
	return s.lockTimeout
}

// ApplySchema creates tables if they don't exist. This function is idempotent.
func (s *Store) ApplySchema() error {
	switch s.dialect {
	case DialectPostgres:
		if _, err := s.db.Exec(schemaPostgres); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
		return nil
	default:
		if _, err := s.db.Exec(schemaSQLite); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
		return nil
	}
}

// sqliteDSN appends the driver parameters that make every transaction take
// the write lock at BEGIN and bound how long it waits for it.
func sqliteDSN(path string, lockTimeout time.Duration) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_txlock=immediate&_busy_timeout=%d&_foreign_keys=1",
		path, sep, lockTimeout.Milliseconds())
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
