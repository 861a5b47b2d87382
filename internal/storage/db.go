package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "balanceup/internal/log"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps a sql.DB connection to the local ledger file.
type DB struct {
	conn *sql.DB
	log  *applog.Logger
	now  func() time.Time
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for store events.
func WithLogger(l *applog.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.log = l.WithComponent(applog.ComponentStorage)
		}
	}
}

// WithClock overrides the clock used to stamp and match budgets.
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		if now != nil {
			db.now = now
		}
	}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewDB opens (creating if needed) the database file and runs migrations.
// Every failure wraps ErrStorageUnavailable.
func NewDB(path string, opts ...Option) (*DB, error) {
	db := &DB{
		log: applog.Discard().WithComponent(applog.ComponentStorage),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(db)
	}

	if path != MemoryPath && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, unavailable("create db directory", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable("open sqlite database", err)
	}

	// One logical reader/writer. This also keeps an in-memory database
	// alive on a single connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, unavailable("ping database", err)
	}

	db.conn = conn
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, unavailable("run migrations", err)
	}

	db.log.Logger.Debug("Database ready", applog.FieldPath, path)
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount(ctx context.Context) (int, error) {
	return db.count(ctx, "users")
}

// ExpenseCount returns the number of expenses across all users.
func (db *DB) ExpenseCount(ctx context.Context) (int, error) {
	return db.count(ctx, "expenses")
}

// BudgetCount returns the number of budgets across all users.
func (db *DB) BudgetCount(ctx context.Context) (int, error) {
	return db.count(ctx, "budgets")
}

func (db *DB) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, failure(fmt.Sprintf("count %s", table), err)
	}
	return n, nil
}

// inTx runs fn inside a transaction, committing on success.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return failure("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return failure("commit transaction", err)
	}
	return nil
}
