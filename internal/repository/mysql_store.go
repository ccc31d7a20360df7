package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// The MySQL store expects these tables:
//
//	courses        (id, name, instructor, location, course_date DATE, time_slot,
//	                max_capacity, description, dance_type NULL, leader_id NULL,
//	                created_at, updated_at)
//	bookings       (id, user_id, course_id, status, created_at, updated_at,
//	                UNIQUE (user_id, course_id),
//	                FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE)
//	schedule_locks (lock_key VARCHAR PRIMARY KEY)
//	users          (id, username UNIQUE, name, email, password_hash, role, dance_type NULL)

// querier is satisfied by both *sql.DB and *sql.Tx so read helpers can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MySQLStore implements Store on database/sql with the MySQL driver.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore wraps an open database handle.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// DB exposes the underlying handle for components that share the pool,
// such as the user repository used by the seed command.
func (s *MySQLStore) DB() *sql.DB {
	return s.db
}

// Ping verifies the database is reachable.
func (s *MySQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithinTx runs fn in a transaction. The transaction is committed only when
// fn returns nil; any error or panic rolls it back.
func (s *MySQLStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&mysqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// mysqlTx implements Tx on a *sql.Tx.
type mysqlTx struct {
	tx *sql.Tx
}

var (
	_ Store = (*MySQLStore)(nil)
	_ Tx    = (*mysqlTx)(nil)
)
