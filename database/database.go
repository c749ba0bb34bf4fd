// Package database implements the driver contracts over a sqlx
// connection pool, for PostgreSQL and MySQL.
package database

import (
	"context"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"idb/config"
	"idb/driver"
	"idb/shared/logger"
)

// DB wraps a sqlx pool and lends session-pinned connections.
type DB struct {
	db  *sqlx.DB
	log logger.Logger
}

// Open connects a pool using the given settings and verifies it with a ping.
func Open(cfg config.Database) (*DB, error) {
	logger.Log.Debug("opening database pool",
		logger.String("driver", cfg.Driver),
		logger.Int("max_open_conns", cfg.MaxOpenConns))

	db, err := sqlx.Connect(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, driver.ConnectionErr(err, "connect %s", cfg.Driver)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime))
	}

	logger.Log.Info("database pool ready", logger.String("driver", cfg.Driver))
	return NewDB(db), nil
}

// NewDB wraps an already-constructed sqlx pool. Tests use this with sqlmock.
func NewDB(db *sqlx.DB) *DB {
	return &DB{db: db, log: logger.Log}
}

// Acquire pins one session from the pool. Transaction state set through
// the returned Conn stays scoped to that session.
func (d *DB) Acquire(ctx context.Context) (driver.Conn, error) {
	cx, err := d.db.Connx(ctx)
	if err != nil {
		return nil, driver.ConnectionErr(err, "acquire connection")
	}
	return &conn{cx: cx, autocommit: true, log: d.log}, nil
}

// Close shuts the pool down.
func (d *DB) Close() error {
	return d.db.Close()
}
