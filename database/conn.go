package database

import (
	"context"
	"sync"

	"github.com/jmoiron/sqlx"

	"idb/driver"
	"idb/shared/logger"
)

// conn is one pinned pool session. Autocommit is emulated with explicit
// BEGIN/COMMIT/ROLLBACK statements on the session: sessions revert to
// autocommit on their own once the transaction terminates, so
// re-enabling it is a flag reset only.
type conn struct {
	cx  *sqlx.Conn
	log logger.Logger

	mu         sync.Mutex
	autocommit bool
	closed     bool
}

func (c *conn) SetAutoCommit(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return driver.ConnectionErr(nil, "connection already released")
	}
	if on == c.autocommit {
		return nil
	}
	if !on {
		if _, err := c.cx.ExecContext(context.Background(), "BEGIN"); err != nil {
			return driver.ConnectionErr(err, "begin transaction")
		}
	}
	c.autocommit = on
	return nil
}

func (c *conn) AutoCommit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autocommit
}

func (c *conn) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return driver.ConnectionErr(nil, "connection already released")
	}
	if _, err := c.cx.ExecContext(context.Background(), "COMMIT"); err != nil {
		return driver.ConnectionErr(err, "commit")
	}
	return nil
}

func (c *conn) Rollback() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return driver.ConnectionErr(nil, "connection already released")
	}
	if _, err := c.cx.ExecContext(context.Background(), "ROLLBACK"); err != nil {
		return driver.ConnectionErr(err, "rollback")
	}
	return nil
}

func (c *conn) Prepare(ctx context.Context, query string) (driver.Stmt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, driver.ConnectionErr(nil, "connection already released")
	}
	sx, err := c.cx.PreparexContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &stmt{sx: sx}, nil
}

func (c *conn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Release returns the session to the pool. Idempotent.
func (c *conn) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.log.Debug("returning session to pool")
	return c.cx.Close()
}
