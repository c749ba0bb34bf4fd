// Package statement provides a stateful handle over one pooled database
// connection: prepare a statement, bind parameters, execute, stream
// rows, and release, while tracking open-transaction state so a
// connection is never returned to the pool with uncommitted work.
package statement

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"idb/driver"
	"idb/shared/logger"
)

type state int

const (
	stateIdle state = iota
	statePrepared
	stateCursored
	stateReleased
)

// Statement owns one borrowed connection, at most one prepared
// statement and at most one open cursor. It is a sequential unit of
// work for a single caller; only Rollback is safe to invoke
// concurrently (an explicit caller path may race a cleanup path).
//
// Every constructed Statement must reach Close on every exit path:
//
//	st, err := statement.New(ctx, pool)
//	if err != nil {
//		return err
//	}
//	defer st.Close()
type Statement struct {
	// Query holds the SQL text of the most recent Prepare, for diagnostics.
	Query string

	conn   driver.Conn
	stmt   driver.Stmt
	cursor driver.Cursor
	cols   []string
	state  state

	// mu guards dirty so rollback's check-and-clear is atomic.
	mu    sync.Mutex
	dirty bool

	id  string
	log logger.Logger
}

// Option configures a Statement at construction.
type Option func(*Statement)

// WithLogger routes commit, rollback and release failure reports to l
// instead of the package-global logger.
func WithLogger(l logger.Logger) Option {
	return func(st *Statement) {
		st.log = l
	}
}

// New borrows a connection from the pool and wraps it in a Statement.
func New(ctx context.Context, pool driver.Pool, opts ...Option) (*Statement, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, driver.ConnectionErr(err, "acquire connection")
	}
	return NewWithConn(conn, opts...), nil
}

// NewWithConn wraps an explicitly supplied connection. The Statement
// takes ownership: Close returns the connection to its pool.
func NewWithConn(conn driver.Conn, opts ...Option) *Statement {
	st := &Statement{
		conn: conn,
		id:   uuid.NewString(),
		log:  logger.Log,
	}
	for _, o := range opts {
		o(st)
	}
	return st
}

// StartTransaction disables autocommit on the underlying connection and
// marks the handle dirty. Calling it again before Commit or Rollback is
// tolerated and has no further effect.
func (st *Statement) StartTransaction() error {
	if st.conn == nil {
		return driver.UsageErr(nil, "statement already closed")
	}
	if err := st.conn.SetAutoCommit(false); err != nil {
		return driver.ConnectionErr(err, "disable autocommit")
	}
	st.mu.Lock()
	st.dirty = true
	st.mu.Unlock()
	return nil
}

// Commit finalizes a pending transaction. It is a no-op when no
// transaction has pending work. Failures are reported to the logger and
// never returned: by the time Commit runs the caller has already
// decided success.
func (st *Statement) Commit() {
	if !st.clearDirty() {
		return
	}
	if err := st.conn.Commit(); err != nil {
		st.log.Error("commit failed",
			logger.String("statement_id", st.id),
			logger.String("query", st.Query),
			logger.Err(err))
		return
	}
	if err := st.conn.SetAutoCommit(true); err != nil {
		st.log.Error("re-enable autocommit failed",
			logger.String("statement_id", st.id),
			logger.Err(err))
	}
}

// Rollback abandons a pending transaction. No-op when clean; failures
// are reported, not returned. Safe to call concurrently with itself:
// the dirty check-and-clear is atomic, so the underlying rollback runs
// at most once.
func (st *Statement) Rollback() {
	if !st.clearDirty() {
		return
	}
	if err := st.conn.Rollback(); err != nil {
		st.log.Error("rollback failed",
			logger.String("statement_id", st.id),
			logger.String("query", st.Query),
			logger.Err(err))
		return
	}
	if err := st.conn.SetAutoCommit(true); err != nil {
		st.log.Error("re-enable autocommit failed",
			logger.String("statement_id", st.id),
			logger.Err(err))
	}
}

// clearDirty atomically clears the dirty flag, reporting whether it was set.
func (st *Statement) clearDirty() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.dirty || st.conn == nil {
		return false
	}
	st.dirty = false
	return true
}

// Prepare compiles a new statement, closing any statement and cursor
// from a previous cycle. On failure the handle releases its connection:
// a handle that cannot prepare is unusable and must be re-acquired.
func (st *Statement) Prepare(ctx context.Context, query string) error {
	if st.state == stateReleased {
		return driver.UsageErr(nil, "statement already closed")
	}
	st.Query = query
	st.closeStmt()

	stmt, err := st.conn.Prepare(ctx, query)
	if err != nil {
		st.Close()
		return driver.StatementErr(err, "prepare %q", query)
	}
	st.stmt = stmt
	st.state = statePrepared
	return nil
}

// ExecuteUpdate binds params positionally and executes the prepared
// statement as a mutating query, returning the affected-row count. On
// execution failure the connection is released and the error propagated.
func (st *Statement) ExecuteUpdate(ctx context.Context, params ...any) (int64, error) {
	if err := st.bind(params); err != nil {
		return 0, err
	}
	n, err := st.stmt.ExecUpdate(ctx)
	if err != nil {
		st.Close()
		return 0, driver.StatementErr(err, "execute update %q", st.Query)
	}
	return n, nil
}

// Execute binds params positionally and executes the prepared statement
// as a result-producing query, capturing the ordered column names for
// row decoding. On failure the connection is released and the error
// propagated.
func (st *Statement) Execute(ctx context.Context, params ...any) error {
	if err := st.bind(params); err != nil {
		return err
	}
	cursor, err := st.stmt.ExecQuery(ctx)
	if err != nil {
		st.Close()
		return driver.StatementErr(err, "execute query %q", st.Query)
	}
	st.cursor = cursor
	st.cols = cursor.ColumnNames()
	st.state = stateCursored
	return nil
}

// bind closes any open cursor and sets the statement parameters,
// 1-indexed. A missing prior Prepare is a usage error and leaves the
// handle untouched; bind failures release the connection like any other
// execution failure.
func (st *Statement) bind(params []any) error {
	if st.stmt == nil {
		return driver.UsageErr(nil, "prepare not called before execute")
	}
	st.closeCursor()

	for i, p := range params {
		v, err := driver.Normalize(p)
		if err != nil {
			return err
		}
		if err := st.stmt.Bind(i+1, v); err != nil {
			st.Close()
			return driver.StatementErr(err, "bind parameter %d", i+1)
		}
	}
	return nil
}

// NextRow advances the open cursor and returns the next row, or nil
// when no cursor is open or the cursor is exhausted. An exhausted
// cursor is closed as a side effect.
func (st *Statement) NextRow() (*Row, error) {
	ok, err := st.advance()
	if err != nil || !ok {
		return nil, err
	}
	row := newRow(st.cols)
	for _, col := range st.cols {
		v, err := st.cursor.ValueOf(col)
		if err != nil {
			return nil, driver.ResultErr(err, "decode column %q", col)
		}
		row.set(col, v)
	}
	return row, nil
}

// Results drains the cursor into an ordered slice. It returns a nil
// slice when no query was executed, and an empty non-nil slice when a
// query ran but matched nothing.
func (st *Statement) Results() ([]*Row, error) {
	if st.cursor == nil {
		return nil, nil
	}
	rows := make([]*Row, 0)
	for {
		row, err := st.NextRow()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// FirstColumn advances the cursor once and returns its first column,
// typed per caller expectation. The second return is false on
// exhaustion. Intended for scalar aggregates such as counts.
func FirstColumn[T any](st *Statement) (T, bool, error) {
	var zero T
	ok, err := st.advance()
	if err != nil || !ok {
		return zero, false, err
	}
	if len(st.cols) == 0 {
		return zero, false, driver.ResultErr(nil, "cursor has no columns")
	}
	v, err := st.cursor.ValueOf(st.cols[0])
	if err != nil {
		return zero, false, driver.ResultErr(err, "decode column %q", st.cols[0])
	}
	if v == nil {
		return zero, true, nil
	}
	typed, isT := v.(T)
	if !isT {
		return zero, false, driver.ResultErr(nil, "column %q holds %T, not the requested type", st.cols[0], v)
	}
	return typed, true, nil
}

// LastInsertID reads the generated key assigned by the most recent
// mutating execution. The second return is false when the driver
// reports no generated keys.
func (st *Statement) LastInsertID() (int64, bool, error) {
	if st.stmt == nil {
		return 0, false, driver.UsageErr(nil, "prepare not called")
	}
	keys, err := st.stmt.GeneratedKeys()
	if err != nil {
		return 0, false, driver.ResultErr(err, "read generated keys")
	}
	if keys == nil {
		return 0, false, nil
	}
	defer keys.Close()

	ok, err := keys.Advance()
	if err != nil {
		return 0, false, driver.ResultErr(err, "advance generated keys")
	}
	if !ok {
		return 0, false, nil
	}
	cols := keys.ColumnNames()
	if len(cols) == 0 {
		return 0, false, nil
	}
	v, err := keys.ValueOf(cols[0])
	if err != nil {
		return 0, false, driver.ResultErr(err, "decode generated key")
	}
	switch id := v.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return id, true, nil
	default:
		return 0, false, driver.ResultErr(nil, "generated key holds %T, want int64", v)
	}
}

// advance moves the cursor forward, closing it on exhaustion so it is
// never left dangling after last use.
func (st *Statement) advance() (bool, error) {
	if st.cursor == nil {
		return false, nil
	}
	ok, err := st.cursor.Advance()
	if err != nil {
		st.closeCursor()
		return false, driver.ResultErr(err, "advance cursor")
	}
	if !ok {
		st.closeCursor()
		return false, nil
	}
	return true, nil
}

// Close releases everything held by the handle: cursor, statement, and
// the borrowed connection. A still-dirty transaction is rolled back
// first so a half-open transaction is never returned to the pool.
// Idempotent and never returns a non-nil error; cleanup failures go to
// the logger.
func (st *Statement) Close() error {
	if st.state == stateReleased {
		return nil
	}
	st.closeStmt()

	if st.conn != nil {
		if st.isDirty() && !st.conn.AutoCommit() {
			st.log.Warn("statement closed with open transaction, rolling back",
				logger.String("statement_id", st.id),
				logger.String("query", st.Query))
			st.Rollback()
		}
		if err := st.conn.Release(); err != nil {
			st.log.Error("release connection failed",
				logger.String("statement_id", st.id),
				logger.Err(err))
		}
		st.conn = nil
	}
	st.state = stateReleased
	return nil
}

// IsClosed reports whether the connection was already returned to the pool.
func (st *Statement) IsClosed() bool {
	return st.conn == nil || st.conn.IsClosed()
}

func (st *Statement) isDirty() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.dirty
}

// closeCursor closes the open cursor, if any, and invalidates the
// captured column names. Close failures on a replaced or drained cursor
// are reported, not propagated.
func (st *Statement) closeCursor() {
	if st.cursor == nil {
		return
	}
	if err := st.cursor.Close(); err != nil {
		st.log.Warn("close cursor failed",
			logger.String("statement_id", st.id),
			logger.Err(err))
	}
	st.cursor = nil
	st.cols = nil
	if st.state == stateCursored {
		st.state = statePrepared
	}
}

func (st *Statement) closeStmt() {
	st.closeCursor()
	if st.stmt == nil {
		return
	}
	if err := st.stmt.Close(); err != nil {
		st.log.Warn("close statement failed",
			logger.String("statement_id", st.id),
			logger.Err(err))
	}
	st.stmt = nil
	if st.state != stateReleased {
		st.state = stateIdle
	}
}
