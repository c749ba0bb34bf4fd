package driver

import "context"

// Pool lends database connections. A borrowed Conn must be given back
// through its Release method, never by discarding the reference.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
}

// Conn is one borrowed database session. Transaction boundaries are
// controlled through the autocommit flag: disabling it opens a
// transaction on the session, Commit and Rollback terminate it.
type Conn interface {
	SetAutoCommit(on bool) error
	AutoCommit() bool
	Commit() error
	Rollback() error

	// Prepare compiles a statement on this session. Implementations
	// request generated-key retrieval so that Stmt.GeneratedKeys works
	// after a mutating execution.
	Prepare(ctx context.Context, query string) (Stmt, error)

	IsClosed() bool
	Release() error
}

// Stmt is a prepared statement bound to one Conn.
type Stmt interface {
	// Bind sets the parameter at the given 1-indexed position,
	// replacing any prior value at that position.
	Bind(index int, value any) error

	ExecUpdate(ctx context.Context) (int64, error)
	ExecQuery(ctx context.Context) (Cursor, error)

	// GeneratedKeys returns a cursor over keys assigned by the most
	// recent ExecUpdate, or nil when the driver reports none.
	GeneratedKeys() (Cursor, error)

	Close() error
}

// Cursor is a forward-only pointer into a result set.
type Cursor interface {
	ColumnNames() []string
	Advance() (bool, error)
	ValueOf(column string) (any, error)
	Close() error
}
