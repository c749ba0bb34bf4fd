package statement

import (
	"context"

	"idb/driver"
)

// fakeConn is a counting in-memory driver connection. Tests configure
// the result set and failure injection up front, then assert on the
// call counters afterwards.
type fakeConn struct {
	autocommit bool
	released   bool

	beginCalls    int
	commitCalls   int
	rollbackCalls int
	releaseCalls  int

	autocommitErr error
	commitErr     error
	rollbackErr   error
	prepareErr    error
	execErr       error
	queryErr      error

	cols     []string
	rows     [][]any
	affected int64
	insertID *int64

	stmts   []*fakeStmt
	cursors []*fakeCursor
}

func newFakeConn() *fakeConn {
	return &fakeConn{autocommit: true}
}

func (c *fakeConn) pool() driver.Pool { return fakePool{conn: c} }

type fakePool struct {
	conn *fakeConn
	err  error
}

func (p fakePool) Acquire(ctx context.Context) (driver.Conn, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.conn, nil
}

func (c *fakeConn) SetAutoCommit(on bool) error {
	if c.autocommitErr != nil {
		return c.autocommitErr
	}
	if !on && c.autocommit {
		c.beginCalls++
	}
	c.autocommit = on
	return nil
}

func (c *fakeConn) AutoCommit() bool { return c.autocommit }

func (c *fakeConn) Commit() error {
	c.commitCalls++
	return c.commitErr
}

func (c *fakeConn) Rollback() error {
	c.rollbackCalls++
	return c.rollbackErr
}

func (c *fakeConn) Prepare(ctx context.Context, query string) (driver.Stmt, error) {
	if c.prepareErr != nil {
		return nil, c.prepareErr
	}
	st := &fakeStmt{conn: c, binds: map[int]any{}}
	c.stmts = append(c.stmts, st)
	return st, nil
}

func (c *fakeConn) IsClosed() bool { return c.released }

func (c *fakeConn) Release() error {
	c.releaseCalls++
	c.released = true
	return nil
}

type fakeStmt struct {
	conn       *fakeConn
	binds      map[int]any
	closeCalls int
}

func (s *fakeStmt) Bind(index int, value any) error {
	s.binds[index] = value
	return nil
}

func (s *fakeStmt) ExecUpdate(ctx context.Context) (int64, error) {
	if s.conn.execErr != nil {
		return 0, s.conn.execErr
	}
	return s.conn.affected, nil
}

func (s *fakeStmt) ExecQuery(ctx context.Context) (driver.Cursor, error) {
	if s.conn.queryErr != nil {
		return nil, s.conn.queryErr
	}
	cur := &fakeCursor{cols: s.conn.cols, rows: s.conn.rows, idx: -1}
	s.conn.cursors = append(s.conn.cursors, cur)
	return cur, nil
}

func (s *fakeStmt) GeneratedKeys() (driver.Cursor, error) {
	if s.conn.insertID == nil {
		return nil, nil
	}
	return &fakeCursor{
		cols: []string{"insert_id"},
		rows: [][]any{{*s.conn.insertID}},
		idx:  -1,
	}, nil
}

func (s *fakeStmt) Close() error {
	s.closeCalls++
	return nil
}

type fakeCursor struct {
	cols       []string
	rows       [][]any
	idx        int
	closeCalls int
}

func (c *fakeCursor) ColumnNames() []string { return c.cols }

func (c *fakeCursor) Advance() (bool, error) {
	c.idx++
	return c.idx < len(c.rows), nil
}

func (c *fakeCursor) ValueOf(column string) (any, error) {
	for i, col := range c.cols {
		if col == column {
			return c.rows[c.idx][i], nil
		}
	}
	return nil, driver.ResultErr(nil, "unknown column %q", column)
}

func (c *fakeCursor) Close() error {
	c.closeCalls++
	return nil
}
