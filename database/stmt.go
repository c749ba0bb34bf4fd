package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"idb/driver"
)

// stmt is a prepared statement on one pinned session. Parameters are
// kept positionally and handed to the driver on every execution.
type stmt struct {
	sx      *sqlx.Stmt
	args    []any
	lastRes sql.Result
}

func (s *stmt) Bind(index int, value any) error {
	if index < 1 {
		return driver.UsageErr(nil, "bind index %d out of range", index)
	}
	v, err := driver.Normalize(value)
	if err != nil {
		return err
	}
	for len(s.args) < index {
		s.args = append(s.args, nil)
	}
	s.args[index-1] = v
	return nil
}

func (s *stmt) ExecUpdate(ctx context.Context) (int64, error) {
	res, err := s.sx.ExecContext(ctx, s.args...)
	if err != nil {
		return 0, err
	}
	s.lastRes = res
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (s *stmt) ExecQuery(ctx context.Context) (driver.Cursor, error) {
	rows, err := s.sx.QueryxContext(ctx, s.args...)
	if err != nil {
		return nil, err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("read columns: %w", err)
	}
	return &rowsCursor{rows: rows, cols: cols}, nil
}

// GeneratedKeys surfaces sql.Result.LastInsertId as a one-row cursor.
// Drivers without the capability (lib/pq) report no keys.
func (s *stmt) GeneratedKeys() (driver.Cursor, error) {
	if s.lastRes == nil {
		return nil, nil
	}
	id, err := s.lastRes.LastInsertId()
	if err != nil || id == 0 {
		return nil, nil
	}
	return &keysCursor{id: id}, nil
}

func (s *stmt) Close() error {
	return s.sx.Close()
}
