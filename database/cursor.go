package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"idb/driver"
)

// rowsCursor adapts sqlx.Rows to the Cursor contract, scanning each row
// into a column-keyed map on advance.
type rowsCursor struct {
	rows    *sqlx.Rows
	cols    []string
	current map[string]any
	closed  bool
}

func (c *rowsCursor) ColumnNames() []string {
	return c.cols
}

func (c *rowsCursor) Advance() (bool, error) {
	if c.closed {
		return false, nil
	}
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return false, err
		}
		return false, nil
	}
	c.current = make(map[string]any, len(c.cols))
	if err := c.rows.MapScan(c.current); err != nil {
		return false, fmt.Errorf("scan row: %w", err)
	}
	// keep column values inside the driver value domain
	for k, v := range c.current {
		nv, err := driver.Normalize(v)
		if err != nil {
			return false, err
		}
		c.current[k] = nv
	}
	return true, nil
}

func (c *rowsCursor) ValueOf(column string) (any, error) {
	if c.current == nil {
		return nil, fmt.Errorf("cursor not positioned on a row")
	}
	v, ok := c.current[column]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	return v, nil
}

func (c *rowsCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.current = nil
	return c.rows.Close()
}

// keysCursor is a one-row in-memory cursor over a generated key.
type keysCursor struct {
	id  int64
	pos int // 0 before the row, 1 on it, 2 past it
}

func (c *keysCursor) ColumnNames() []string {
	return []string{"insert_id"}
}

func (c *keysCursor) Advance() (bool, error) {
	if c.pos == 0 {
		c.pos = 1
		return true, nil
	}
	c.pos = 2
	return false, nil
}

func (c *keysCursor) ValueOf(column string) (any, error) {
	if c.pos != 1 {
		return nil, fmt.Errorf("cursor not positioned on a row")
	}
	if column != "insert_id" {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	return c.id, nil
}

func (c *keysCursor) Close() error {
	c.pos = 2
	return nil
}
