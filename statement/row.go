package statement

import "time"

// Row is one fetched result row: a column-to-value mapping that keeps
// the result set's column order.
type Row struct {
	columns []string
	values  map[string]any
}

func newRow(columns []string) *Row {
	return &Row{
		columns: columns,
		values:  make(map[string]any, len(columns)),
	}
}

func (r *Row) set(column string, value any) {
	r.values[column] = value
}

// Columns returns the column names in result-set order.
func (r *Row) Columns() []string {
	return r.columns
}

// Value returns the raw value of a column and whether the column exists.
func (r *Row) Value(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Int64 returns the column as an int64.
func (r *Row) Int64(column string) (int64, bool) {
	v, ok := r.values[column].(int64)
	return v, ok
}

// Float64 returns the column as a float64.
func (r *Row) Float64(column string) (float64, bool) {
	v, ok := r.values[column].(float64)
	return v, ok
}

// String returns the column as a string.
func (r *Row) String(column string) (string, bool) {
	v, ok := r.values[column].(string)
	return v, ok
}

// Bytes returns the column as a byte slice.
func (r *Row) Bytes(column string) ([]byte, bool) {
	v, ok := r.values[column].([]byte)
	return v, ok
}

// Bool returns the column as a bool.
func (r *Row) Bool(column string) (bool, bool) {
	v, ok := r.values[column].(bool)
	return v, ok
}

// Time returns the column as a time.Time.
func (r *Row) Time(column string) (time.Time, bool) {
	v, ok := r.values[column].(time.Time)
	return v, ok
}

// IsNull reports whether the column exists and holds NULL.
func (r *Row) IsNull(column string) bool {
	v, ok := r.values[column]
	return ok && v == nil
}
