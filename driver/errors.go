package driver

import (
	"errors"
	"fmt"
)

// Error classes for everything the statement layer can fail with.
// Callers classify with errors.Is; the underlying driver error stays
// reachable through the wrap chain.
var (
	// ErrConnection covers pool exhaustion and dead or released connections.
	ErrConnection = errors.New("connection error")

	// ErrStatement covers malformed SQL and driver-rejected prepare or execute.
	ErrStatement = errors.New("statement error")

	// ErrUsage marks protocol violations by the caller, such as executing
	// before prepare. These are programmer errors and deliberately loud.
	ErrUsage = errors.New("usage error")

	// ErrResult covers failures decoding a column from a result row.
	ErrResult = errors.New("result error")
)

// ConnectionErr wraps err as an ErrConnection with a formatted context message.
func ConnectionErr(err error, format string, args ...any) error {
	return wrap(ErrConnection, err, format, args...)
}

// StatementErr wraps err as an ErrStatement.
func StatementErr(err error, format string, args ...any) error {
	return wrap(ErrStatement, err, format, args...)
}

// UsageErr wraps err as an ErrUsage.
func UsageErr(err error, format string, args ...any) error {
	return wrap(ErrUsage, err, format, args...)
}

// ResultErr wraps err as an ErrResult.
func ResultErr(err error, format string, args ...any) error {
	return wrap(ErrResult, err, format, args...)
}

func wrap(class, err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if err == nil {
		return fmt.Errorf("%w: %s", class, msg)
	}
	return fmt.Errorf("%w: %s: %w", class, msg, err)
}
