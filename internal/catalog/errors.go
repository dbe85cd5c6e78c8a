package catalog

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrNotSupported marks operations a backend cannot answer.
//
// It is recoverable: callers check IsNotSupported and fall back.
var ErrNotSupported = errors.New("not supported by this catalog")

// ErrUnknownTable is returned when a relation does not exist.
var ErrUnknownTable = errors.New("unknown table")

// ErrUnknownColumn is returned when a relation has no such column.
var ErrUnknownColumn = errors.New("unknown column")

// IsNotSupported returns true if err is, or wraps, ErrNotSupported.
func IsNotSupported(err error) bool {
	return errors.Is(err, ErrNotSupported)
}

// IsUnknownTable returns true if err is, or wraps, ErrUnknownTable.
func IsUnknownTable(err error) bool {
	return errors.Is(err, ErrUnknownTable)
}

// notSupported builds an ErrNotSupported failure naming the operation.
func notSupported(backend, op string) error {
	return errors.Mark(errors.Newf("%s: %s is not supported", backend, op), ErrNotSupported)
}

// QueryError reports a metadata query the backend rejected.
type QueryError struct {
	// Query is the SQL text that failed.
	Query string

	// Err is the backend error.
	Err error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("metadata query failed: %v (query: %s)", e.Err, e.Query)
}

// Unwrap returns the backend error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsQueryError returns true if err is or wraps a *QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}
