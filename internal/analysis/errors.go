package analysis

import (
	"errors"
	"fmt"
)

// ErrEmptyResult is returned when a filter combination matches no records.
// It is fatal to the request, never to the process: callers surface it to the
// user and must not attempt any aggregation on the empty set.
var ErrEmptyResult = errors.New("no records match the selected filters")

// ErrMissingColumn is returned when a metric depends on an optional column
// that was absent from the loaded dataset. Callers omit the dependent metric
// rather than failing the whole request.
var ErrMissingColumn = errors.New("required column not present in dataset")

// MissingColumn wraps ErrMissingColumn with the column name.
func MissingColumn(column string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumn, column)
}
