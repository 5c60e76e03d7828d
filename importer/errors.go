package importer

import (
	"errors"
	"fmt"
)

// ErrUnexpectedFee is a yield row carrying a fee. Yields never do: the file is
// not what the importer thinks it is and extraction stops.
var ErrUnexpectedFee = errors.New("unexpected fee on a yield distribution")

// ErrNoPrice reports a yield without any candle on its day.
var ErrNoPrice = errors.New("no price available")

// RowError is an error about one statement row.
type RowError struct {
	Line          int
	TransactionID string
	Type          string
	Err           error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d (%s %s): %v", e.Line, e.Type, e.TransactionID, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// rowError wraps err with the position of r.
func rowError(r Record, err error) error {
	return &RowError{Line: r.Line, TransactionID: r.TransactionID, Type: r.TransactionType, Err: err}
}
