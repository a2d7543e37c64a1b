package emsc

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a response body that cannot be interpreted as
// the expected format at all. Individual bad rows are skipped and counted
// instead.
var ErrMalformedResponse = errors.New("malformed response")

// RetrievalError carries a network or HTTP failure. The fetch is never
// retried automatically; the caller decides.
type RetrievalError struct {
	Status int
	Err    error
}

func (e *RetrievalError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("event catalog returned http %d", e.Status)
	}
	return fmt.Sprintf("event catalog request failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
