package kvaside

import (
	"errors"
	"fmt"
)

// StoreError reports that the durable store failed or was unreachable for
// one operation. Ordinary absence of a key is never a StoreError; Get and
// Delete report it through their normal return values.
type StoreError struct {
	Op  string // "get", "put" or "delete"
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("kvaside: store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreUnavailable reports whether err (or anything it wraps) is a
// StoreError, letting an outer layer map it to a distinct response code
// without string matching.
func IsStoreUnavailable(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
