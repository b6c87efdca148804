package raggen

import (
	"errors"
	"fmt"
)

// Sentinel errors for generator construction and invocation.
// All use prefix "raggen:" for identification. Callers should use errors.Is/errors.As.
var (
	ErrUnsupportedModel = errors.New("raggen: model not supported by this provider")
	ErrMissingAPIKey    = errors.New("raggen: api key not provided")
	ErrInvalidConfig    = errors.New("raggen: invalid configuration")
	ErrBlockedOutput    = errors.New("raggen: provider blocked the output")
	ErrNoTextField      = errors.New("raggen: document has no text field")
	ErrPromptOverflow   = errors.New("raggen: prompt does not fit the context budget")
)

// DocumentError wraps a sentinel error with the candidate that caused it.
// Use errors.Is(err, ErrNoTextField) and errors.As(err, &docErr) to inspect.
type DocumentError struct {
	DocID string
	Index int
	Err   error
}

// Error implements error.
func (e *DocumentError) Error() string {
	return fmt.Sprintf("raggen: candidate %d (docid %q): %v", e.Index, e.DocID, e.Err)
}

// Unwrap returns the wrapped error for errors.Is/errors.As.
func (e *DocumentError) Unwrap() error { return e.Err }

// Compile-time check that DocumentError implements error.
var _ error = (*DocumentError)(nil)
