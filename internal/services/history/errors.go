// File: internal/services/history/errors.go
package history

import "fmt"

// ParseError reports a stored record whose date cannot be read back.
type ParseError struct {
	Index int
	Title string
	Value string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("history: record %d (%q) has malformed date %q: %v", e.Index, e.Title, e.Value, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
