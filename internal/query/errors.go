package query

import "fmt"

// ErrorKind identifies a resolver failure class.
type ErrorKind string

const (
	// KindInvalidFilter marks a malformed request filter: a client error,
	// distinct from a query that legitimately matches nothing.
	KindInvalidFilter ErrorKind = "invalid_filter"
)

// Error is a resolver failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("query: %s: %s", e.Kind, e.Message)
}

func invalidFilter(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidFilter, Message: fmt.Sprintf(format, args...)}
}
