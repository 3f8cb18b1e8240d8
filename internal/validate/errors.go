package validate

import "fmt"

// ErrorKind identifies which invariant a payload violated.
type ErrorKind string

const (
	MissingRequiredField ErrorKind = "missing_required_field"
	MissingRequiredDate  ErrorKind = "missing_required_date"
	InvalidRange         ErrorKind = "invalid_range"
	InvalidDateRange     ErrorKind = "invalid_date_range"
	InvalidCoordinate    ErrorKind = "invalid_coordinate"
	InvalidScope         ErrorKind = "invalid_scope"
)

// ValidationError reports the first invariant violation found in a payload.
// One error per pass; the check order in Validate fixes which one.
type ValidationError struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate: %s (%s): %s", e.Kind, e.Field, e.Message)
}
