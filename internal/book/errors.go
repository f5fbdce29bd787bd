package book

import "fmt"

// ValidationError reports the first input field that failed its rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, field),
	}
}

// StoreError wraps a persistence failure. Its message is the cause's message.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
