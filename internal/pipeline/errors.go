package pipeline

import (
	"fmt"
	"strings"
)

// MissingFieldError reports required payload fields that were absent or blank
type MissingFieldError struct {
	Topic  string
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required fields: %s", e.Topic, strings.Join(e.Fields, ", "))
}

// PayloadError reports an event payload that could not be decoded
type PayloadError struct {
	Topic string
	Cause error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: invalid payload: %v", e.Topic, e.Cause)
}

func (e *PayloadError) Unwrap() error {
	return e.Cause
}
