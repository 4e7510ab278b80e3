package generation

import "fmt"

// AdapterError reports a failed call to the text-generation capability
type AdapterError struct {
	Op      string // "extract" or "complete"
	Message string
	Cause   error
}

func (e *AdapterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation %s failed: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation %s failed: %s", e.Op, e.Message)
}

func (e *AdapterError) Unwrap() error {
	return e.Cause
}
