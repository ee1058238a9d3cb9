package rules

import "fmt"

// Error reports an unknown rule key or a failed invocation.
type Error struct {
	Key     string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("rule function %s: %s", e.Key, e.Message)
}
