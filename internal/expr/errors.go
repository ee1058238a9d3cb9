package expr

import "fmt"

// EvalError reports a parse or evaluation failure for one expression.
type EvalError struct {
	Expression string
	Message    string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("invalid expression '%s': %s", e.Expression, e.Message)
}

func newError(src, format string, args ...any) *EvalError {
	return &EvalError{Expression: src, Message: fmt.Sprintf(format, args...)}
}
