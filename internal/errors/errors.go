package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/stevehiehn/calcengine/internal/expr"
	"github.com/stevehiehn/calcengine/internal/rules"
)

// Error type constants
const (
	DefinitionError = "DEFINITION_ERROR"
	ValidationError = "VALIDATION_ERROR"
	EvalError       = "EVAL_ERROR"
	RegistryError   = "REGISTRY_ERROR"
	InternalError   = "INTERNAL_ERROR"
)

// RunError is a structured error for callers of the engine, the CLI and the
// MCP server. No calculator error is retryable.
type RunError struct {
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	StepID    string `json:"step_id,omitempty"`
	Retryable bool   `json:"retryable"`
	Hint      string `json:"hint,omitempty"`
}

func (e *RunError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("[%s] step %s: %s", e.Type, e.StepID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func NewDefinitionError(stepID, msg, hint string) *RunError {
	return &RunError{Type: DefinitionError, StepID: stepID, Message: msg, Hint: hint}
}

func NewValidationError(msg, hint string) *RunError {
	return &RunError{Type: ValidationError, Message: msg, Hint: hint}
}

// Classify converts err into a RunError attributed to stepID. Errors that are
// already RunErrors keep their type.
func Classify(stepID string, err error) *RunError {
	var (
		runErr  *RunError
		evalErr *expr.EvalError
		ruleErr *rules.Error
	)
	switch {
	case stderrors.As(err, &runErr):
		out := *runErr
		if out.StepID == "" {
			out.StepID = stepID
		}
		return &out
	case stderrors.As(err, &evalErr):
		return &RunError{Type: EvalError, StepID: stepID, Message: evalErr.Error()}
	case stderrors.As(err, &ruleErr):
		return &RunError{
			Type:    RegistryError,
			StepID:  stepID,
			Message: ruleErr.Error(),
			Hint:    "Run `calcengine rules` to list the available rule functions",
		}
	default:
		return &RunError{Type: InternalError, StepID: stepID, Message: err.Error()}
	}
}
