package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stevehiehn/calcengine/internal/expr"
	"github.com/stevehiehn/calcengine/internal/rules"
)

func TestRunErrorMessage(t *testing.T) {
	err := NewDefinitionError("emi", "step has no expression or rule_function", "")
	assert.Equal(t, "[DEFINITION_ERROR] step emi: step has no expression or rule_function", err.Error())

	err = NewValidationError("Missing required input: Loan Amount (principal)", "")
	assert.Equal(t, "[VALIDATION_ERROR] Missing required input: Loan Amount (principal)", err.Error())
}

func TestClassify(t *testing.T) {
	_, evalErr := expr.Evaluate("missing + 1", nil)
	_, ruleErr := rules.Invoke("nope", expr.Map{})

	tests := []struct {
		name     string
		err      error
		wantType string
	}{
		{"eval error", evalErr, EvalError},
		{"wrapped eval error", fmt.Errorf("step: %w", evalErr), EvalError},
		{"registry error", ruleErr, RegistryError},
		{"run error", NewDefinitionError("", "bad", ""), DefinitionError},
		{"other", fmt.Errorf("boom"), InternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("s1", tt.err)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, "s1", got.StepID)
			assert.False(t, got.Retryable)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestClassifyKeepsExistingStepID(t *testing.T) {
	got := Classify("s2", NewDefinitionError("s1", "bad", ""))
	assert.Equal(t, "s1", got.StepID)
}
