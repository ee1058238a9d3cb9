package engine

import (
	calcerrors "github.com/stevehiehn/calcengine/internal/errors"
	"github.com/stevehiehn/calcengine/internal/expr"
)

// State is the lifecycle position of an execution.
type State string

const (
	StateValidating State = "validating"
	StateRunning    State = "running"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Step statuses.
const (
	StatusSuccess = "success"
	StatusDryRun  = "dry-run"
	StatusExplain = "explain"
)

// Step methods.
const (
	MethodExpression   = "expression"
	MethodRuleFunction = "rule_function"
)

// Result is the structured output of a calculator execution.
type Result struct {
	RunID          string                `json:"run_id"`
	CalculatorID   string                `json:"calculator_id"`
	CalculatorName string                `json:"calculator_name"`
	Inputs         map[string]any        `json:"inputs"`
	State          State                 `json:"state"`
	Steps          []StepTrace           `json:"steps"`
	Outputs        Snapshot              `json:"outputs"`
	Summary        Summary               `json:"summary"`
	ExecutionTime  float64               `json:"execution_time_ms"`
	Success        bool                  `json:"success"`
	Error          *string               `json:"error"`
	FailedStepID   string                `json:"failed_step_id,omitempty"`
	Errors         []calcerrors.RunError `json:"errors,omitempty"`
}

// Output returns the named output value.
func (r *Result) Output(id string) (expr.Value, bool) {
	return r.Outputs.Get(id)
}

// StepTrace records one executed step: what ran, the bindings it could see,
// and what it produced.
type StepTrace struct {
	StepID       string      `json:"step_id"`
	Description  string      `json:"description,omitempty"`
	Method       string      `json:"method"` // expression or rule_function
	Expression   string      `json:"expression,omitempty"`
	RuleFunction string      `json:"rule_function,omitempty"`
	Status       string      `json:"status"` // success, dry-run, explain
	InputValues  Snapshot    `json:"input_values"`
	Result       *expr.Value `json:"result,omitempty"`
}

// Summary counts what an execution did.
type Summary struct {
	StepsTotal       int `json:"steps_total"`
	StepsExecuted    int `json:"steps_executed"`
	ExpressionSteps  int `json:"expression_steps"`
	RuleSteps        int `json:"rule_steps"`
	OutputsRequested int `json:"outputs_requested"`
	OutputsReturned  int `json:"outputs_returned"`
}

func (r *Result) fail(err *calcerrors.RunError) {
	r.Success = false
	r.State = StateFailed
	if r.FailedStepID == "" {
		r.FailedStepID = err.StepID
	}
	r.Errors = append(r.Errors, *err)
	if r.Error == nil {
		msg := err.Message
		r.Error = &msg
	}
}
