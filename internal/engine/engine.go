package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stevehiehn/calcengine/internal/calculator"
	calcerrors "github.com/stevehiehn/calcengine/internal/errors"
	"github.com/stevehiehn/calcengine/internal/expr"
	"github.com/stevehiehn/calcengine/internal/mathx"
	"github.com/stevehiehn/calcengine/internal/rules"
)

// Mode controls execution behavior.
type Mode int

const (
	ModeExplain Mode = iota
	ModeDryRun
	ModeRun
)

func (m Mode) String() string {
	switch m {
	case ModeExplain:
		return "explain"
	case ModeDryRun:
		return "dry-run"
	case ModeRun:
		return "run"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Execute runs a calculator definition in the given mode. Every failure,
// including a panic, is reported in the returned Result.
func Execute(def *calculator.Definition, rc *RunContext, mode Mode) (result *Result) {
	start := time.Now()
	if rc == nil {
		rc = NewRunContext(nil, nil)
	}
	log := rc.logger().With("run_id", rc.RunID, "mode", mode.String())

	result = &Result{
		RunID:   rc.RunID,
		Inputs:  rc.Inputs,
		State:   StateValidating,
		Steps:   []StepTrace{},
		Success: true,
	}
	if result.Inputs == nil {
		result.Inputs = map[string]any{}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("execution panicked", "panic", r)
			result.fail(&calcerrors.RunError{
				Type:    calcerrors.InternalError,
				Message: fmt.Sprintf("internal error during execution: %v", r),
			})
		}
		if result.Success {
			result.State = StateSucceeded
		}
		result.ExecutionTime = mathx.Round(float64(time.Since(start).Nanoseconds())/1e6, 2)
		log.Info("execution finished",
			"success", result.Success,
			"steps_executed", result.Summary.StepsExecuted,
			"execution_time_ms", result.ExecutionTime,
		)
	}()

	if def == nil {
		result.fail(calcerrors.NewDefinitionError("", "no calculator definition", ""))
		return result
	}
	result.CalculatorID = def.ID
	result.CalculatorName = def.Name
	result.Summary = Summary{StepsTotal: len(def.Steps), OutputsRequested: len(def.Outputs)}
	log = log.With("calculator_id", def.ID)
	log.Info("execution started", "steps", len(def.Steps))

	switch mode {
	case ModeExplain:
		describe(def, result, StatusExplain, log)
	case ModeDryRun:
		if !validate(def, rc.Inputs, result, log) {
			return result
		}
		describe(def, result, StatusDryRun, log)
	default:
		if !validate(def, rc.Inputs, result, log) {
			return result
		}
		run(def, rc.Inputs, result, log)
	}
	return result
}

// validate records every input violation on result and reports whether the
// inputs are acceptable.
func validate(def *calculator.Definition, inputs map[string]any, result *Result, log *slog.Logger) bool {
	errs := ValidateInputs(def, inputs)
	if len(errs) == 0 {
		return true
	}
	for _, msg := range errs {
		result.fail(calcerrors.NewValidationError(msg, ""))
	}
	joined := strings.Join(errs, "; ")
	result.Error = &joined
	log.Warn("input validation failed", "errors", len(errs))
	return false
}

// describe lists the steps without evaluating them, after a static check of
// the definition.
func describe(def *calculator.Definition, result *Result, status string, log *slog.Logger) {
	if err := calculator.Validate(def); err != nil {
		re := calcerrors.Classify("", err)
		log.Warn("definition check failed", "step_id", re.StepID, "error", re.Message)
		result.fail(re)
		return
	}
	result.State = StateRunning
	for _, step := range def.Steps {
		tr := trace(step, status)
		result.countMethod(tr.Method)
		result.Steps = append(result.Steps, tr)
		log.Debug("step listed", "step_id", step.ID, "method", tr.Method)
	}
}

func run(def *calculator.Definition, inputs map[string]any, result *Result, log *slog.Logger) {
	result.State = StateRunning
	ctx, err := seed(def, inputs)
	if err != nil {
		re := calcerrors.Classify("", err)
		log.Warn("seeding inputs failed", "error", re.Message)
		result.fail(re)
		return
	}

	for _, step := range def.Steps {
		before := ctx.Snapshot()
		v, err := executeStep(step, ctx)
		if err == nil {
			if bindErr := ctx.Bind(step.ID, v); bindErr != nil {
				err = calcerrors.NewDefinitionError(step.ID, bindErr.Error(),
					"Step ids must be unique and must not reuse an input key")
			}
		}
		if err != nil {
			re := calcerrors.Classify(step.ID, err)
			log.Warn("step failed", "step_id", step.ID, "type", re.Type, "error", re.Message)
			result.fail(re)
			return
		}

		tr := trace(step, StatusSuccess)
		tr.InputValues = before
		tr.Result = &v
		result.Steps = append(result.Steps, tr)
		result.countMethod(tr.Method)
		result.Summary.StepsExecuted++
		log.Debug("step executed", "step_id", step.ID, "method", tr.Method, "result", v.String())
	}

	outputs := Snapshot{}
	for _, id := range def.Outputs {
		if v, ok := ctx.Lookup(id); ok {
			outputs = append(outputs, Binding{Name: id, Value: v})
		}
	}
	result.Outputs = outputs
	result.Summary.OutputsReturned = len(outputs)
}

func executeStep(step calculator.Step, ctx *Context) (expr.Value, error) {
	if err := calculator.CheckStep(step); err != nil {
		return expr.Value{}, err
	}
	if step.Expression != "" {
		return expr.Evaluate(step.Expression, ctx)
	}
	return rules.Invoke(step.RuleFunction, ctx)
}

func trace(step calculator.Step, status string) StepTrace {
	tr := StepTrace{
		StepID:       step.ID,
		Description:  step.Description,
		Expression:   step.Expression,
		RuleFunction: step.RuleFunction,
		Status:       status,
	}
	if step.Expression != "" {
		tr.Method = MethodExpression
	} else {
		tr.Method = MethodRuleFunction
	}
	return tr
}

func (r *Result) countMethod(method string) {
	if method == MethodExpression {
		r.Summary.ExpressionSteps++
	} else {
		r.Summary.RuleSteps++
	}
}
