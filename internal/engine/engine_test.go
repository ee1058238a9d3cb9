package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevehiehn/calcengine/internal/calculator"
	calcerrors "github.com/stevehiehn/calcengine/internal/errors"
)

func sample(t *testing.T, id string) *calculator.Definition {
	t.Helper()
	d, err := calculator.Sample(id)
	require.NoError(t, err)
	return d
}

func makeCtx(inputs map[string]any) *RunContext {
	return &RunContext{RunID: "test-run", Inputs: inputs}
}

func outputNum(t *testing.T, r *Result, id string) float64 {
	t.Helper()
	v, ok := r.Output(id)
	require.True(t, ok, "missing output %q", id)
	f, ok := v.Num()
	require.True(t, ok, "output %q is not numeric", id)
	return f
}

func emiInputs() map[string]any {
	return map[string]any{"principal": 5000000, "annual_rate": 8.5, "tenure_months": 240}
}

func TestExecuteEMISample(t *testing.T) {
	result := Execute(sample(t, "emi_calculator"), makeCtx(emiInputs()), ModeRun)

	require.True(t, result.Success, "unexpected error: %v", result.Error)
	assert.Nil(t, result.Error)
	assert.Equal(t, StateSucceeded, result.State)
	assert.Equal(t, "emi_calculator", result.CalculatorID)
	assert.Equal(t, "EMI Calculator", result.CalculatorName)

	emi := outputNum(t, result, "emi")
	assert.InDelta(t, 43391, emi, 100)
	assert.InDelta(t, emi*240, outputNum(t, result, "total_payment"), 1e-6)
	assert.InDelta(t, emi*240-5000000, outputNum(t, result, "total_interest"), 1e-6)

	require.Len(t, result.Steps, 4)
	assert.Equal(t, "monthly_rate", result.Steps[0].StepID)
	assert.Equal(t, MethodExpression, result.Steps[0].Method)
	assert.Equal(t, StatusSuccess, result.Steps[0].Status)
	assert.GreaterOrEqual(t, result.ExecutionTime, 0.0)

	assert.Equal(t, Summary{
		StepsTotal:       4,
		StepsExecuted:    4,
		ExpressionSteps:  4,
		OutputsRequested: 3,
		OutputsReturned:  3,
	}, result.Summary)
}

func TestTraceRecordsPreStepSnapshot(t *testing.T) {
	result := Execute(sample(t, "emi_calculator"), makeCtx(emiInputs()), ModeRun)
	require.True(t, result.Success)

	first := result.Steps[0]
	assert.Len(t, first.InputValues, 3)
	_, ok := first.InputValues.Get("monthly_rate")
	assert.False(t, ok, "snapshot must be taken before the step binds")

	second := result.Steps[1]
	assert.Len(t, second.InputValues, 4)
	rate, ok := second.InputValues.Get("monthly_rate")
	require.True(t, ok)
	f, _ := rate.Num()
	assert.InDelta(t, 8.5/12/100, f, 1e-12)
	require.NotNil(t, first.Result)
	assert.Equal(t, rate, *first.Result)
}

func TestMissingRequiredInputNamesLabel(t *testing.T) {
	inputs := emiInputs()
	delete(inputs, "principal")
	result := Execute(sample(t, "emi_calculator"), makeCtx(inputs), ModeRun)

	assert.False(t, result.Success)
	assert.Equal(t, StateFailed, result.State)
	require.NotNil(t, result.Error)
	assert.Contains(t, *result.Error, "Loan Amount (₹)")
	assert.Contains(t, *result.Error, "Missing required input")
	assert.Empty(t, result.Steps)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, calcerrors.ValidationError, result.Errors[0].Type)
}

func TestValidateInputsCollectsAllViolations(t *testing.T) {
	errs := ValidateInputs(sample(t, "emi_calculator"), map[string]any{
		"principal":     10,
		"annual_rate":   "lots",
		"tenure_months": 400,
	})
	assert.Equal(t, []string{
		"Loan Amount (₹) must be >= 1000",
		"Annual Interest Rate (%) must be a number",
		"Loan Tenure (Months) must be <= 360",
	}, errs)
}

func TestValidateInputsSelectAndBoolean(t *testing.T) {
	def := &calculator.Definition{
		ID:   "t",
		Name: "t",
		Inputs: []calculator.InputSpec{
			{Key: "regime", Label: "Regime", Type: calculator.InputSelect, Required: true, Options: []string{"old", "new"}},
			{Key: "senior", Label: "Senior", Type: calculator.InputBoolean, Required: false},
		},
		Steps: []calculator.Step{{ID: "x", Expression: "1"}},
	}
	errs := ValidateInputs(def, map[string]any{"regime": "middle", "senior": "maybe"})
	assert.Equal(t, []string{"Regime must be one of: old, new", "Senior must be a boolean"}, errs)

	assert.Empty(t, ValidateInputs(def, map[string]any{"regime": "old", "senior": "true"}))
	assert.Empty(t, ValidateInputs(def, map[string]any{"regime": "new"}))
}

func TestSelectWithoutOptionsAcceptsAnyValue(t *testing.T) {
	def := &calculator.Definition{
		Inputs: []calculator.InputSpec{{Key: "mode", Label: "Mode", Type: calculator.InputSelect, Required: true}},
	}
	assert.Empty(t, ValidateInputs(def, map[string]any{"mode": "anything"}))
}

func TestNumericStringsAreCoerced(t *testing.T) {
	result := Execute(sample(t, "emi_calculator"), makeCtx(map[string]any{
		"principal": "5000000", "annual_rate": "8.5", "tenure_months": json.Number("240"),
	}), ModeRun)
	require.True(t, result.Success, "unexpected error: %v", result.Error)
	assert.InDelta(t, 43391, outputNum(t, result, "emi"), 100)
}

func TestExecuteIsIdempotent(t *testing.T) {
	def := sample(t, "income_tax_india")
	inputs := map[string]any{"annual_income": 1500000, "deductions": 150000, "regime": "old"}

	first := Execute(def, makeCtx(inputs), ModeRun)
	second := Execute(def, makeCtx(inputs), ModeRun)
	require.True(t, first.Success)

	first.ExecutionTime, second.ExecutionTime = 0, 0
	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestExecuteSIPSample(t *testing.T) {
	result := Execute(sample(t, "sip_calculator"), makeCtx(map[string]any{
		"monthly_investment": 1000, "annual_rate": 0, "years": 1,
	}), ModeRun)
	require.True(t, result.Success, "unexpected error: %v", result.Error)

	assert.Equal(t, 12000.0, outputNum(t, result, "future_value"))
	assert.Equal(t, 12000.0, outputNum(t, result, "total_invested"))
	assert.Equal(t, 0.0, outputNum(t, result, "wealth_gained"))
	assert.Equal(t, MethodRuleFunction, result.Steps[0].Method)
	assert.Equal(t, "sip_future_value", result.Steps[0].RuleFunction)
	assert.Equal(t, 1, result.Summary.RuleSteps)
	assert.Equal(t, 2, result.Summary.ExpressionSteps)
}

func TestRequiredInputWithDefaultMustBeProvided(t *testing.T) {
	result := Execute(sample(t, "sip_calculator"), makeCtx(map[string]any{
		"monthly_investment": 1000, "years": 1,
	}), ModeRun)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Contains(t, *result.Error, "Expected Annual Return (%)")
}

func TestExecuteIncomeTaxSample(t *testing.T) {
	def := sample(t, "income_tax_india")
	result := Execute(def, makeCtx(map[string]any{
		"annual_income": 1000000, "deductions": 200000, "regime": "old",
	}), ModeRun)
	require.True(t, result.Success, "unexpected error: %v", result.Error)

	assert.Equal(t, 800000.0, outputNum(t, result, "taxable_income"))
	assert.Equal(t, 72500.0, outputNum(t, result, "tax_old"))
	assert.InDelta(t, 22500, outputNum(t, result, "tax_new"), 1e-6)
	assert.Equal(t, 72500.0, outputNum(t, result, "selected_tax"))
	assert.InDelta(t, 2900, outputNum(t, result, "cess"), 1e-6)
	assert.InDelta(t, 75400, outputNum(t, result, "total_tax"), 1e-6)
	assert.InDelta(t, 7.54, outputNum(t, result, "effective_rate"), 1e-9)

	// Optional deductions fall back to the default of 0.
	result = Execute(def, makeCtx(map[string]any{"annual_income": 1000000, "regime": "new"}), ModeRun)
	require.True(t, result.Success, "unexpected error: %v", result.Error)
	assert.Equal(t, 1000000.0, outputNum(t, result, "taxable_income"))
	assert.InDelta(t, 42500, outputNum(t, result, "selected_tax"), 1e-6)
}

func TestStepWithNeitherOrBothIsDefinitionError(t *testing.T) {
	tests := []struct {
		name string
		step calculator.Step
	}{
		{"neither", calculator.Step{ID: "bad"}},
		{"both", calculator.Step{ID: "bad", Expression: "1", RuleFunction: "emi_calculator"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := &calculator.Definition{
				ID:    "t",
				Name:  "t",
				Steps: []calculator.Step{{ID: "ok", Expression: "1 + 1"}, tt.step},
			}
			result := Execute(def, makeCtx(nil), ModeRun)
			assert.False(t, result.Success)
			assert.Equal(t, "bad", result.FailedStepID)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, calcerrors.DefinitionError, result.Errors[0].Type)
			// The trace keeps the steps that completed.
			require.Len(t, result.Steps, 1)
			assert.Equal(t, "ok", result.Steps[0].StepID)
		})
	}
}

func TestForwardReferenceFailsAsUnknownIdentifier(t *testing.T) {
	def := &calculator.Definition{
		ID:   "t",
		Name: "t",
		Steps: []calculator.Step{
			{ID: "a", Expression: "b + 1"},
			{ID: "b", Expression: "1"},
		},
		Outputs: []string{"a"},
	}
	result := Execute(def, makeCtx(nil), ModeRun)
	assert.False(t, result.Success)
	assert.Equal(t, "a", result.FailedStepID)
	require.NotNil(t, result.Error)
	assert.Contains(t, *result.Error, "unknown identifier: b")
	assert.Equal(t, calcerrors.EvalError, result.Errors[0].Type)
	assert.Empty(t, result.Steps)
}

func TestUnknownRuleFunctionIsRegistryError(t *testing.T) {
	def := &calculator.Definition{
		ID:    "t",
		Name:  "t",
		Steps: []calculator.Step{{ID: "x", RuleFunction: "no_such_rule"}},
	}
	result := Execute(def, makeCtx(nil), ModeRun)
	assert.False(t, result.Success)
	assert.Equal(t, calcerrors.RegistryError, result.Errors[0].Type)
	assert.Contains(t, *result.Error, "no_such_rule")
}

func TestRebindingStepIDFails(t *testing.T) {
	def := &calculator.Definition{
		ID:     "t",
		Name:   "t",
		Inputs: []calculator.InputSpec{{Key: "x", Label: "X", Type: calculator.InputNumber, Required: true}},
		Steps:  []calculator.Step{{ID: "x", Expression: "x * 2"}},
	}
	result := Execute(def, makeCtx(map[string]any{"x": 2}), ModeRun)
	assert.False(t, result.Success)
	assert.Equal(t, calcerrors.DefinitionError, result.Errors[0].Type)
	assert.Equal(t, "x", result.FailedStepID)
}

func TestStepIDMustBeIdentifier(t *testing.T) {
	def := &calculator.Definition{
		ID:   "t",
		Name: "t",
		Steps: []calculator.Step{
			{ID: "ok", Expression: "1"},
			{ID: "../../../../escaped", Expression: "ok + 1"},
		},
	}
	result := Execute(def, makeCtx(nil), ModeRun)
	assert.False(t, result.Success)
	assert.Equal(t, "../../../../escaped", result.FailedStepID)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, calcerrors.DefinitionError, result.Errors[0].Type)
	assert.Contains(t, *result.Error, "is not a valid identifier")
	require.Len(t, result.Steps, 1)
	assert.Equal(t, "ok", result.Steps[0].StepID)
}

func TestInputKeyMustBeIdentifier(t *testing.T) {
	def := &calculator.Definition{
		ID:     "t",
		Name:   "t",
		Inputs: []calculator.InputSpec{{Key: "tip-percent", Label: "Tip", Type: calculator.InputNumber, Default: 10.0}},
		Steps:  []calculator.Step{{ID: "s", Expression: "1"}},
	}
	result := Execute(def, makeCtx(nil), ModeRun)
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, calcerrors.DefinitionError, result.Errors[0].Type)
	assert.Contains(t, *result.Error, `input key "tip-percent" is not a valid identifier`)
	assert.Empty(t, result.Steps)
}

func TestAbsentOutputsAreOmitted(t *testing.T) {
	def := &calculator.Definition{
		ID:      "t",
		Name:    "t",
		Steps:   []calculator.Step{{ID: "a", Expression: "2 ** 10"}},
		Outputs: []string{"a", "missing"},
	}
	result := Execute(def, makeCtx(nil), ModeRun)
	require.True(t, result.Success)
	assert.Equal(t, map[string]any{"a": 1024.0}, result.Outputs.Map())
	assert.Equal(t, 2, result.Summary.OutputsRequested)
	assert.Equal(t, 1, result.Summary.OutputsReturned)
}

func TestDryRunValidatesWithoutEvaluating(t *testing.T) {
	def := sample(t, "emi_calculator")
	result := Execute(def, makeCtx(emiInputs()), ModeDryRun)
	require.True(t, result.Success)
	require.Len(t, result.Steps, 4)
	for _, st := range result.Steps {
		assert.Equal(t, StatusDryRun, st.Status)
		assert.Nil(t, st.Result)
	}
	assert.Empty(t, result.Outputs)
	assert.Equal(t, 0, result.Summary.StepsExecuted)

	result = Execute(def, makeCtx(map[string]any{}), ModeDryRun)
	assert.False(t, result.Success)
	assert.Len(t, result.Errors, 3)
}

func TestExplainNeedsNoInputs(t *testing.T) {
	result := Execute(sample(t, "income_tax_india"), makeCtx(nil), ModeExplain)
	require.True(t, result.Success)
	require.Len(t, result.Steps, 7)
	assert.Equal(t, StatusExplain, result.Steps[1].Status)
	assert.Equal(t, "income_tax_slabs_india_old", result.Steps[1].RuleFunction)
	assert.Equal(t, 2, result.Summary.RuleSteps)
}

func TestExplainReportsStaticDefinitionErrors(t *testing.T) {
	def := &calculator.Definition{
		ID:    "t",
		Name:  "t",
		Steps: []calculator.Step{{ID: "a", Expression: "b + 1"}, {ID: "b", Expression: "1"}},
	}
	result := Execute(def, makeCtx(nil), ModeExplain)
	assert.False(t, result.Success)
	assert.Equal(t, calcerrors.DefinitionError, result.Errors[0].Type)
	assert.Equal(t, "a", result.FailedStepID)
}

func TestNilDefinitionFails(t *testing.T) {
	result := Execute(nil, nil, ModeRun)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, calcerrors.DefinitionError, result.Errors[0].Type)
}

func TestResultJSONShape(t *testing.T) {
	result := Execute(sample(t, "emi_calculator"), makeCtx(emiInputs()), ModeRun)
	data, err := json.Marshal(result)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"calculator_id", "calculator_name", "inputs", "steps", "outputs", "execution_time_ms", "success", "error"} {
		assert.Contains(t, m, key)
	}
	assert.Nil(t, m["error"])
	outputs := m["outputs"].(map[string]any)
	assert.Len(t, outputs, 3)

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, result.Outputs, back.Outputs)
}
