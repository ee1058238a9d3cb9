package calculator

import (
	"fmt"
	"strings"

	calcerrors "github.com/stevehiehn/calcengine/internal/errors"
	"github.com/stevehiehn/calcengine/internal/expr"
	"github.com/stevehiehn/calcengine/internal/rules"
)

// Validate checks a definition for structural correctness without running it.
// It returns the first problem found as a *errors.RunError.
func Validate(d *Definition) error {
	// bound tracks every identifier visible to later steps: inputs first,
	// then step ids in declaration order.
	bound := map[string]string{}

	for i, in := range d.Inputs {
		if in.Key == "" {
			return calcerrors.NewDefinitionError("", fmt.Sprintf("input at index %d has no key", i), "")
		}
		if err := CheckInputKey(in.Key); err != nil {
			return err
		}
		if _, dup := bound[in.Key]; dup {
			return calcerrors.NewDefinitionError("", fmt.Sprintf("duplicate input key %q", in.Key), "")
		}
		if !in.Type.Valid() {
			return calcerrors.NewDefinitionError("", fmt.Sprintf("input %q has unknown type %q", in.Key, in.Type),
				"Known types: number, select, text, date, boolean")
		}
		if in.Min != nil && in.Max != nil && *in.Min > *in.Max {
			return calcerrors.NewDefinitionError("", fmt.Sprintf("input %q has min greater than max", in.Key), "")
		}
		bound[in.Key] = "input"
	}

	for i, s := range d.Steps {
		if s.ID == "" {
			return calcerrors.NewDefinitionError("", fmt.Sprintf("step at index %d has no id", i), "")
		}
		if kind, dup := bound[s.ID]; dup {
			if kind == "input" {
				return calcerrors.NewDefinitionError(s.ID, fmt.Sprintf("step id %q shadows an input key", s.ID), "")
			}
			return calcerrors.NewDefinitionError(s.ID, fmt.Sprintf("duplicate step id %q", s.ID), "")
		}

		// Exactly one of expression or rule_function must be set
		if err := CheckStep(s); err != nil {
			return err
		}

		if s.RuleFunction != "" {
			if !rules.Known(s.RuleFunction) {
				return &calcerrors.RunError{
					Type:    calcerrors.RegistryError,
					StepID:  s.ID,
					Message: fmt.Sprintf("unknown rule function %q", s.RuleFunction),
					Hint:    "Known rule functions: " + strings.Join(rules.Keys(), ", "),
				}
			}
			rule, _ := rules.Get(s.RuleFunction)
			for _, param := range rule.Params {
				if _, ok := bound[param]; !ok {
					return calcerrors.NewDefinitionError(s.ID,
						fmt.Sprintf("rule function %q needs %q, which is not bound before this step", s.RuleFunction, param), "")
				}
			}
		} else {
			names, err := expr.Identifiers(s.Expression)
			if err != nil {
				return calcerrors.Classify(s.ID, err)
			}
			for _, name := range names {
				if _, ok := bound[name]; ok || isLiteralName(name) {
					continue
				}
				if laterStep(d, i, name) {
					return calcerrors.NewDefinitionError(s.ID,
						fmt.Sprintf("step %q has forward reference to step %q", s.ID, name),
						"Steps run in declared order; move the referenced step earlier")
				}
				return calcerrors.NewDefinitionError(s.ID,
					fmt.Sprintf("step %q references unknown identifier %q", s.ID, name), "")
			}
		}

		bound[s.ID] = "step"
	}

	for _, out := range d.Outputs {
		if bound[out] != "step" {
			return calcerrors.NewDefinitionError("", fmt.Sprintf("Output '%s' references non-existent step", out), "")
		}
	}

	return nil
}

const identifierHint = "Use letters, digits and underscores, not starting with a digit, and avoid reserved words"

// CheckInputKey reports an input key that cannot be bound as an identifier.
func CheckInputKey(key string) error {
	if !expr.IsIdentifier(key) {
		return calcerrors.NewDefinitionError("", fmt.Sprintf("input key %q is not a valid identifier", key), identifierHint)
	}
	return nil
}

// CheckStep reports a step whose id is not a valid identifier, or that has
// neither or both of expression and rule_function.
func CheckStep(s Step) error {
	if !expr.IsIdentifier(s.ID) {
		return calcerrors.NewDefinitionError(s.ID, fmt.Sprintf("step id %q is not a valid identifier", s.ID), identifierHint)
	}
	hasExpr := s.Expression != ""
	hasRule := s.RuleFunction != ""
	switch {
	case hasExpr && hasRule:
		return calcerrors.NewDefinitionError(s.ID,
			fmt.Sprintf("step %q has both expression and rule_function", s.ID),
			"A step must have exactly one of: expression or rule_function")
	case !hasExpr && !hasRule:
		return calcerrors.NewDefinitionError(s.ID,
			fmt.Sprintf("step %q has no expression or rule_function", s.ID),
			"A step must have exactly one of: expression or rule_function")
	}
	return nil
}

func isLiteralName(name string) bool {
	switch name {
	case "true", "false", "True", "False":
		return true
	}
	return false
}

func laterStep(d *Definition, index int, name string) bool {
	for _, s := range d.Steps[index+1:] {
		if s.ID == name {
			return true
		}
	}
	return false
}
