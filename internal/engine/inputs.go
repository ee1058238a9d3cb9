package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/stevehiehn/calcengine/internal/calculator"
	calcerrors "github.com/stevehiehn/calcengine/internal/errors"
	"github.com/stevehiehn/calcengine/internal/expr"
)

// ValidateInputs checks inputs against the definition's input specs and
// returns every violation found, in input order.
func ValidateInputs(def *calculator.Definition, inputs map[string]any) []string {
	var errs []string
	for _, in := range def.Inputs {
		value, present := inputs[in.Key]
		if present && value == nil {
			present = false
		}
		if !present {
			if in.Required {
				errs = append(errs, fmt.Sprintf("Missing required input: %s (%s)", in.Label, in.Key))
			}
			continue
		}

		switch in.Type {
		case calculator.InputNumber:
			f, ok := coerceNumber(value)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s must be a number", in.Label))
				continue
			}
			if in.Min != nil && f < *in.Min {
				errs = append(errs, fmt.Sprintf("%s must be >= %s", in.Label, formatBound(*in.Min)))
			}
			if in.Max != nil && f > *in.Max {
				errs = append(errs, fmt.Sprintf("%s must be <= %s", in.Label, formatBound(*in.Max)))
			}
		case calculator.InputSelect:
			s, ok := value.(string)
			if len(in.Options) > 0 && (!ok || !slices.Contains(in.Options, s)) {
				errs = append(errs, fmt.Sprintf("%s must be one of: %s", in.Label, strings.Join(in.Options, ", ")))
			}
		case calculator.InputBoolean:
			if _, ok := coerceBool(value); !ok {
				errs = append(errs, fmt.Sprintf("%s must be a boolean", in.Label))
			}
		}
	}
	return errs
}

// seed binds each input, or its default when absent, into a fresh Context.
// Inputs that are absent and have no default stay unbound.
func seed(def *calculator.Definition, inputs map[string]any) (*Context, error) {
	ctx := NewContext()
	for _, in := range def.Inputs {
		if err := calculator.CheckInputKey(in.Key); err != nil {
			return nil, err
		}
		raw, ok := inputs[in.Key]
		if !ok || raw == nil {
			raw = in.Default
		}
		if raw == nil {
			continue
		}
		v, err := coerceInput(in, raw)
		if err != nil {
			return nil, calcerrors.NewValidationError(err.Error(), "")
		}
		if err := ctx.Bind(in.Key, v); err != nil {
			return nil, calcerrors.NewDefinitionError("", err.Error(), "Input keys must be unique")
		}
	}
	return ctx, nil
}

func coerceInput(in calculator.InputSpec, raw any) (expr.Value, error) {
	switch in.Type {
	case calculator.InputNumber:
		f, ok := coerceNumber(raw)
		if !ok {
			return expr.Value{}, fmt.Errorf("%s must be a number", in.Label)
		}
		return expr.Number(f), nil
	case calculator.InputBoolean:
		b, ok := coerceBool(raw)
		if !ok {
			return expr.Value{}, fmt.Errorf("%s must be a boolean", in.Label)
		}
		return expr.Bool(b), nil
	default:
		if s, ok := raw.(string); ok {
			return expr.String(s), nil
		}
		return expr.String(fmt.Sprint(raw)), nil
	}
}

func coerceNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case bool:
		if t {
			f = 1
		}
	case string:
		n, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), "_", ""), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func coerceBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
		return false, false
	default:
		if f, ok := coerceNumber(v); ok {
			return f != 0, true
		}
		return false, false
	}
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
