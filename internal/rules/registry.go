// Package rules is the catalog of pre-built financial formulas that a
// calculator step can invoke by key instead of giving an expression.
package rules

import (
	"fmt"
	"sort"

	"github.com/stevehiehn/calcengine/internal/expr"
	"github.com/stevehiehn/calcengine/internal/mathx"
)

// Rule is a pure formula over a fixed set of named numeric parameters.
type Rule struct {
	Key         string   `json:"key"`
	Description string   `json:"description"`
	Params      []string `json:"params"`

	fn func(p params) float64
}

// params holds the extracted parameter values, keyed by name.
type params map[string]float64

var registry = map[string]Rule{}

func register(r Rule) {
	registry[r.Key] = r
}

func init() {
	register(Rule{
		Key:         "income_tax_slabs_india_old",
		Description: "Indian income tax, old regime (FY 2024-25), on taxable income",
		Params:      []string{"taxable_income"},
		fn:          incomeTaxOld,
	})
	register(Rule{
		Key:         "income_tax_slabs_india_new",
		Description: "Indian income tax, new regime (FY 2024-25), after a 75000 standard deduction",
		Params:      []string{"taxable_income"},
		fn:          incomeTaxNew,
	})
	register(Rule{
		Key:         "emi_calculator",
		Description: "Equated monthly instalment for an amortizing loan",
		Params:      []string{"principal", "annual_rate", "tenure_months"},
		fn:          emi,
	})
	register(Rule{
		Key:         "sip_future_value",
		Description: "Future value of a monthly systematic investment plan",
		Params:      []string{"monthly_investment", "annual_rate", "years"},
		fn:          sipFutureValue,
	})
	register(Rule{
		Key:         "cagr_calculator",
		Description: "Compound annual growth rate, as a percentage",
		Params:      []string{"initial_value", "final_value", "years"},
		fn:          cagr,
	})
	register(Rule{
		Key:         "lumpsum_future_value",
		Description: "Future value of a one-time investment compounded yearly",
		Params:      []string{"principal", "annual_rate", "years"},
		fn:          lumpsumFutureValue,
	})
}

// Get returns a rule by key.
func Get(key string) (Rule, error) {
	r, ok := registry[key]
	if !ok {
		return Rule{}, &Error{Key: key, Message: fmt.Sprintf("unknown rule function %q", key)}
	}
	return r, nil
}

// Known returns true if the key is registered.
func Known(key string) bool {
	_, ok := registry[key]
	return ok
}

// Catalog returns every registered rule sorted by key.
func Catalog() []Rule {
	out := make([]Rule, 0, len(registry))
	for _, r := range registry {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Keys returns the registered keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Invoke runs the rule registered under key. Each declared parameter is read
// from b by name; other bindings are ignored.
func Invoke(key string, b expr.Bindings) (expr.Value, error) {
	r, err := Get(key)
	if err != nil {
		return expr.Value{}, err
	}
	return r.Invoke(b)
}

// Invoke runs r against b.
func (r Rule) Invoke(b expr.Bindings) (expr.Value, error) {
	p := make(params, len(r.Params))
	for _, name := range r.Params {
		v, ok := b.Lookup(name)
		if !ok {
			return expr.Value{}, &Error{Key: r.Key, Message: fmt.Sprintf("missing parameter %q", name)}
		}
		f, ok := v.Num()
		if !ok {
			return expr.Value{}, &Error{Key: r.Key, Message: fmt.Sprintf("parameter %q must be a number, got %s", name, v.Kind())}
		}
		p[name] = f
	}
	out := r.fn(p)
	if !mathx.Finite(out) {
		return expr.Value{}, &Error{Key: r.Key, Message: "result is not a finite number"}
	}
	return expr.Number(out), nil
}
