package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/stevehiehn/calcengine/internal/calculator"
	"github.com/stevehiehn/calcengine/internal/expr"
)

var printer = message.NewPrinter(language.English)

// parseInputs converts ["key=value", ...] to a map. Values stay strings; the
// engine coerces them to each input's declared type.
func parseInputs(raw []string) (map[string]any, error) {
	m := map[string]any{}
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid input %q, expected key=value", kv)
		}
		m[key] = value
	}
	return m, nil
}

// loadInputs merges an optional JSON inputs file with --input flags. Flags win.
func loadInputs(file string, raw []string) (map[string]any, error) {
	inputs := map[string]any{}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading inputs file: %w", err)
		}
		dec := json.NewDecoder(strings.NewReader(string(data)))
		dec.UseNumber()
		if err := dec.Decode(&inputs); err != nil {
			return nil, fmt.Errorf("parsing inputs file: %w", err)
		}
	}
	flags, err := parseInputs(raw)
	if err != nil {
		return nil, err
	}
	for k, v := range flags {
		inputs[k] = v
	}
	return inputs, nil
}

// parseVars converts ["name=value", ...] to expression bindings. Numbers and
// true/false are recognized; anything else is a string.
func parseVars(raw []string) (expr.Map, error) {
	vars := expr.Map{}
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q, expected name=value", kv)
		}
		switch {
		case value == "true" || value == "True":
			vars[key] = expr.Bool(true)
		case value == "false" || value == "False":
			vars[key] = expr.Bool(false)
		default:
			if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
				vars[key] = expr.Number(f)
			} else {
				vars[key] = expr.String(value)
			}
		}
	}
	return vars, nil
}

// loadDefinition reads a definition file, or a built-in sample when arg is
// not an existing path.
func loadDefinition(arg string) (*calculator.Definition, error) {
	if _, err := os.Stat(arg); err == nil {
		return calculator.LoadFile(arg)
	}
	if d, err := calculator.Sample(arg); err == nil {
		return d, nil
	}
	return nil, fmt.Errorf("%q is neither a definition file nor a sample calculator", arg)
}

// formatValue renders a value for text output, grouping thousands.
func formatValue(v expr.Value) string {
	if f, ok := v.Num(); ok && v.Kind() == expr.KindNumber {
		return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(4)))
	}
	if s, ok := v.Str(); ok {
		return s
	}
	return v.String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
