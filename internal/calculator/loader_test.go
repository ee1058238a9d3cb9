package calculator

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMinimalDefinition(t *testing.T) {
	yaml := []byte(`
name: minimal
steps:
  - id: s1
    expression: 1 + 1
`)
	d, err := Load(yaml)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "minimal" {
		t.Errorf("expected name 'minimal', got %q", d.Name)
	}
	if d.ID != "minimal" {
		t.Errorf("expected id derived from name, got %q", d.ID)
	}
	if len(d.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(d.Steps))
	}
	if d.Steps[0].Expression != "1 + 1" {
		t.Errorf("expected expression '1 + 1', got %q", d.Steps[0].Expression)
	}
}

func TestLoadFullFeaturedDefinition(t *testing.T) {
	yaml := []byte(`
calculator_id: tax
name: Tax
category: Tax
description: A full calculator
inputs:
  - key: income
    label: Income
    min: 0
  - key: regime
    label: Regime
    type: select
    options: [old, new]
    required: false
    default: new
steps:
  - id: tax
    rule_function: income_tax_slabs_india_old
    description: old regime tax
outputs: [tax]
`)
	d, err := Load(yaml)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID != "tax" {
		t.Errorf("expected id 'tax', got %q", d.ID)
	}
	if len(d.Inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(d.Inputs))
	}
	income := d.Inputs[0]
	if income.Type != InputNumber {
		t.Errorf("expected default type number, got %q", income.Type)
	}
	if !income.Required {
		t.Error("expected inputs to be required by default")
	}
	if income.Min == nil || *income.Min != 0 {
		t.Errorf("expected min 0, got %v", income.Min)
	}
	regime, ok := d.Input("regime")
	if !ok {
		t.Fatal("expected regime input")
	}
	if regime.Required {
		t.Error("expected regime to be optional")
	}
	if regime.Default != "new" {
		t.Errorf("expected default 'new', got %v", regime.Default)
	}
	if len(regime.Options) != 2 {
		t.Errorf("expected 2 options, got %v", regime.Options)
	}
	if d.Steps[0].RuleFunction != "income_tax_slabs_india_old" {
		t.Errorf("unexpected rule function %q", d.Steps[0].RuleFunction)
	}
}

func TestLoadAcceptsJSON(t *testing.T) {
	data := []byte(`{"name": "json calc", "inputs": [{"key": "x", "label": "X"}],
		"steps": [{"id": "double", "expression": "x * 2"}], "outputs": ["double"]}`)
	d, err := Load(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID != "json_calc" {
		t.Errorf("expected id 'json_calc', got %q", d.ID)
	}
	if !d.Inputs[0].Required || d.Inputs[0].Type != InputNumber {
		t.Errorf("expected input defaults to apply, got %+v", d.Inputs[0])
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	_, err := Load([]byte(`:::not valid yaml[[[`))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadRejectsEmptyDefinition(t *testing.T) {
	_, err := Load([]byte(`
name: empty
steps: []
`))
	if err == nil {
		t.Fatal("expected error for definition without steps")
	}
}

func TestLoadRejectsDefinitionWithNoName(t *testing.T) {
	_, err := Load([]byte(`
steps:
  - id: s1
    expression: "1"
`))
	if err == nil {
		t.Fatal("expected error for definition with no name")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("b.yaml", "name: second\nsteps:\n  - id: s\n    expression: \"2\"\n")
	write("a.yml", "name: first\nsteps:\n  - id: s\n    expression: \"1\"\n")
	write("notes.txt", "ignored")

	defs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Name != "first" || defs[1].Name != "second" {
		t.Errorf("expected file-name order, got %q, %q", defs[0].Name, defs[1].Name)
	}

	write("c.yaml", "name: broken\nsteps: []\n")
	defs, err = LoadDir(dir)
	if err == nil {
		t.Fatal("expected error for broken definition")
	}
	if len(defs) != 2 {
		t.Errorf("expected valid definitions to still load, got %d", len(defs))
	}
}

func TestMarshalRoundTripsThroughLoad(t *testing.T) {
	d, err := Sample("income_tax_india")
	if err != nil {
		t.Fatal(err)
	}
	data, err := Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Load(data)
	if err != nil {
		t.Fatalf("reloading marshalled definition: %v", err)
	}
	if back.ID != d.ID || len(back.Steps) != len(d.Steps) || len(back.Inputs) != len(d.Inputs) {
		t.Errorf("round trip changed the definition: %+v", back)
	}
	if back.Inputs[1].Required {
		t.Error("expected optional input to stay optional")
	}
}
