package calculator

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// InputType is the declared type of a calculator input.
type InputType string

const (
	InputNumber  InputType = "number"
	InputSelect  InputType = "select"
	InputText    InputType = "text"
	InputDate    InputType = "date"
	InputBoolean InputType = "boolean"
)

// Valid reports whether t is one of the known input types.
func (t InputType) Valid() bool {
	switch t {
	case InputNumber, InputSelect, InputText, InputDate, InputBoolean:
		return true
	}
	return false
}

// Definition is the top-level calculator structure.
type Definition struct {
	ID          string      `yaml:"calculator_id" json:"calculator_id"`
	Name        string      `yaml:"name" json:"name"`
	Category    string      `yaml:"category,omitempty" json:"category,omitempty"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Inputs      []InputSpec `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Steps       []Step      `yaml:"steps" json:"steps"`
	Outputs     []string    `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	HelpText    string      `yaml:"help_text,omitempty" json:"help_text,omitempty"`
	Tags        []string    `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// InputSpec defines a calculator input. Inputs are required and numeric
// unless the definition says otherwise.
type InputSpec struct {
	Key      string    `yaml:"key" json:"key"`
	Label    string    `yaml:"label" json:"label"`
	Type     InputType `yaml:"type" json:"type"`
	Required bool      `yaml:"required" json:"required"`
	Min      *float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max      *float64  `yaml:"max,omitempty" json:"max,omitempty"`
	Options  []string  `yaml:"options,omitempty" json:"options,omitempty"`
	Default  any       `yaml:"default,omitempty" json:"default,omitempty"`
	HelpText string    `yaml:"help_text,omitempty" json:"help_text,omitempty"`
}

// Step defines a single computation.
// Exactly one of Expression or RuleFunction must be set.
type Step struct {
	ID           string `yaml:"id" json:"id"`
	Expression   string `yaml:"expression,omitempty" json:"expression,omitempty"`
	RuleFunction string `yaml:"rule_function,omitempty" json:"rule_function,omitempty"`
	Description  string `yaml:"description,omitempty" json:"description,omitempty"`
}

type rawInputSpec InputSpec

func defaultInputSpec() rawInputSpec {
	return rawInputSpec{Type: InputNumber, Required: true}
}

// UnmarshalYAML applies the input defaults before decoding.
func (s *InputSpec) UnmarshalYAML(value *yaml.Node) error {
	raw := defaultInputSpec()
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*s = InputSpec(raw)
	return nil
}

// UnmarshalJSON applies the input defaults before decoding.
func (s *InputSpec) UnmarshalJSON(data []byte) error {
	raw := defaultInputSpec()
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = InputSpec(raw)
	return nil
}

// Input returns the spec for key, if any.
func (d *Definition) Input(key string) (InputSpec, bool) {
	for _, in := range d.Inputs {
		if in.Key == key {
			return in, true
		}
	}
	return InputSpec{}, false
}
