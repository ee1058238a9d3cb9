package calculator

import (
	"embed"
	"fmt"
	"path"
)

//go:embed samples/*.yaml
var sampleFS embed.FS

// sampleFiles fixes the order Samples returns.
var sampleFiles = []string{
	"emi_calculator.yaml",
	"sip_calculator.yaml",
	"income_tax_india.yaml",
}

// Samples returns the built-in example calculators: EMI, SIP and Indian
// income tax. Each call returns fresh copies.
func Samples() ([]*Definition, error) {
	defs := make([]*Definition, 0, len(sampleFiles))
	for _, name := range sampleFiles {
		data, err := sampleFS.ReadFile(path.Join("samples", name))
		if err != nil {
			return nil, fmt.Errorf("reading sample %s: %w", name, err)
		}
		d, err := Load(data)
		if err != nil {
			return nil, fmt.Errorf("loading sample %s: %w", name, err)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// Sample returns the built-in calculator with the given id.
func Sample(id string) (*Definition, error) {
	defs, err := Samples()
	if err != nil {
		return nil, err
	}
	for _, d := range defs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no sample calculator %q", id)
}

// SampleSource returns the raw YAML of a built-in calculator.
func SampleSource(id string) ([]byte, error) {
	return sampleFS.ReadFile(path.Join("samples", id+".yaml"))
}
