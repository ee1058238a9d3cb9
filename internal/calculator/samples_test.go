package calculator

import "testing"

func TestSamplesCreated(t *testing.T) {
	defs, err := Samples()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(defs))
	}
	names := map[string]bool{}
	for _, d := range defs {
		names[d.Name] = true
	}
	for _, want := range []string{"EMI Calculator", "SIP Calculator", "Income Tax Calculator (India)"} {
		if !names[want] {
			t.Errorf("missing sample %q", want)
		}
	}
}

func TestSamplesHaveRequiredFields(t *testing.T) {
	defs, err := Samples()
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range defs {
		if d.ID == "" || d.Name == "" || d.Category == "" || d.Description == "" {
			t.Errorf("sample %q is missing metadata", d.Name)
		}
		if len(d.Inputs) == 0 || len(d.Steps) == 0 || len(d.Outputs) == 0 {
			t.Errorf("sample %q is missing inputs, steps or outputs", d.Name)
		}
	}
}

func TestSampleLookup(t *testing.T) {
	d, err := Sample("emi_calculator")
	if err != nil {
		t.Fatal(err)
	}
	if d.Steps[0].ID != "monthly_rate" {
		t.Errorf("expected first step 'monthly_rate', got %q", d.Steps[0].ID)
	}
	if _, err := Sample("nope"); err == nil {
		t.Error("expected error for unknown sample")
	}
	src, err := SampleSource("sip_calculator")
	if err != nil || len(src) == 0 {
		t.Errorf("expected sample source, got %v", err)
	}
}

func TestSamplesAreIndependentCopies(t *testing.T) {
	a, _ := Sample("emi_calculator")
	a.Steps[0].Expression = "0"
	b, _ := Sample("emi_calculator")
	if b.Steps[0].Expression == "0" {
		t.Error("expected Sample to return a fresh definition")
	}
}
