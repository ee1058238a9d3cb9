package calculator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses a calculator definition file.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition file: %w", err)
	}
	return Load(data)
}

// Load parses definition bytes. JSON documents are accepted as YAML.
func Load(data []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if d.Name == "" {
		return nil, fmt.Errorf("calculator has no name")
	}
	if len(d.Steps) == 0 {
		return nil, fmt.Errorf("calculator has no steps")
	}
	if d.ID == "" {
		d.ID = slug(d.Name)
	}
	return &d, nil
}

// LoadDir loads every definition file in dir, ordered by file name. Files
// that fail to parse are reported together with their names.
func LoadDir(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading definitions dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var (
		defs []*Definition
		errs []string
	)
	for _, name := range names {
		d, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		defs = append(defs, d)
	}
	if len(errs) > 0 {
		return defs, fmt.Errorf("loading definitions: %s", strings.Join(errs, "; "))
	}
	return defs, nil
}

// Marshal renders d as YAML.
func Marshal(d *Definition) ([]byte, error) {
	return yaml.Marshal(d)
}

func slug(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
