package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/stevehiehn/calcengine/internal/calculator"
	"github.com/stevehiehn/calcengine/internal/engine"
)

// Store manages the execution log of a single run.
type Store struct {
	RunID   string
	BaseDir string // <root>/.calcengine/runs/<run_id>
}

// RunsDir returns the directory holding every run under root.
func RunsDir(root string) string {
	return filepath.Join(root, ".calcengine", "runs")
}

// New creates a store for a given run ID, rooted at root.
func New(runID, root string) (*Store, error) {
	if runID == "" {
		return nil, fmt.Errorf("artifact store needs a run id")
	}
	if err := checkName("run id", runID); err != nil {
		return nil, err
	}
	base := filepath.Join(RunsDir(root), runID)
	if err := os.MkdirAll(filepath.Join(base, "steps"), 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact dir: %w", err)
	}
	return &Store{RunID: runID, BaseDir: base}, nil
}

// Save writes the full execution log of result under root.
func Save(root string, def *calculator.Definition, result *engine.Result) (*Store, error) {
	s, err := New(result.RunID, root)
	if err != nil {
		return nil, err
	}
	if def != nil {
		if err := s.WriteDefinition(def); err != nil {
			return nil, err
		}
	}
	for _, st := range result.Steps {
		if err := s.WriteStep(st); err != nil {
			return nil, err
		}
	}
	if err := s.WriteResult(result); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteStep writes the trace entry of one step.
func (s *Store) WriteStep(st engine.StepTrace) error {
	if err := checkName("step id", st.StepID); err != nil {
		return err
	}
	return writeJSON(filepath.Join(s.BaseDir, "steps", st.StepID+".json"), st)
}

// WriteDefinition records the definition the run executed.
func (s *Store) WriteDefinition(def *calculator.Definition) error {
	data, err := calculator.Marshal(def)
	if err != nil {
		return fmt.Errorf("encoding definition: %w", err)
	}
	return os.WriteFile(filepath.Join(s.BaseDir, "definition.yaml"), data, 0o644)
}

// WriteResult writes the final result JSON.
func (s *Store) WriteResult(result *engine.Result) error {
	return writeJSON(filepath.Join(s.BaseDir, "result.json"), result)
}

// Load reads back the result of a saved run.
func Load(root, runID string) (*engine.Result, error) {
	if err := checkName("run id", runID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(RunsDir(root), runID, "result.json"))
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", runID, err)
	}
	var r engine.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", runID, err)
	}
	return &r, nil
}

// List returns the ids of the saved runs under root, sorted.
func List(root string) ([]string, error) {
	entries, err := os.ReadDir(RunsDir(root))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// checkName rejects names that would resolve outside their directory.
func checkName(kind, name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("invalid %s %q for artifact path", kind, name)
	}
	return nil
}
