package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/stevehiehn/calcengine/internal/expr"
	"github.com/stevehiehn/calcengine/internal/logging"
)

// RunContext holds the caller-supplied state for one calculator execution.
type RunContext struct {
	RunID  string
	Inputs map[string]any
	Logger *slog.Logger
}

// NewRunContext creates a new execution context with a fresh run id.
func NewRunContext(inputs map[string]any, logger *slog.Logger) *RunContext {
	if inputs == nil {
		inputs = map[string]any{}
	}
	return &RunContext{
		RunID:  uuid.New().String(),
		Inputs: inputs,
		Logger: logger,
	}
}

func (rc *RunContext) logger() *slog.Logger {
	if rc.Logger == nil {
		return logging.Discard()
	}
	return rc.Logger
}

// Context is the binding context of one execution: identifiers bound to
// values in the order they were bound. A name can be bound only once.
type Context struct {
	names  []string
	values map[string]expr.Value
}

// NewContext returns an empty binding context.
func NewContext() *Context {
	return &Context{values: map[string]expr.Value{}}
}

// Bind binds name to v. Rebinding an existing name is an error.
func (c *Context) Bind(name string, v expr.Value) error {
	if _, ok := c.values[name]; ok {
		return fmt.Errorf("identifier %q is already bound", name)
	}
	c.names = append(c.names, name)
	c.values[name] = v
	return nil
}

// Lookup implements expr.Bindings.
func (c *Context) Lookup(name string) (expr.Value, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Len returns the number of bindings.
func (c *Context) Len() int { return len(c.names) }

// Snapshot returns an independent copy of the current bindings.
func (c *Context) Snapshot() Snapshot {
	s := make(Snapshot, len(c.names))
	for i, name := range c.names {
		s[i] = Binding{Name: name, Value: c.values[name]}
	}
	return s
}

// Binding is one identifier and its value.
type Binding struct {
	Name  string
	Value expr.Value
}

// Snapshot is an ordered copy of a Context. It encodes as a JSON object whose
// keys appear in binding order.
type Snapshot []Binding

// Get returns the value bound to name in the snapshot.
func (s Snapshot) Get(name string) (expr.Value, bool) {
	for _, b := range s {
		if b.Name == name {
			return b.Value, true
		}
	}
	return expr.Value{}, false
}

// Map returns the snapshot as plain Go values.
func (s Snapshot) Map() map[string]any {
	m := make(map[string]any, len(s))
	for _, b := range s {
		m[b.Name] = b.Value.Interface()
	}
	return m
}

// MarshalJSON implements json.Marshaler.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b.Name)
		if err != nil {
			return nil, err
		}
		val, err := b.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of scalars, preserving key order.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("snapshot must be a JSON object")
	}
	out := Snapshot{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v expr.Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("binding %q: %w", name, err)
		}
		out = append(out, Binding{Name: name, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}
