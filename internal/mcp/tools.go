package mcp

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/stevehiehn/calcengine/internal/artifact"
	"github.com/stevehiehn/calcengine/internal/calculator"
	"github.com/stevehiehn/calcengine/internal/engine"
	"github.com/stevehiehn/calcengine/internal/expr"
	"github.com/stevehiehn/calcengine/internal/rules"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "calcengine"
	serverVersion   = "0.3.0"
)

var definitionProps = map[string]any{
	"file":   map[string]any{"type": "string", "description": "Path to a calculator definition (YAML or JSON)"},
	"sample": map[string]any{"type": "string", "description": "Id of a built-in sample calculator"},
	"yaml":   map[string]any{"type": "string", "description": "Inline calculator definition"},
}

func definitionSchema(extra map[string]any) map[string]any {
	props := map[string]any{}
	for k, v := range definitionProps {
		props[k] = v
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]any{"type": "object", "properties": props}
}

var inputsProp = map[string]any{"type": "object", "description": "Input values keyed by input key"}

var builtinTools = []*sdk.Tool{
	{Name: "calculator.validate", Description: "Statically check a calculator definition", InputSchema: definitionSchema(nil)},
	{Name: "calculator.explain", Description: "List a calculator's steps without evaluating them", InputSchema: definitionSchema(nil)},
	{Name: "calculator.dry_run", Description: "Validate inputs against a calculator without evaluating it",
		InputSchema: definitionSchema(map[string]any{"inputs": inputsProp})},
	{Name: "calculator.run", Description: "Execute a calculator and return outputs with the full step trace",
		InputSchema: definitionSchema(map[string]any{"inputs": inputsProp, "save": map[string]any{"type": "boolean"}})},
	{Name: "calculator.rules", Description: "List the built-in rule functions", InputSchema: map[string]any{
		"type": "object", "properties": map[string]any{}}},
	{Name: "calculator.samples", Description: "List the built-in sample calculators", InputSchema: map[string]any{
		"type": "object", "properties": map[string]any{}}},
	{Name: "expression.evaluate", Description: "Evaluate a single sandboxed expression", InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{"type": "string"},
			"variables":  map[string]any{"type": "object"},
		},
		"required": []string{"expression"},
	}},
}

// definitionTools loads every definition in the definitions directory. Files
// that fail to load are logged and skipped.
func (s *Server) definitionTools() []*calculator.Definition {
	if s.opts.DefinitionsDir == "" {
		return nil
	}
	defs, err := calculator.LoadDir(s.opts.DefinitionsDir)
	if err != nil {
		s.log.Warn("loading definitions", "dir", s.opts.DefinitionsDir, "error", err)
	}
	return defs
}

// definitionToTool converts a calculator definition into an MCP tool whose
// arguments are the calculator's inputs.
func definitionToTool(d *calculator.Definition) *sdk.Tool {
	properties := map[string]any{}
	var required []string

	for _, in := range d.Inputs {
		prop := map[string]any{}
		switch in.Type {
		case calculator.InputNumber:
			prop["type"] = "number"
			if in.Min != nil {
				prop["minimum"] = *in.Min
			}
			if in.Max != nil {
				prop["maximum"] = *in.Max
			}
		case calculator.InputBoolean:
			prop["type"] = "boolean"
		case calculator.InputSelect:
			prop["type"] = "string"
			if len(in.Options) > 0 {
				prop["enum"] = in.Options
			}
		case calculator.InputDate:
			prop["type"] = "string"
			prop["format"] = "date"
		default:
			prop["type"] = "string"
		}
		desc := in.Label
		if in.HelpText != "" {
			desc += ". " + in.HelpText
		}
		prop["description"] = desc
		if in.Default != nil {
			prop["default"] = in.Default
		}
		properties[in.Key] = prop
		if in.Required {
			required = append(required, in.Key)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	desc := d.Description
	if desc == "" {
		desc = "Run the " + d.Name
	}
	return &sdk.Tool{
		Name:        d.ID,
		Title:       d.Name,
		Description: desc,
		InputSchema: schema,
	}
}

func (s *Server) dispatch(req JSONRPCRequest) *JSONRPCResponse {
	s.log.Debug("request", "method", req.Method)
	switch req.Method {
	case "initialize":
		return &JSONRPCResponse{Result: map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": serverName, "version": serverVersion},
		}}
	case "tools/list":
		tools := append([]*sdk.Tool{}, builtinTools...)
		for _, d := range s.definitionTools() {
			tools = append(tools, definitionToTool(d))
		}
		return &JSONRPCResponse{Result: map[string]any{"tools": tools}}
	case "tools/call":
		return s.handleToolCall(req.Params)
	case "notifications/initialized", "ping":
		return &JSONRPCResponse{Result: map[string]any{}}
	default:
		return &JSONRPCResponse{Error: &RPCError{Code: codeMethodNotFound, Message: "Method not found"}}
	}
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type toolArgs struct {
	File       string         `json:"file"`
	Sample     string         `json:"sample"`
	YAML       string         `json:"yaml"`
	Inputs     map[string]any `json:"inputs"`
	Save       bool           `json:"save"`
	Expression string         `json:"expression"`
	Variables  map[string]any `json:"variables"`
}

func (s *Server) handleToolCall(params json.RawMessage) *JSONRPCResponse {
	var tc toolCallParams
	if err := json.Unmarshal(params, &tc); err != nil || tc.Name == "" {
		return &JSONRPCResponse{Error: &RPCError{Code: codeInvalidParams, Message: "Invalid params"}}
	}

	s.log.Info("tool call", "tool", tc.Name)
	if !isBuiltinTool(tc.Name) {
		// Definition tools take the calculator inputs as their arguments.
		return s.toolExecuteDefinition(tc.Name, tc.Arguments)
	}

	var args toolArgs
	if len(tc.Arguments) > 0 {
		if err := json.Unmarshal(tc.Arguments, &args); err != nil {
			return &JSONRPCResponse{Error: &RPCError{Code: codeInvalidParams, Message: "Invalid arguments: " + err.Error()}}
		}
	}

	switch tc.Name {
	case "calculator.validate":
		return s.toolValidate(args)
	case "calculator.explain":
		return s.toolExecute(args, engine.ModeExplain)
	case "calculator.dry_run":
		return s.toolExecute(args, engine.ModeDryRun)
	case "calculator.run":
		return s.toolExecute(args, engine.ModeRun)
	case "calculator.rules":
		return jsonContent(rules.Catalog(), false)
	case "calculator.samples":
		return s.toolSamples()
	case "expression.evaluate":
		return toolEvaluate(args)
	default:
		return s.toolExecuteDefinition(tc.Name, tc.Arguments)
	}
}

func isBuiltinTool(name string) bool {
	for _, t := range builtinTools {
		if t.Name == name {
			return true
		}
	}
	return false
}

// loadDefinition resolves the definition named by file, sample or inline yaml.
func (s *Server) loadDefinition(args toolArgs) (*calculator.Definition, error) {
	switch {
	case args.YAML != "":
		return calculator.Load([]byte(args.YAML))
	case args.Sample != "":
		return calculator.Sample(args.Sample)
	case args.File != "":
		return calculator.LoadFile(resolvePath(args.File, s.opts.WorkDir))
	default:
		return nil, fmt.Errorf("one of file, sample or yaml is required")
	}
}

func (s *Server) toolValidate(args toolArgs) *JSONRPCResponse {
	d, err := s.loadDefinition(args)
	if err != nil {
		return textContent(err.Error(), true)
	}
	if err := calculator.Validate(d); err != nil {
		return textContent("Validation failed: "+err.Error(), true)
	}
	return textContent(fmt.Sprintf("Calculator %q is valid.", d.ID), false)
}

func (s *Server) toolExecute(args toolArgs, mode engine.Mode) *JSONRPCResponse {
	d, err := s.loadDefinition(args)
	if err != nil {
		return textContent(err.Error(), true)
	}
	return s.execute(d, args.Inputs, mode, args.Save)
}

func (s *Server) execute(d *calculator.Definition, inputs map[string]any, mode engine.Mode, save bool) *JSONRPCResponse {
	rc := engine.NewRunContext(inputs, s.log)
	result := engine.Execute(d, rc, mode)
	if mode == engine.ModeRun && (save || s.opts.SaveRuns) {
		if _, err := artifact.Save(s.opts.ArtifactsDir, d, result); err != nil {
			s.log.Warn("saving run", "run_id", result.RunID, "error", err)
		}
	}
	return jsonContent(result, !result.Success)
}

type sampleInfo struct {
	ID          string   `json:"calculator_id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
}

func (s *Server) toolSamples() *JSONRPCResponse {
	defs, err := calculator.Samples()
	if err != nil {
		return textContent(err.Error(), true)
	}
	infos := make([]sampleInfo, 0, len(defs))
	for _, d := range defs {
		info := sampleInfo{ID: d.ID, Name: d.Name, Category: d.Category, Description: d.Description, Outputs: d.Outputs}
		for _, in := range d.Inputs {
			info.Inputs = append(info.Inputs, in.Key)
		}
		infos = append(infos, info)
	}
	return jsonContent(infos, false)
}

func toolEvaluate(args toolArgs) *JSONRPCResponse {
	if strings.TrimSpace(args.Expression) == "" {
		return textContent("expression is required", true)
	}
	vars := expr.Map{}
	for k, raw := range args.Variables {
		v, err := expr.FromInterface(raw)
		if err != nil {
			return textContent(fmt.Sprintf("variable %q: %v", k, err), true)
		}
		vars[k] = v
	}
	v, err := expr.Evaluate(args.Expression, vars)
	if err != nil {
		return textContent(err.Error(), true)
	}
	return jsonContent(map[string]any{"expression": args.Expression, "result": v}, false)
}

// toolExecuteDefinition runs the definition in the definitions directory
// whose id matches name. The arguments are the calculator inputs.
func (s *Server) toolExecuteDefinition(name string, rawArgs json.RawMessage) *JSONRPCResponse {
	var def *calculator.Definition
	for _, d := range s.definitionTools() {
		if d.ID == name {
			def = d
			break
		}
	}
	if def == nil {
		return &JSONRPCResponse{Error: &RPCError{Code: codeInvalidParams, Message: "Unknown tool: " + name}}
	}

	inputs := map[string]any{}
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &inputs); err != nil {
			return &JSONRPCResponse{Error: &RPCError{Code: codeInvalidParams, Message: "Invalid arguments: " + err.Error()}}
		}
	}
	return s.execute(def, inputs, engine.ModeRun, false)
}

func textContent(text string, isError bool) *JSONRPCResponse {
	result := map[string]any{"content": []map[string]any{{"type": "text", "text": text}}}
	if isError {
		result["isError"] = true
	}
	return &JSONRPCResponse{Result: result}
}

func jsonContent(v any, isError bool) *JSONRPCResponse {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return textContent(err.Error(), true)
	}
	return textContent(string(data), isError)
}

func resolvePath(file, workDir string) string {
	if filepath.IsAbs(file) || workDir == "" {
		return file
	}
	return filepath.Join(workDir, file)
}
