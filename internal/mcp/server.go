package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/stevehiehn/calcengine/internal/logging"
)

// JSONRPCRequest is a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse is a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// Options configures a Server.
type Options struct {
	WorkDir        string // base for relative definition paths
	DefinitionsDir string // each definition here is exposed as its own tool
	ArtifactsDir   string // root of saved execution logs
	SaveRuns       bool
	Logger         *slog.Logger
}

// Server answers MCP requests over stdio or SSE.
type Server struct {
	opts Options
	log  *slog.Logger
}

// NewServer returns a server for opts.
func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	if opts.ArtifactsDir == "" {
		opts.ArtifactsDir = opts.WorkDir
	}
	return &Server{opts: opts, log: log.With("component", "mcp")}
}

// Serve runs the MCP stdio server.
func Serve(opts Options) error {
	return NewServer(opts).ServeIO(os.Stdin, os.Stdout)
}

// ServeIO reads one JSON-RPC request per line from in and writes one
// response per line to out. Notifications get no response.
func (s *Server) ServeIO(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("unparseable request", "error", err)
			writeResponse(out, &JSONRPCResponse{
				JSONRPC: "2.0",
				Error:   &RPCError{Code: codeParseError, Message: "Parse error"},
			})
			continue
		}
		if req.ID == nil && req.Method == "notifications/initialized" {
			continue
		}

		resp := s.dispatch(req)
		resp.JSONRPC = "2.0"
		resp.ID = req.ID
		writeResponse(out, resp)
	}
	return scanner.Err()
}

func writeResponse(w io.Writer, resp *JSONRPCResponse) {
	data, _ := json.Marshal(resp)
	fmt.Fprintf(w, "%s\n", data)
}
