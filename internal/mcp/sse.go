package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// sseClient represents a connected SSE client.
type sseClient struct {
	id     string
	events chan []byte
	done   chan struct{}
}

// sseHub tracks the connected SSE clients of a Server.
type sseHub struct {
	mu      sync.Mutex
	clients map[string]*sseClient
	nextID  int
}

// ServeSSE starts the MCP server with SSE transport on host:port.
func ServeSSE(host string, port int, opts Options) error {
	s := NewServer(opts)
	addr := fmt.Sprintf("%s:%d", host, port)
	s.log.Info("SSE server listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// Handler returns the HTTP handler for the SSE transport.
func (s *Server) Handler() http.Handler {
	hub := &sseHub{clients: make(map[string]*sseClient)}
	mux := http.NewServeMux()
	mux.HandleFunc("/sse", func(w http.ResponseWriter, r *http.Request) { s.handleSSE(hub, w, r) })
	mux.HandleFunc("/message", func(w http.ResponseWriter, r *http.Request) { s.handleMessage(hub, w, r) })
	mux.HandleFunc("/health", hub.handleHealth)
	return mux
}

func (h *sseHub) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.mu.Lock()
	count := len(h.clients)
	h.mu.Unlock()
	json.NewEncoder(w).Encode(map[string]any{
		"status":           "ok",
		"connectedClients": count,
	})
}

func (s *Server) handleSSE(hub *sseHub, w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	hub.mu.Lock()
	hub.nextID++
	clientID := fmt.Sprintf("client-%d", hub.nextID)
	client := &sseClient{
		id:     clientID,
		events: make(chan []byte, 64),
		done:   make(chan struct{}),
	}
	hub.clients[clientID] = client
	hub.mu.Unlock()

	s.log.Info("SSE client connected", "client", clientID)

	// The endpoint event carries the session id so responses route back.
	messageURL := fmt.Sprintf("http://%s/message?sessionId=%s", r.Host, clientID)
	fmt.Fprintf(w, "event: endpoint\ndata: %s\n\n", messageURL)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			hub.mu.Lock()
			delete(hub.clients, clientID)
			hub.mu.Unlock()
			close(client.done)
			s.log.Info("SSE client disconnected", "client", clientID)
			return
		case data := <-client.events:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) handleMessage(hub *sseHub, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(&JSONRPCResponse{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: codeParseError, Message: "Parse error"},
		})
		return
	}

	resp := s.dispatch(req)
	resp.JSONRPC = "2.0"
	resp.ID = req.ID

	respData, _ := json.Marshal(resp)

	if sessionID != "" {
		hub.mu.Lock()
		client, ok := hub.clients[sessionID]
		hub.mu.Unlock()
		if ok {
			select {
			case client.events <- respData:
			default:
				s.log.Warn("SSE client buffer full, dropping message", "client", sessionID)
			}
		}
	}

	// Responses are also returned inline for request/response clients.
	w.Header().Set("Content-Type", "application/json")
	w.Write(respData)
}
