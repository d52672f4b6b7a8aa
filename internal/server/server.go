package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ironsheep/image-buffer-mcp/internal/imaging"
)

// Server handles MCP protocol communication
type Server struct {
	registry *Registry
	codec    imaging.Codec
	logger   *slog.Logger
	version  string

	// out is the encoder of the running Serve loop; nil outside Serve.
	out *json.Encoder
}

// Options configures a Server. Zero values select defaults.
type Options struct {
	// Codec decodes and encodes every image the server opens.
	// Nil selects imaging.DefaultCodec.
	Codec imaging.Codec

	// Logger receives protocol and tool diagnostics. Nil selects slog.Default.
	Logger *slog.Logger

	// Version is reported in the initialize response.
	Version string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID).
// The server sends notifications/message when a file-backed image cannot
// be loaded.
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a new MCP server instance with default options
func New() *Server {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a new MCP server instance
func NewWithOptions(opts Options) *Server {
	s := &Server{
		registry: NewRegistry(),
		codec:    opts.Codec,
		logger:   opts.Logger,
		version:  opts.Version,
	}
	if s.codec == nil {
		s.codec = imaging.DefaultCodec()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.version == "" {
		s.version = "0.1.0"
	}
	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve processes newline-delimited JSON-RPC requests from r and writes
// responses to w until r is exhausted. All handles are released on return.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	defer s.registry.Clear()

	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)
	s.out = encoder
	defer func() { s.out = nil }()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// notify sends a notification to the client of the running Serve loop.
// Outside Serve it is a no-op.
func (s *Server) notify(method string, params interface{}) {
	if s.out == nil {
		return
	}
	if err := s.out.Encode(&MCPNotification{JSONRPC: "2.0", Method: method, Params: params}); err != nil {
		s.logger.Error("failed to encode notification", "method", method, "error", err)
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "image-buffer-mcp",
				"version": s.version,
			},
		},
	}
}
