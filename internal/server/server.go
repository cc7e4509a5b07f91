package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/framescan/framescan/internal/config"
	"github.com/framescan/framescan/internal/detect"
	"github.com/framescan/framescan/internal/imaging"
	"github.com/framescan/framescan/internal/rectify"
	"github.com/framescan/framescan/internal/score"
	"github.com/framescan/framescan/internal/stream"
)

// Server handles MCP protocol communication and owns one engine instance.
type Server struct {
	cfg       config.Config
	log       logrus.FieldLogger
	cache     *imaging.ImageCache
	scorer    *score.Scorer
	selector  *detect.Selector
	rectifier *rectify.Rectifier
	monitor   *stream.Monitor
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

// New creates a server with a freshly constructed engine. A nil logger
// discards (useful in tests); production callers pass the process logger.
func New(cfg config.Config, log logrus.FieldLogger) *Server {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	scorer := score.NewScorer(cfg.Detection.Weights)
	selector := detect.NewSelector(
		detect.BuildStrategies(cfg.Detection.Strategies, scorer),
		scorer,
		cfg.Detection.Thresholds,
		log,
	)

	return &Server{
		cfg:       cfg,
		log:       log,
		cache:     imaging.NewImageCache(),
		scorer:    scorer,
		selector:  selector,
		rectifier: rectify.New(log),
		monitor:   stream.NewMonitor(selector, cfg.Stream.Monitor(), log),
	}
}

// Run starts the MCP server, reading from stdin and writing to stdout.
func (s *Server) Run() error {
	return s.serve(os.Stdin, os.Stdout)
}

// serve is the transport-agnostic request loop, one JSON-RPC message per line.
func (s *Server) serve(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WithError(err).Warn("failed to parse request")
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.WithError(err).Warn("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
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
				"name":    "framescan",
				"version": "0.1.0",
			},
		},
	}
}
