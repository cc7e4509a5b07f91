// Package server implements the MCP (Model Context Protocol) server that
// exposes the boundary-detection engine to external collaborators.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load an image and get its dimensions
//   - detect_boundary: Find the print boundary with confidence and metrics
//   - score_quadrilateral: Score an explicit corner set against an image
//   - rectify_image: Perspective-correct a region (detected or manual corners)
//   - guide_state: Evaluate both orientation guides against one frame
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images keyed by path, so
// a detect call followed by a rectify call on the same file decodes it once.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(config.Default(), logger)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
