package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// cornerSchema describes one {x, y} corner in tool input schemas.
func cornerSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "number"},
			"y": map[string]interface{}{"type": "number"},
		},
		"required":    []string{"x", "y"},
		"description": description,
	}
}

// quadProperties enumerates the four named corners of a quadrilateral.
func quadProperties() map[string]interface{} {
	return map[string]interface{}{
		"top_left":     cornerSchema("Top-left corner"),
		"top_right":    cornerSchema("Top-right corner"),
		"bottom_right": cornerSchema("Bottom-right corner"),
		"bottom_left":  cornerSchema("Bottom-left corner"),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions. Caches the decoded image for subsequent operations on the same path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "detect_boundary",
			Description: "Detect the rectangular boundary of a photo print in the image. Returns the corner quadrilateral, overall confidence, the four sub-metrics, and which strategy produced the result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"orientation": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"portrait", "landscape", "none"},
						"description": "Expected print orientation (default none: no filter)",
						"default":     "none",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "score_quadrilateral",
			Description: "Score an explicit corner set against an image's dimensions. Returns the overall confidence and the four sub-metrics without running any detection.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"quadrilateral": map[string]interface{}{
						"type":        "object",
						"properties":  quadProperties(),
						"required":    []string{"top_left", "top_right", "bottom_right", "bottom_left"},
						"description": "Corner set to score",
					},
				},
				"required": []string{"path", "quadrilateral"},
			},
		},
		{
			Name:        "rectify_image",
			Description: "Perspective-correct the print region into an upright rectangle, returned as base64-encoded PNG. Detects the boundary automatically unless an explicit corner set is given (e.g. after the user adjusted the corners by hand).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"quadrilateral": map[string]interface{}{
						"type":        "object",
						"properties":  quadProperties(),
						"description": "Optional explicit corners; skips detection when present",
					},
					"output_width": map[string]interface{}{
						"type":        "integer",
						"description": "Output width in pixels (default: derived from the quadrilateral)",
					},
					"output_height": map[string]interface{}{
						"type":        "integer",
						"description": "Output height in pixels (default: derived from the quadrilateral)",
					},
					"quality": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"best", "fast"},
						"description": "Resampling quality (default from config)",
					},
					"timeout_ms": map[string]interface{}{
						"type":        "integer",
						"description": "Per-call time limit in milliseconds (default from config)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "guide_state",
			Description: "Evaluate one frame against both orientation guides. Returns per-orientation detection state and whether each guide should be hidden because the other orientation clearly wins.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the frame image file",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
