package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/framescan/framescan/internal/detect"
	"github.com/framescan/framescan/internal/geometry"
	"github.com/framescan/framescan/internal/imaging"
	"github.com/framescan/framescan/internal/rectify"
	"github.com/framescan/framescan/internal/score"
	"github.com/framescan/framescan/internal/stream"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "detect_boundary").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "detect_boundary":
		return s.handleDetectBoundary(args)
	case "score_quadrilateral":
		return s.handleScoreQuadrilateral(args)
	case "rectify_image":
		return s.handleRectifyImage(args)
	case "guide_state":
		return s.handleGuideState(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Argument types shared across tools ===

type pointArg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type quadArg struct {
	TopLeft     pointArg `json:"top_left"`
	TopRight    pointArg `json:"top_right"`
	BottomRight pointArg `json:"bottom_right"`
	BottomLeft  pointArg `json:"bottom_left"`
}

func (q quadArg) quadrilateral() geometry.Quadrilateral {
	return geometry.Quadrilateral{
		TopLeft:     geometry.Point{X: q.TopLeft.X, Y: q.TopLeft.Y},
		TopRight:    geometry.Point{X: q.TopRight.X, Y: q.TopRight.Y},
		BottomRight: geometry.Point{X: q.BottomRight.X, Y: q.BottomRight.Y},
		BottomLeft:  geometry.Point{X: q.BottomLeft.X, Y: q.BottomLeft.Y},
	}
}

// parseHint maps an orientation argument onto a detector hint.
func parseHint(orientation string) (detect.Hint, error) {
	switch orientation {
	case "", "none":
		return detect.HintNone, nil
	case "portrait":
		return detect.HintPortrait, nil
	case "landscape":
		return detect.HintLandscape, nil
	default:
		return detect.HintNone, fmt.Errorf("unknown orientation %q", orientation)
	}
}

// === image_load ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

type imageLoadResult struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	width, height, err := s.cache.Dimensions(a.Path)
	if err != nil {
		return nil, err
	}
	return imageLoadResult{Path: a.Path, Width: width, Height: height}, nil
}

// === detect_boundary ===

type detectBoundaryArgs struct {
	Path        string `json:"path"`
	Orientation string `json:"orientation"`
}

type detectBoundaryResult struct {
	Quadrilateral    *geometry.Quadrilateral `json:"quadrilateral"`
	Confidence       float64                 `json:"confidence"`
	Metrics          score.Metrics           `json:"metrics"`
	Strategy         string                  `json:"strategy"`
	ProcessingTimeMS int64                   `json:"processing_time_ms"`
	OrientationHint  string                  `json:"orientation_hint"`
}

func (s *Server) handleDetectBoundary(args json.RawMessage) (interface{}, error) {
	var a detectBoundaryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	hint, err := parseHint(a.Orientation)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	r := s.selector.Detect(img, hint)
	return detectBoundaryResult{
		Quadrilateral:    r.Quad,
		Confidence:       r.Confidence,
		Metrics:          r.Metrics,
		Strategy:         r.Strategy,
		ProcessingTimeMS: r.ProcessingTime.Milliseconds(),
		OrientationHint:  r.Hint.String(),
	}, nil
}

// === score_quadrilateral ===

type scoreQuadrilateralArgs struct {
	Path          string  `json:"path"`
	Quadrilateral quadArg `json:"quadrilateral"`
}

type scoreQuadrilateralResult struct {
	Confidence float64       `json:"confidence"`
	Metrics    score.Metrics `json:"metrics"`
}

func (s *Server) handleScoreQuadrilateral(args json.RawMessage) (interface{}, error) {
	var a scoreQuadrilateralArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	width, height, err := s.cache.Dimensions(a.Path)
	if err != nil {
		return nil, err
	}

	q := a.Quadrilateral.quadrilateral()
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quadrilateral: %w", err)
	}

	confidence, metrics := s.scorer.Score(q, width, height)
	return scoreQuadrilateralResult{Confidence: confidence, Metrics: metrics}, nil
}

// === rectify_image ===

type rectifyImageArgs struct {
	Path          string   `json:"path"`
	Quadrilateral *quadArg `json:"quadrilateral"`
	OutputWidth   int      `json:"output_width"`
	OutputHeight  int      `json:"output_height"`
	Quality       string   `json:"quality"`
	TimeoutMS     int      `json:"timeout_ms"`
}

type rectifyImageResult struct {
	Image            *imaging.EncodedImage `json:"image"`
	Source           string                `json:"source"`
	Confidence       float64               `json:"confidence,omitempty"`
	Strategy         string                `json:"strategy,omitempty"`
	ProcessingTimeMS int64                 `json:"processing_time_ms"`
}

func (s *Server) handleRectifyImage(args json.RawMessage) (interface{}, error) {
	var a rectifyImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	result := rectifyImageResult{Source: "manual"}
	var quad geometry.Quadrilateral
	if a.Quadrilateral != nil {
		// User-adjusted corners bypass detection entirely.
		quad = a.Quadrilateral.quadrilateral()
	} else {
		r := s.selector.Detect(img, detect.HintNone)
		if r.Quad == nil {
			return nil, fmt.Errorf("no boundary detected in %s; supply explicit corners", a.Path)
		}
		quad = *r.Quad
		result.Source = "detected"
		result.Confidence = r.Confidence
		result.Strategy = r.Strategy
	}

	timeout := s.cfg.Rectify.Timeout()
	if a.TimeoutMS > 0 {
		timeout = time.Duration(a.TimeoutMS) * time.Millisecond
	}
	quality := s.cfg.Rectify.ResampleQuality()
	if a.Quality == "fast" {
		quality = rectify.QualityFast
	} else if a.Quality == "best" {
		quality = rectify.QualityBest
	}

	res := s.rectifier.Rectify(context.Background(), rectify.Request{
		Source:       img,
		Quad:         quad,
		OutputWidth:  a.OutputWidth,
		OutputHeight: a.OutputHeight,
		Quality:      quality,
		Timeout:      timeout,
	})
	if !res.OK {
		return nil, fmt.Errorf("rectification failed: %w", res.Err)
	}

	encoded, err := imaging.EncodePNG(res.Image)
	if err != nil {
		return nil, err
	}
	result.Image = encoded
	result.ProcessingTimeMS = res.ProcessingTime.Milliseconds()
	return result, nil
}

// === guide_state ===

type guideStateArgs struct {
	Path string `json:"path"`
}

type orientationState struct {
	Detected        bool    `json:"detected"`
	Confidence      float64 `json:"confidence"`
	ShouldHideGuide bool    `json:"should_hide_guide"`
}

type guideStateResult struct {
	Portrait  orientationState `json:"portrait"`
	Landscape orientationState `json:"landscape"`
}

func (s *Server) handleGuideState(args json.RawMessage) (interface{}, error) {
	var a guideStateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	s.monitor.ProcessFrame(img)

	state := func(o stream.Orientation) orientationState {
		st := s.monitor.State(o)
		return orientationState{
			Detected:        st.Detected,
			Confidence:      st.Confidence,
			ShouldHideGuide: s.monitor.ShouldHideGuide(o),
		}
	}
	return guideStateResult{
		Portrait:  state(stream.Portrait),
		Landscape: state(stream.Landscape),
	}, nil
}
