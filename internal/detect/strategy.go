package detect

import (
	"image"

	"github.com/framescan/framescan/internal/geometry"
	"github.com/framescan/framescan/internal/imaging"
	"github.com/framescan/framescan/internal/score"
)

// Hint tells a strategy which orientation the caller expects the print in.
// Strategies use it to filter out candidates clearly in the opposite
// orientation; HintNone disables the filter.
type Hint int

const (
	HintNone Hint = iota
	HintPortrait
	HintLandscape
)

// String returns the hint name for logs and results.
func (h Hint) String() string {
	switch h {
	case HintPortrait:
		return "portrait"
	case HintLandscape:
		return "landscape"
	default:
		return "none"
	}
}

// Strategy is one self-contained detection algorithm variant. Strategies are
// stateless, safe to run in any order or concurrently, and report at most
// one candidate. A strategy that finds nothing returns ok=false; strategies
// never return errors or panic.
type Strategy interface {
	Name() string
	Detect(img image.Image, hint Hint) (geometry.Quadrilateral, bool)
}

// QuickConfig parameterizes the quick strategy.
type QuickConfig struct {
	// MaxWidth is the downsample target; detection runs at this width.
	MaxWidth int `toml:"max_width"`
	// GradientThreshold is the luminance step (0-255) that counts as an edge.
	GradientThreshold int `toml:"gradient_threshold"`
}

// DefaultQuickConfig returns the calibrated quick-pass parameters.
func DefaultQuickConfig() QuickConfig {
	return QuickConfig{MaxWidth: 480, GradientThreshold: 30}
}

// QuickStrategy trades accuracy for latency: cheap gradient edges on a
// downsampled frame, largest contour wins. It runs first on every detection
// request, so it must stay fast enough for the streaming cadence.
type QuickStrategy struct {
	Config QuickConfig
}

func (s *QuickStrategy) Name() string { return "quick" }

func (s *QuickStrategy) Detect(img image.Image, hint Hint) (geometry.Quadrilateral, bool) {
	small, scale := imaging.Downsample(img, s.Config.MaxWidth)
	edges := imaging.GradientMask(small, s.Config.GradientThreshold)
	q, ok := quadFromContour(largestContour(findContours(edges)))
	if !ok || !matchesHint(q, hint) {
		return geometry.Quadrilateral{}, false
	}
	return q.Scale(scale, scale), true
}

// CannyConfig holds hysteresis thresholds on the 0-255 scale.
type CannyConfig struct {
	ThresholdLow  int `toml:"threshold_low"`
	ThresholdHigh int `toml:"threshold_high"`
}

// DefaultCannyConfig returns thresholds suited to clean, well-lit shots.
func DefaultCannyConfig() CannyConfig {
	return CannyConfig{ThresholdLow: 50, ThresholdHigh: 150}
}

// StandardStrategy runs full-resolution Canny edge detection and takes the
// largest contour. The workhorse for ordinary framing and lighting.
type StandardStrategy struct {
	Config CannyConfig
}

func (s *StandardStrategy) Name() string { return "standard" }

func (s *StandardStrategy) Detect(img image.Image, hint Hint) (geometry.Quadrilateral, bool) {
	edges := imaging.EdgeMask(img, s.Config.ThresholdLow, s.Config.ThresholdHigh)
	q, ok := quadFromContour(largestContour(findContours(edges)))
	if !ok || !matchesHint(q, hint) {
		return geometry.Quadrilateral{}, false
	}
	return q, true
}

// EnhancedConfig parameterizes the enhanced-contrast strategy.
type EnhancedConfig struct {
	// WeakSeparation is the border/center Lab separation below which the
	// scene counts as low contrast and gets the strong boost.
	WeakSeparation float64 `toml:"weak_separation"`
	// MildBoost and StrongBoost are bild contrast changes (0 = no-op).
	MildBoost   float64 `toml:"mild_boost"`
	StrongBoost float64 `toml:"strong_boost"`
	// BlurRadius denoises before the boost so noise is not amplified.
	BlurRadius float64 `toml:"blur_radius"`

	Canny CannyConfig `toml:"canny"`
}

// DefaultEnhancedConfig returns the calibrated enhancement parameters.
func DefaultEnhancedConfig() EnhancedConfig {
	return EnhancedConfig{
		WeakSeparation: 10,
		MildBoost:      0.2,
		StrongBoost:    0.6,
		BlurRadius:     1.0,
		Canny:          CannyConfig{ThresholdLow: 35, ThresholdHigh: 110},
	}
}

// EnhancedStrategy preprocesses the frame before edge detection, choosing
// the contrast boost from the measured color separation between the frame
// border and its center. Helps when the print blends into the surface it
// lies on.
type EnhancedStrategy struct {
	Config EnhancedConfig
}

func (s *EnhancedStrategy) Name() string { return "enhanced" }

func (s *EnhancedStrategy) Detect(img image.Image, hint Hint) (geometry.Quadrilateral, bool) {
	stats := imaging.ComputeBorderStats(img)
	boost := s.Config.MildBoost
	if stats.Separation < s.Config.WeakSeparation {
		boost = s.Config.StrongBoost
	}

	prepped := imaging.EnhanceContrast(img, boost, s.Config.BlurRadius)
	edges := imaging.EdgeMask(prepped, s.Config.Canny.ThresholdLow, s.Config.Canny.ThresholdHigh)
	q, ok := quadFromContour(largestContour(findContours(edges)))
	if !ok || !matchesHint(q, hint) {
		return geometry.Quadrilateral{}, false
	}
	return q, true
}

// ContourConfig parameterizes the contour strategy.
type ContourConfig struct {
	// MinAreaFraction discards candidates whose quadrilateral covers less
	// than this fraction of the image.
	MinAreaFraction float64 `toml:"min_area_fraction"`
	// MaxAreaFraction discards near-full-frame candidates, which are the
	// segmented background rather than a print.
	MaxAreaFraction float64 `toml:"max_area_fraction"`
}

// DefaultContourConfig returns the calibrated contour parameters.
func DefaultContourConfig() ContourConfig {
	return ContourConfig{MinAreaFraction: 0.05, MaxAreaFraction: 0.95}
}

// ContourStrategy segments the frame by luminance threshold (picked between
// the measured border and center luminance), proposes a quadrilateral for
// every sizable blob, and keeps the best-scoring one. Unlike the
// largest-contour strategies it survives nested frames and partial
// occlusion, at the cost of scoring every candidate.
type ContourStrategy struct {
	Config ContourConfig
	scorer *score.Scorer
}

// NewContourStrategy creates the contour strategy. The scorer is used only
// for candidate ranking; it holds no mutable state.
func NewContourStrategy(cfg ContourConfig, scorer *score.Scorer) *ContourStrategy {
	return &ContourStrategy{Config: cfg, scorer: scorer}
}

func (s *ContourStrategy) Name() string { return "contour" }

func (s *ContourStrategy) Detect(img image.Image, hint Hint) (geometry.Quadrilateral, bool) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	imageArea := float64(width) * float64(height)
	if imageArea == 0 {
		return geometry.Quadrilateral{}, false
	}

	stats := imaging.ComputeBorderStats(img)
	level := uint8((stats.BorderLuminance + stats.CenterLuminance) / 2 * 255 / 100)
	mask := imaging.ThresholdMask(img, level)

	// The print blob must be the true region; invert when the print is
	// darker than its background.
	if stats.CenterLuminance < stats.BorderLuminance {
		for y := range mask {
			for x := range mask[y] {
				mask[y][x] = !mask[y][x]
			}
		}
	}

	var best geometry.Quadrilateral
	bestConf := -1.0
	for _, contour := range findContours(mask) {
		q, ok := quadFromContour(contour)
		if !ok || !matchesHint(q, hint) {
			continue
		}
		frac := q.Area() / imageArea
		if frac < s.Config.MinAreaFraction || frac > s.Config.MaxAreaFraction {
			continue
		}
		conf, _ := s.scorer.Score(q, width, height)
		if conf > bestConf {
			best = q
			bestConf = conf
		}
	}

	if bestConf < 0 {
		return geometry.Quadrilateral{}, false
	}
	return best, true
}

// LinesConfig parameterizes the line-based strategy.
type LinesConfig struct {
	// MaxWidth bounds the Hough transform cost; the vote loop is
	// O(pixels * angles).
	MaxWidth int `toml:"max_width"`
	// MinVotesFraction scales the peak threshold by the smaller image
	// dimension: an edge must span at least this fraction of it.
	MinVotesFraction float64 `toml:"min_votes_fraction"`

	Canny CannyConfig `toml:"canny"`
}

// DefaultLinesConfig returns the calibrated line-fit parameters.
func DefaultLinesConfig() LinesConfig {
	return LinesConfig{
		MaxWidth:         640,
		MinVotesFraction: 0.25,
		Canny:            CannyConfig{ThresholdLow: 50, ThresholdHigh: 150},
	}
}

// LinesStrategy fits the print boundary as four dominant straight lines via
// the Hough transform and intersects them into corners. The most robust
// option when the print's corners are occluded (fingers holding it), since
// line peaks integrate evidence along the whole edge.
type LinesStrategy struct {
	Config LinesConfig
}

func (s *LinesStrategy) Name() string { return "lines" }

func (s *LinesStrategy) Detect(img image.Image, hint Hint) (geometry.Quadrilateral, bool) {
	small, scale := imaging.Downsample(img, s.Config.MaxWidth)
	edges := imaging.EdgeMask(small, s.Config.Canny.ThresholdLow, s.Config.Canny.ThresholdHigh)

	b := small.Bounds()
	minDim := b.Dx()
	if b.Dy() < minDim {
		minDim = b.Dy()
	}
	minVotes := int(s.Config.MinVotesFraction * float64(minDim))
	if minVotes < 10 {
		minVotes = 10
	}

	q, ok := houghQuad(edges, minVotes)
	if !ok || !matchesHint(q, hint) {
		return geometry.Quadrilateral{}, false
	}
	return q.Scale(scale, scale), true
}

// StrategyConfig is the closed, tagged configuration for the whole strategy
// set. Every strategy's knobs are enumerated here so the set is exhaustively
// testable and serializable from the config file.
type StrategyConfig struct {
	Quick    QuickConfig    `toml:"quick"`
	Standard CannyConfig    `toml:"standard"`
	Enhanced EnhancedConfig `toml:"enhanced"`
	Contour  ContourConfig  `toml:"contour"`
	Lines    LinesConfig    `toml:"lines"`
}

// DefaultStrategyConfig returns the calibrated defaults for every strategy.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		Quick:    DefaultQuickConfig(),
		Standard: DefaultCannyConfig(),
		Enhanced: DefaultEnhancedConfig(),
		Contour:  DefaultContourConfig(),
		Lines:    DefaultLinesConfig(),
	}
}

// BuildStrategies constructs the fixed, ordered strategy set. The order is
// part of the escalation contract: quick runs first, ties resolve to the
// earliest entry.
func BuildStrategies(cfg StrategyConfig, scorer *score.Scorer) []Strategy {
	return []Strategy{
		&QuickStrategy{Config: cfg.Quick},
		&StandardStrategy{Config: cfg.Standard},
		&EnhancedStrategy{Config: cfg.Enhanced},
		NewContourStrategy(cfg.Contour, scorer),
		&LinesStrategy{Config: cfg.Lines},
	}
}
