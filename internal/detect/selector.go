package detect

import (
	"errors"
	"image"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/framescan/framescan/internal/geometry"
	"github.com/framescan/framescan/internal/score"
)

// ErrNoCandidate indicates that every strategy ran and none produced a
// candidate quadrilateral.
var ErrNoCandidate = errors.New("no strategy produced a candidate")

// StrategyNone is the strategy name reported when detection found nothing.
const StrategyNone = "none"

// Result is the outcome of one detection attempt. Results are immutable
// once produced; the selector only compares and returns them.
type Result struct {
	// Quad is the detected boundary, nil when no strategy found one.
	Quad *geometry.Quadrilateral `json:"quadrilateral"`

	// Confidence is the weighted overall score, 0.0 when Quad is nil.
	Confidence float64 `json:"confidence"`

	// Metrics carries all four sub-scores for diagnostics.
	Metrics score.Metrics `json:"metrics"`

	// Strategy names the strategy that produced Quad, or "none".
	Strategy string `json:"strategy"`

	// ProcessingTime covers the whole selection, including every strategy
	// that ran.
	ProcessingTime time.Duration `json:"processing_time"`

	// Hint echoes the orientation hint the caller supplied.
	Hint Hint `json:"orientation_hint"`
}

// Thresholds are the escalation decision points on the overall confidence.
//
// Empirically calibrated constants; the 0.90 bar is where the weighted
// formula forces nearly every sub-metric to 0.85 or above simultaneously.
// Changing them requires re-validation against the acceptance scenarios.
type Thresholds struct {
	// Excellent stops after the quick pass.
	Excellent float64 `toml:"excellent"`
	// Good triggers exactly one complementary cross-check.
	Good float64 `toml:"good"`
}

// DefaultThresholds returns the calibrated escalation thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Excellent: 0.90, Good: 0.80}
}

// quadScorer scores a candidate against the image dimensions.
// *score.Scorer satisfies it; tests substitute fixtures.
type quadScorer interface {
	Score(q geometry.Quadrilateral, imageWidth, imageHeight int) (float64, score.Metrics)
}

// Selector implements adaptive escalation over the fixed strategy set.
//
// A Selector holds no per-request state and is safe for concurrent use;
// construct one per engine instance, not per frame.
type Selector struct {
	strategies    []Strategy
	scorer        quadScorer
	thresholds    Thresholds
	complementary int
	log           logrus.FieldLogger
}

// NewSelector builds a selector over the given ordered strategies.
//
// The complementary strategy for the Good branch is the contour strategy
// when present: it is the approach most unlike the quick gradient pass, so
// agreement between the two carries real evidence. A nil logger discards.
func NewSelector(strategies []Strategy, scorer *score.Scorer, thresholds Thresholds, log logrus.FieldLogger) *Selector {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	complementary := 0
	for i, s := range strategies {
		if s.Name() == "contour" {
			complementary = i
			break
		}
	}
	if complementary == 0 && len(strategies) > 1 {
		complementary = 1
	}

	return &Selector{
		strategies:    strategies,
		scorer:        scorer,
		thresholds:    thresholds,
		complementary: complementary,
		log:           log,
	}
}

// Detect runs the escalation state machine against one image:
//
//  1. Run the quick strategy. Confidence >= Excellent: return immediately.
//  2. Confidence >= Good: run the complementary strategy once and return
//     whichever of the two scored higher (the quick result on a tie).
//  3. Otherwise run every remaining strategy in order and return the single
//     highest-confidence result; ties break to the earliest strategy.
//
// When no strategy finds anything the result has a nil Quad, confidence
// 0.0, and strategy "none".
func (s *Selector) Detect(img image.Image, hint Hint) Result {
	start := time.Now()
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	finish := func(r Result) Result {
		r.ProcessingTime = time.Since(start)
		r.Hint = hint
		return r
	}

	if len(s.strategies) == 0 {
		return finish(Result{Strategy: StrategyNone})
	}

	quick, quickOK := s.run(s.strategies[0], img, hint, width, height)
	if quickOK && quick.Confidence >= s.thresholds.Excellent {
		s.log.WithFields(logrus.Fields{
			"strategy":   quick.Strategy,
			"confidence": quick.Confidence,
		}).Debug("excellent quick detection, stopping early")
		return finish(quick)
	}

	if quickOK && quick.Confidence >= s.thresholds.Good && s.complementary > 0 {
		check, checkOK := s.run(s.strategies[s.complementary], img, hint, width, height)
		s.log.WithFields(logrus.Fields{
			"quick":       quick.Confidence,
			"cross_check": check.Confidence,
		}).Debug("good quick detection, validated with complementary strategy")
		if checkOK && check.Confidence > quick.Confidence {
			return finish(check)
		}
		return finish(quick)
	}

	// Full escalation over the remaining strategies.
	best := quick
	found := quickOK
	for _, strat := range s.strategies[1:] {
		r, ok := s.run(strat, img, hint, width, height)
		if !ok {
			continue
		}
		if !found || r.Confidence > best.Confidence {
			best = r
			found = true
		}
	}

	if !found {
		s.log.Debug("no strategy produced a candidate")
		return finish(Result{Strategy: StrategyNone})
	}
	s.log.WithFields(logrus.Fields{
		"strategy":   best.Strategy,
		"confidence": best.Confidence,
	}).Debug("full escalation complete")
	return finish(best)
}

// run executes one strategy and scores its candidate. Degenerate candidates
// are filtered here and count as "nothing found".
func (s *Selector) run(strat Strategy, img image.Image, hint Hint, width, height int) (Result, bool) {
	q, ok := strat.Detect(img, hint)
	if !ok {
		return Result{Strategy: strat.Name()}, false
	}
	if err := q.Validate(); err != nil {
		s.log.WithField("strategy", strat.Name()).Debug("candidate rejected as degenerate")
		return Result{Strategy: strat.Name()}, false
	}

	conf, metrics := s.scorer.Score(q, width, height)
	return Result{
		Quad:       &q,
		Confidence: conf,
		Metrics:    metrics,
		Strategy:   strat.Name(),
	}, true
}
