package detect

import (
	"image"
	"image/color"
	"testing"

	"github.com/framescan/framescan/internal/geometry"
	"github.com/framescan/framescan/internal/score"
)

// stubStrategy returns a fixed quadrilateral and counts its invocations.
type stubStrategy struct {
	name  string
	quad  geometry.Quadrilateral
	found bool
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Detect(image.Image, Hint) (geometry.Quadrilateral, bool) {
	s.calls++
	return s.quad, s.found
}

// stubScorer maps each quadrilateral's top-left X coordinate to a fixed
// confidence, letting tests pin exact scores per strategy.
type stubScorer struct {
	byTopLeftX map[float64]float64
}

func (s *stubScorer) Score(q geometry.Quadrilateral, _, _ int) (float64, score.Metrics) {
	return s.byTopLeftX[q.TopLeft.X], score.Metrics{}
}

// quadAt builds a valid rectangle whose TopLeft.X identifies it to stubScorer.
func quadAt(x float64) geometry.Quadrilateral {
	return geometry.Quadrilateral{
		TopLeft:     geometry.Point{X: x, Y: 10},
		TopRight:    geometry.Point{X: x + 100, Y: 10},
		BottomRight: geometry.Point{X: x + 100, Y: 90},
		BottomLeft:  geometry.Point{X: x, Y: 90},
	}
}

// newStubSelector wires five stub strategies (quick first, contour as the
// complementary) with the given per-strategy confidences. A negative
// confidence means the strategy finds nothing.
func newStubSelector(t *testing.T, confidences map[string]float64) (*Selector, map[string]*stubStrategy) {
	t.Helper()

	names := []string{"quick", "standard", "enhanced", "contour", "lines"}
	stubs := make(map[string]*stubStrategy, len(names))
	scores := make(map[float64]float64)
	strategies := make([]Strategy, 0, len(names))

	for i, name := range names {
		x := float64(100 * (i + 1))
		conf, ok := confidences[name]
		st := &stubStrategy{name: name, quad: quadAt(x), found: ok && conf >= 0}
		if st.found {
			scores[x] = conf
		}
		stubs[name] = st
		strategies = append(strategies, st)
	}

	sel := NewSelector(strategies, nil, DefaultThresholds(), nil)
	sel.scorer = &stubScorer{byTopLeftX: scores}
	return sel, stubs
}

var testFrame = image.NewRGBA(image.Rect(0, 0, 640, 480))

func TestSelector_ExcellentStopsAfterQuick(t *testing.T) {
	sel, stubs := newStubSelector(t, map[string]float64{
		"quick": 0.90, "standard": 0.95, "enhanced": 0.95, "contour": 0.95, "lines": 0.95,
	})

	r := sel.Detect(testFrame, HintNone)

	if r.Strategy != "quick" {
		t.Errorf("Strategy = %q, want quick", r.Strategy)
	}
	if r.Confidence != 0.90 {
		t.Errorf("Confidence = %v, want 0.90", r.Confidence)
	}
	// The Excellent branch must invoke exactly one strategy.
	total := 0
	for _, st := range stubs {
		total += st.calls
	}
	if total != 1 || stubs["quick"].calls != 1 {
		t.Errorf("strategy calls = %d (quick %d), want exactly 1 quick call", total, stubs["quick"].calls)
	}
}

func TestSelector_GoodRunsOneComplementary(t *testing.T) {
	sel, stubs := newStubSelector(t, map[string]float64{
		"quick": 0.8999, "standard": 0.95, "enhanced": 0.95, "contour": 0.85, "lines": 0.95,
	})

	r := sel.Detect(testFrame, HintNone)

	if stubs["quick"].calls != 1 || stubs["contour"].calls != 1 {
		t.Errorf("calls: quick=%d contour=%d, want 1 and 1", stubs["quick"].calls, stubs["contour"].calls)
	}
	for _, name := range []string{"standard", "enhanced", "lines"} {
		if stubs[name].calls != 0 {
			t.Errorf("%s ran during Good branch, want skipped", name)
		}
	}
	// Quick (0.8999) beats the cross-check (0.85).
	if r.Strategy != "quick" || r.Confidence != 0.8999 {
		t.Errorf("result = %q/%v, want quick/0.8999", r.Strategy, r.Confidence)
	}
}

func TestSelector_GoodKeepsHigherCrossCheck(t *testing.T) {
	sel, _ := newStubSelector(t, map[string]float64{
		"quick": 0.81, "contour": 0.88,
	})

	r := sel.Detect(testFrame, HintNone)

	if r.Strategy != "contour" || r.Confidence != 0.88 {
		t.Errorf("result = %q/%v, want contour/0.88", r.Strategy, r.Confidence)
	}
}

func TestSelector_GoodTieKeepsQuick(t *testing.T) {
	sel, _ := newStubSelector(t, map[string]float64{
		"quick": 0.85, "contour": 0.85,
	})

	r := sel.Detect(testFrame, HintNone)

	if r.Strategy != "quick" {
		t.Errorf("tie went to %q, want quick (earlier in order)", r.Strategy)
	}
}

func TestSelector_FullEscalationBelowGood(t *testing.T) {
	sel, stubs := newStubSelector(t, map[string]float64{
		"quick": 0.7999, "standard": 0.70, "enhanced": 0.82, "contour": 0.75, "lines": 0.60,
	})

	r := sel.Detect(testFrame, HintNone)

	for name, st := range stubs {
		if st.calls != 1 {
			t.Errorf("%s calls = %d, want 1 (full escalation runs everything)", name, st.calls)
		}
	}
	if r.Strategy != "enhanced" || r.Confidence != 0.82 {
		t.Errorf("result = %q/%v, want enhanced/0.82", r.Strategy, r.Confidence)
	}
}

func TestSelector_FullEscalationTieBreaksEarliest(t *testing.T) {
	sel, _ := newStubSelector(t, map[string]float64{
		"quick": 0.50, "standard": 0.75, "enhanced": 0.75, "contour": 0.60, "lines": 0.75,
	})

	r := sel.Detect(testFrame, HintNone)

	if r.Strategy != "standard" {
		t.Errorf("tie went to %q, want standard (earliest at 0.75)", r.Strategy)
	}
}

func TestSelector_QuickMissTriggersFullEscalation(t *testing.T) {
	sel, stubs := newStubSelector(t, map[string]float64{
		"quick": -1, "standard": -1, "enhanced": -1, "contour": 0.65, "lines": -1,
	})

	r := sel.Detect(testFrame, HintNone)

	for name, st := range stubs {
		if st.calls != 1 {
			t.Errorf("%s calls = %d, want 1", name, st.calls)
		}
	}
	if r.Strategy != "contour" || r.Confidence != 0.65 {
		t.Errorf("result = %q/%v, want contour/0.65", r.Strategy, r.Confidence)
	}
}

func TestSelector_NothingFound(t *testing.T) {
	sel, _ := newStubSelector(t, map[string]float64{})

	r := sel.Detect(testFrame, HintPortrait)

	if r.Quad != nil {
		t.Error("Quad should be nil when nothing is found")
	}
	if r.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", r.Confidence)
	}
	if r.Strategy != StrategyNone {
		t.Errorf("Strategy = %q, want %q", r.Strategy, StrategyNone)
	}
	if r.Hint != HintPortrait {
		t.Errorf("Hint = %v, want portrait echoed back", r.Hint)
	}
}

func TestSelector_DegenerateCandidateFiltered(t *testing.T) {
	// A strategy returning a self-intersecting quad must be treated as
	// having found nothing, never scored.
	bowtie := geometry.Quadrilateral{
		TopLeft:     geometry.Point{X: 0, Y: 0},
		TopRight:    geometry.Point{X: 100, Y: 100},
		BottomRight: geometry.Point{X: 100, Y: 0},
		BottomLeft:  geometry.Point{X: 0, Y: 100},
	}
	bad := &stubStrategy{name: "quick", quad: bowtie, found: true}
	good := &stubStrategy{name: "contour", quad: quadAt(300), found: true}

	sel := NewSelector([]Strategy{bad, good}, nil, DefaultThresholds(), nil)
	sel.scorer = &stubScorer{byTopLeftX: map[float64]float64{300: 0.7}}

	r := sel.Detect(testFrame, HintNone)

	if r.Strategy != "contour" {
		t.Errorf("Strategy = %q, want contour after degenerate quick filtered", r.Strategy)
	}
}

func TestSelector_RealScorerEndToEnd(t *testing.T) {
	// One non-stub pass: a well-framed rectangle through the real scorer
	// should come back from the quick branch with high confidence.
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.White)
		}
	}
	for y := 40; y < 260; y++ {
		for x := 50; x < 350; x++ {
			img.Set(x, y, color.RGBA{60, 60, 60, 255})
		}
	}

	scorer := score.NewScorer(score.DefaultWeights())
	sel := NewSelector(BuildStrategies(DefaultStrategyConfig(), scorer), scorer, DefaultThresholds(), nil)

	r := sel.Detect(img, HintNone)

	if r.Quad == nil {
		t.Fatal("no quadrilateral detected for a clean synthetic print")
	}
	if r.Confidence < 0.80 {
		t.Errorf("Confidence = %v, want >= 0.80 for a clean rectangle", r.Confidence)
	}
	if r.ProcessingTime <= 0 {
		t.Error("ProcessingTime not recorded")
	}
}
