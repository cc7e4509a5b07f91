package score

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/framescan/framescan/internal/geometry"
)

// Metrics holds the four independent sub-scores that make up a confidence
// value, each in [0, 1]. All four are retained on every result so callers
// can diagnose why a detection scored the way it did; they are never
// recomputed or overridden after combination.
type Metrics struct {
	// AreaRatio scores the detected polygon area against the image area.
	// A deliberately framed print typically fills 40-80% of the shot.
	AreaRatio float64 `json:"area_ratio"`

	// Rectangularity scores opposite-edge-length balance and how close the
	// interior angles are to 90 degrees.
	Rectangularity float64 `json:"rectangularity"`

	// Distribution scores the evenness of corner-to-centroid distances and
	// how centered the quadrilateral sits within the image.
	Distribution float64 `json:"distribution"`

	// Straightness scores the parallelism of opposite edges via normalized
	// dot products.
	Straightness float64 `json:"straightness"`
}

// Weights combines the four sub-metrics into an overall confidence.
//
// The default values are empirically calibrated constants: area and shape
// correctness carry the most signal, position and parallelism are secondary.
// Changing them is a behavioral change that invalidates the selector's
// escalation thresholds, so they are configuration, not derived values.
type Weights struct {
	AreaRatio      float64 `toml:"area_ratio"`
	Rectangularity float64 `toml:"rectangularity"`
	Distribution   float64 `toml:"distribution"`
	Straightness   float64 `toml:"straightness"`
}

// DefaultWeights returns the calibrated metric weights.
func DefaultWeights() Weights {
	return Weights{
		AreaRatio:      0.30,
		Rectangularity: 0.30,
		Distribution:   0.20,
		Straightness:   0.20,
	}
}

// Combine applies the weights to a set of metrics. Pure arithmetic:
// overall = wa*area + wr*rect + wd*dist + ws*straight.
func (w Weights) Combine(m Metrics) float64 {
	return w.AreaRatio*m.AreaRatio +
		w.Rectangularity*m.Rectangularity +
		w.Distribution*m.Distribution +
		w.Straightness*m.Straightness
}

// Scorer computes confidence scores for candidate quadrilaterals. It is a
// pure value: no I/O, no shared state, safe for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights. Use DefaultWeights
// unless a re-validated calibration says otherwise.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score evaluates a quadrilateral against the image dimensions and returns
// the overall confidence in [0, 1] together with the four sub-metrics.
//
// The caller must validate the quadrilateral first (geometry.Validate);
// degenerate input is never scored.
func (s *Scorer) Score(q geometry.Quadrilateral, imageWidth, imageHeight int) (float64, Metrics) {
	m := Metrics{
		AreaRatio:      areaRatioScore(q, imageWidth, imageHeight),
		Rectangularity: rectangularityScore(q),
		Distribution:   distributionScore(q, imageWidth, imageHeight),
		Straightness:   straightnessScore(q),
	}
	return s.weights.Combine(m), m
}

// Weights returns the scorer's configured weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// areaRatioScore maps the polygon-to-image area ratio onto [0, 1].
//
// Ratio bands:
//   - [0.40, 0.80]: 1.0 (a well-framed print)
//   - [0.20, 0.40): linear ramp 0 -> 1
//   - (0.80, 0.95]: linear ramp 1 -> 0
//   - outside [0.20, 0.95]: fixed low penalty (noise or whole-image false
//     positive)
func areaRatioScore(q geometry.Quadrilateral, w, h int) float64 {
	imageArea := float64(w) * float64(h)
	if imageArea <= 0 {
		return 0
	}
	ratio := q.Area() / imageArea

	const penalty = 0.25
	switch {
	case ratio >= 0.40 && ratio <= 0.80:
		return 1.0
	case ratio >= 0.20 && ratio < 0.40:
		return (ratio - 0.20) / 0.20
	case ratio > 0.80 && ratio <= 0.95:
		return (0.95 - ratio) / 0.15
	default:
		return penalty
	}
}

// rectangularityScore averages the two opposite-edge-length ratios with an
// interior-angle score. Angle deviation from 90 degrees is capped at 30;
// beyond that the angle component bottoms out at zero.
func rectangularityScore(q geometry.Quadrilateral) float64 {
	e := q.EdgeLengths() // top, right, bottom, left
	horizRatio := minMaxRatio(e[0], e[2])
	vertRatio := minMaxRatio(e[3], e[1])

	var dev float64
	for _, a := range q.InteriorAngles() {
		dev += math.Abs(a - 90)
	}
	dev /= 4
	if dev > 30 {
		dev = 30
	}
	angleScore := 1 - dev/30

	return (horizRatio + vertRatio + angleScore) / 3
}

// distributionScore averages two sub-scores: the evenness of the four
// corner-to-centroid distances (low normalized variance is better) and how
// close the centroid sits to the image center (normalized by half the image
// diagonal).
func distributionScore(q geometry.Quadrilateral, w, h int) float64 {
	c := q.Centroid()
	corners := q.Corners()

	dists := make([]float64, 4)
	for i, p := range corners {
		dists[i] = p.Dist(c)
	}
	mean := stat.Mean(dists, nil)
	if mean == 0 {
		return 0
	}
	variance := stat.Variance(dists, nil)
	evenness := 1 / (1 + variance/(mean*mean))

	halfDiag := math.Hypot(float64(w), float64(h)) / 2
	if halfDiag == 0 {
		return 0
	}
	offset := math.Hypot(c.X-float64(w)/2, c.Y-float64(h)/2)
	centering := 1 - math.Min(1, offset/halfDiag)

	return (evenness + centering) / 2
}

// straightnessScore measures parallelism of opposite edges: the mean of
// |dot(top, bottom)| and |dot(left, right)| over unit edge vectors.
// Perfectly parallel opposite edges score 1.0.
func straightnessScore(q geometry.Quadrilateral) float64 {
	top := unitVec(q.TopLeft, q.TopRight)
	bottom := unitVec(q.BottomLeft, q.BottomRight)
	left := unitVec(q.TopLeft, q.BottomLeft)
	right := unitVec(q.TopRight, q.BottomRight)

	horiz := math.Abs(top[0]*bottom[0] + top[1]*bottom[1])
	vert := math.Abs(left[0]*right[0] + left[1]*right[1])
	return (horiz + vert) / 2
}

func minMaxRatio(a, b float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	return math.Min(a, b) / math.Max(a, b)
}

func unitVec(from, to geometry.Point) [2]float64 {
	dx := to.X - from.X
	dy := to.Y - from.Y
	n := math.Hypot(dx, dy)
	if n == 0 {
		return [2]float64{0, 0}
	}
	return [2]float64{dx / n, dy / n}
}
