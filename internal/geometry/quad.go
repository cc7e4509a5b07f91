package geometry

import (
	"errors"
	"math"
	"sort"
)

// ErrDegenerate indicates a quadrilateral that cannot be scored or rectified:
// self-intersecting, near-zero area, or with three (near-)collinear corners.
var ErrDegenerate = errors.New("degenerate quadrilateral")

// Point represents a 2D coordinate in image pixel space.
//
// The coordinate system follows the standard image convention: origin at the
// top-left corner, X increasing rightward, Y increasing downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance to q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Quadrilateral represents four semantically labeled corners approximating a
// rectangle in an image.
//
// Corners are stored in clockwise order starting from the top-left. A valid
// quadrilateral is simple (non-self-intersecting) and has non-trivial area;
// use Validate before passing one to scoring or rectification.
type Quadrilateral struct {
	TopLeft     Point `json:"top_left"`
	TopRight    Point `json:"top_right"`
	BottomRight Point `json:"bottom_right"`
	BottomLeft  Point `json:"bottom_left"`
}

// Corners returns the four corners in clockwise order starting at TopLeft.
func (q Quadrilateral) Corners() [4]Point {
	return [4]Point{q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft}
}

// Area computes the polygon area using the shoelace formula.
//
// The result is always non-negative regardless of winding order.
func (q Quadrilateral) Area() float64 {
	c := q.Corners()
	var sum float64
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		sum += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return math.Abs(sum) / 2
}

// Centroid returns the mean of the four corners.
func (q Quadrilateral) Centroid() Point {
	c := q.Corners()
	return Point{
		X: (c[0].X + c[1].X + c[2].X + c[3].X) / 4,
		Y: (c[0].Y + c[1].Y + c[2].Y + c[3].Y) / 4,
	}
}

// EdgeLengths returns the four side lengths in order:
// top, right, bottom, left.
func (q Quadrilateral) EdgeLengths() [4]float64 {
	return [4]float64{
		q.TopLeft.Dist(q.TopRight),
		q.TopRight.Dist(q.BottomRight),
		q.BottomRight.Dist(q.BottomLeft),
		q.BottomLeft.Dist(q.TopLeft),
	}
}

// InteriorAngles returns the interior angle at each corner in degrees,
// ordered TopLeft, TopRight, BottomRight, BottomLeft.
func (q Quadrilateral) InteriorAngles() [4]float64 {
	c := q.Corners()
	var angles [4]float64
	for i := 0; i < 4; i++ {
		prev := c[(i+3)%4]
		cur := c[i]
		next := c[(i+1)%4]
		v1x, v1y := prev.X-cur.X, prev.Y-cur.Y
		v2x, v2y := next.X-cur.X, next.Y-cur.Y
		n1 := math.Hypot(v1x, v1y)
		n2 := math.Hypot(v2x, v2y)
		if n1 == 0 || n2 == 0 {
			angles[i] = 0
			continue
		}
		cos := (v1x*v2x + v1y*v2y) / (n1 * n2)
		cos = math.Max(-1, math.Min(1, cos))
		angles[i] = math.Acos(cos) * 180 / math.Pi
	}
	return angles
}

// IsSimple reports whether the polygon is non-self-intersecting, i.e. the
// two diagonally opposite edge pairs do not cross each other.
func (q Quadrilateral) IsSimple() bool {
	c := q.Corners()
	// Opposite edges: (0-1, 2-3) and (1-2, 3-0). Adjacent edges share a
	// vertex and may touch; only opposite-edge crossings make the polygon
	// self-intersecting.
	if segmentsCross(c[0], c[1], c[2], c[3]) {
		return false
	}
	if segmentsCross(c[1], c[2], c[3], c[0]) {
		return false
	}
	return true
}

// Validate checks the quadrilateral invariants required by the scoring and
// rectification pipeline. It returns ErrDegenerate for self-intersecting
// polygons, near-zero areas, or corner triples that are nearly collinear.
func (q Quadrilateral) Validate() error {
	const minArea = 1.0 // square pixels
	if q.Area() < minArea {
		return ErrDegenerate
	}
	if !q.IsSimple() {
		return ErrDegenerate
	}
	c := q.Corners()
	for i := 0; i < 4; i++ {
		a, b, d := c[i], c[(i+1)%4], c[(i+2)%4]
		// Triangle area of consecutive corner triples. Near zero means
		// three corners sit on one line.
		tri := math.Abs((b.X-a.X)*(d.Y-a.Y)-(d.X-a.X)*(b.Y-a.Y)) / 2
		base := a.Dist(b) + b.Dist(d)
		if base > 0 && tri/base < 0.5 {
			return ErrDegenerate
		}
	}
	return nil
}

// AspectRatio returns width/height using averaged opposite edge lengths.
// Returns 0 for quadrilaterals with a degenerate vertical extent.
func (q Quadrilateral) AspectRatio() float64 {
	e := q.EdgeLengths()
	w := (e[0] + e[2]) / 2
	h := (e[1] + e[3]) / 2
	if h == 0 {
		return 0
	}
	return w / h
}

// Scale returns a copy with every corner multiplied by (sx, sy). Used to map
// detections made on a downsampled image back to source coordinates.
func (q Quadrilateral) Scale(sx, sy float64) Quadrilateral {
	s := func(p Point) Point { return Point{X: p.X * sx, Y: p.Y * sy} }
	return Quadrilateral{
		TopLeft:     s(q.TopLeft),
		TopRight:    s(q.TopRight),
		BottomRight: s(q.BottomRight),
		BottomLeft:  s(q.BottomLeft),
	}
}

// OrderCorners builds a Quadrilateral from four unordered points by sorting
// them by angle around their centroid and assigning semantic labels. This
// repairs "bowtie" candidates produced by unordered corner proposals before
// they reach validation.
func OrderCorners(pts [4]Point) Quadrilateral {
	cx := (pts[0].X + pts[1].X + pts[2].X + pts[3].X) / 4
	cy := (pts[0].Y + pts[1].Y + pts[2].Y + pts[3].Y) / 4

	ordered := pts[:]
	sort.Slice(ordered, func(i, j int) bool {
		return math.Atan2(ordered[i].Y-cy, ordered[i].X-cx) <
			math.Atan2(ordered[j].Y-cy, ordered[j].X-cx)
	})

	// Angles sort counter-clockwise in math coordinates, which is clockwise
	// in image coordinates (Y down). Rotate so the top-left-most point
	// (smallest x+y) comes first.
	start := 0
	best := math.Inf(1)
	for i, p := range ordered {
		if s := p.X + p.Y; s < best {
			best = s
			start = i
		}
	}
	var c [4]Point
	for i := 0; i < 4; i++ {
		c[i] = ordered[(start+i)%4]
	}
	return Quadrilateral{TopLeft: c[0], TopRight: c[1], BottomRight: c[2], BottomLeft: c[3]}
}

// segmentsCross reports whether segments ab and cd properly intersect.
// Shared endpoints do not count as crossings.
func segmentsCross(a, b, c, d Point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// cross returns the z component of (b-a) x (p-a).
func cross(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}
