package rectify

import (
	"math"

	"github.com/framescan/framescan/internal/geometry"
)

// Homography is a 3x3 projective transform in row-major order with the
// bottom-right element fixed at 1.
type Homography [9]float64

// computeHomography solves for the transform mapping each dst[i] to src[i].
//
// # Algorithm
//
// With h22 pinned to 1 the projective equations
//
//	x' = (h00·X + h01·Y + h02) / (h20·X + h21·Y + 1)
//	y' = (h10·X + h11·Y + h12) / (h20·X + h21·Y + 1)
//
// become linear in the remaining eight unknowns, two equations per corner
// pair. The resulting 8x8 system is solved by Gaussian elimination with
// partial pivoting. Degenerate corner sets (collinear or coincident points)
// make the system singular and report ok=false.
func computeHomography(dst, src [4]geometry.Point) (Homography, bool) {
	var a [8][8]float64
	var b [8]float64

	for i := 0; i < 4; i++ {
		dx, dy := dst[i].X, dst[i].Y
		sx, sy := src[i].X, src[i].Y
		r := 2 * i

		a[r] = [8]float64{dx, dy, 1, 0, 0, 0, -dx * sx, -dy * sx}
		b[r] = sx

		a[r+1] = [8]float64{0, 0, 0, dx, dy, 1, -dx * sy, -dy * sy}
		b[r+1] = sy
	}

	h, ok := solve8x8(a, b)
	if !ok {
		return Homography{}, false
	}
	return Homography{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}, true
}

// solve8x8 solves a·x = b by Gauss-Jordan elimination with partial pivoting.
// Returns ok=false when the matrix is singular to working precision.
func solve8x8(a [8][8]float64, b [8]float64) ([8]float64, bool) {
	for col := 0; col < 8; col++ {
		// Partial pivot: bring the largest remaining entry onto the diagonal.
		pivot := col
		maxAbs := math.Abs(a[col][col])
		for r := col + 1; r < 8; r++ {
			if v := math.Abs(a[r][col]); v > maxAbs {
				maxAbs = v
				pivot = r
			}
		}
		if maxAbs < 1e-9 {
			return [8]float64{}, false
		}
		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
			b[col], b[pivot] = b[pivot], b[col]
		}

		div := a[col][col]
		for c := col; c < 8; c++ {
			a[col][c] /= div
		}
		b[col] /= div

		for r := 0; r < 8; r++ {
			if r == col {
				continue
			}
			factor := a[r][col]
			if factor == 0 {
				continue
			}
			for c := col; c < 8; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}
	return b, true
}

// Apply maps the point (x, y) through the transform. The projective divide
// can blow up near the transform's horizon line; callers sampling the result
// clamp out-of-bounds coordinates.
func (h Homography) Apply(x, y float64) (float64, float64) {
	denom := h[6]*x + h[7]*y + h[8]
	if denom == 0 {
		return math.Inf(1), math.Inf(1)
	}
	return (h[0]*x + h[1]*y + h[2]) / denom,
		(h[3]*x + h[4]*y + h[5]) / denom
}
