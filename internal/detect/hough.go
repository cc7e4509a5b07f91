package detect

import (
	"math"
	"sort"

	"github.com/framescan/framescan/internal/geometry"
)

// houghPeak is one (rho, theta) cell of the Hough accumulator that survived
// local-maximum filtering.
type houghPeak struct {
	rho   float64 // signed distance from origin, pixels
	theta int     // angle in degrees, [0, 180)
	votes int
}

// houghQuad finds the dominant pair of near-vertical and near-horizontal
// lines in an edge mask and intersects them into a quadrilateral.
//
// theta is the normal angle of the line x*cos(theta) + y*sin(theta) = rho:
// theta near 0 (or 180) means a vertical line, theta near 90 a horizontal
// one. A print photographed with mild perspective keeps its edges within
// ~25 degrees of those axes, which bounds the peak search.
func houghQuad(edges [][]bool, minVotes int) (geometry.Quadrilateral, bool) {
	height := len(edges)
	if height == 0 {
		return geometry.Quadrilateral{}, false
	}
	width := len(edges[0])

	maxDist := int(math.Hypot(float64(width), float64(height))) + 1
	const numAngles = 180
	accumulator := make([][]int, maxDist*2)
	for i := range accumulator {
		accumulator[i] = make([]int, numAngles)
	}

	// Precomputed tables; the voting loop touches every edge pixel 180 times.
	cosTab := make([]float64, numAngles)
	sinTab := make([]float64, numAngles)
	for t := 0; t < numAngles; t++ {
		rad := float64(t) * math.Pi / 180
		cosTab[t] = math.Cos(rad)
		sinTab[t] = math.Sin(rad)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !edges[y][x] {
				continue
			}
			for t := 0; t < numAngles; t++ {
				rho := float64(x)*cosTab[t] + float64(y)*sinTab[t]
				idx := int(rho) + maxDist
				if idx >= 0 && idx < maxDist*2 {
					accumulator[idx][t]++
				}
			}
		}
	}

	peaks := findHoughPeaks(accumulator, maxDist, minVotes)

	// Split by orientation band.
	var vertical, horizontal []houghPeak
	for _, p := range peaks {
		switch {
		case p.theta <= 25 || p.theta >= 155:
			vertical = append(vertical, p)
		case p.theta >= 65 && p.theta <= 115:
			horizontal = append(horizontal, p)
		}
	}

	left, right, okV := dominantPair(vertical, float64(width)*0.15)
	top, bottom, okH := dominantPair(horizontal, float64(height)*0.15)
	if !okV || !okH {
		return geometry.Quadrilateral{}, false
	}

	tl, ok1 := intersect(top, left, cosTab, sinTab)
	tr, ok2 := intersect(top, right, cosTab, sinTab)
	br, ok3 := intersect(bottom, right, cosTab, sinTab)
	bl, ok4 := intersect(bottom, left, cosTab, sinTab)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return geometry.Quadrilateral{}, false
	}

	// Corners must land inside (or very near) the frame.
	margin := 0.05 * float64(width+height) / 2
	for _, p := range []geometry.Point{tl, tr, br, bl} {
		if p.X < -margin || p.X > float64(width)+margin ||
			p.Y < -margin || p.Y > float64(height)+margin {
			return geometry.Quadrilateral{}, false
		}
	}

	q := geometry.OrderCorners([4]geometry.Point{tl, tr, br, bl})
	if err := q.Validate(); err != nil {
		return geometry.Quadrilateral{}, false
	}
	return q, true
}

// findHoughPeaks scans the accumulator for local maxima above minVotes,
// using a 5x5 neighborhood, and returns them sorted by votes descending.
func findHoughPeaks(accumulator [][]int, maxDist, minVotes int) []houghPeak {
	numAngles := len(accumulator[0])
	var peaks []houghPeak

	for rhoIdx := range accumulator {
		for theta := 0; theta < numAngles; theta++ {
			votes := accumulator[rhoIdx][theta]
			if votes < minVotes {
				continue
			}
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := rhoIdx + dr
					nt := (theta + dt + numAngles) % numAngles
					if nr >= 0 && nr < len(accumulator) && accumulator[nr][nt] > votes {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, houghPeak{
					rho:   float64(rhoIdx - maxDist),
					theta: theta,
					votes: votes,
				})
			}
		}
	}

	sort.Slice(peaks, func(i, j int) bool { return peaks[i].votes > peaks[j].votes })
	return peaks
}

// dominantPair picks the two strongest peaks whose rho values are at least
// minSeparation apart, so both sides of the print are represented rather
// than two responses from the same edge.
func dominantPair(peaks []houghPeak, minSeparation float64) (a, b houghPeak, ok bool) {
	if len(peaks) < 2 {
		return houghPeak{}, houghPeak{}, false
	}
	first := peaks[0]
	for _, p := range peaks[1:] {
		if math.Abs(absRho(p)-absRho(first)) >= minSeparation {
			return first, p, true
		}
	}
	return houghPeak{}, houghPeak{}, false
}

// absRho normalizes rho for peaks whose theta wrapped past 155 degrees,
// where the same physical line appears with negated rho.
func absRho(p houghPeak) float64 {
	if p.theta >= 155 {
		return -p.rho
	}
	return p.rho
}

// intersect solves the 2x2 system of two Hough lines. Returns ok=false for
// near-parallel lines.
func intersect(a, b houghPeak, cosTab, sinTab []float64) (geometry.Point, bool) {
	ca, sa := cosTab[a.theta], sinTab[a.theta]
	cb, sb := cosTab[b.theta], sinTab[b.theta]

	det := ca*sb - sa*cb
	if math.Abs(det) < 1e-9 {
		return geometry.Point{}, false
	}
	x := (a.rho*sb - b.rho*sa) / det
	y := (b.rho*ca - a.rho*cb) / det
	return geometry.Point{X: x, Y: y}, true
}
