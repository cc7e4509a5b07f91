package detect

import (
	"github.com/framescan/framescan/internal/geometry"
)

// pixel is an integer image coordinate used during contour tracing.
type pixel struct {
	X, Y int
}

// minContourSize discards tiny connected components as noise.
const minContourSize = 20

// findContours groups connected true pixels of a binary mask into contours
// using iterative 8-connected flood fill. Contours smaller than
// minContourSize pixels are dropped.
func findContours(mask [][]bool) [][]pixel {
	height := len(mask)
	if height == 0 {
		return nil
	}
	width := len(mask[0])

	visited := make([][]bool, height)
	for y := range visited {
		visited[y] = make([]bool, width)
	}

	var contours [][]pixel
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask[y][x] && !visited[y][x] {
				contour := floodFill(mask, visited, x, y, width, height)
				if len(contour) >= minContourSize {
					contours = append(contours, contour)
				}
			}
		}
	}
	return contours
}

// floodFill collects the connected component containing (startX, startY)
// with an explicit stack; recursion would overflow on frame-sized contours.
func floodFill(mask, visited [][]bool, startX, startY, width, height int) []pixel {
	var contour []pixel
	stack := []pixel{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !mask[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		contour = append(contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, pixel{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return contour
}

// largestContour returns the contour with the most pixels, or nil.
func largestContour(contours [][]pixel) []pixel {
	var best []pixel
	for _, c := range contours {
		if len(c) > len(best) {
			best = c
		}
	}
	return best
}

// quadFromContour proposes a quadrilateral from a contour by taking its
// extreme points along the two diagonal directions: the corners of a roughly
// rectangular blob maximize and minimize x+y and x-y. The result is ordered
// and validated; degenerate proposals report ok=false.
func quadFromContour(contour []pixel) (geometry.Quadrilateral, bool) {
	if len(contour) < 4 {
		return geometry.Quadrilateral{}, false
	}

	tl, tr, br, bl := contour[0], contour[0], contour[0], contour[0]
	for _, p := range contour {
		if p.X+p.Y < tl.X+tl.Y {
			tl = p
		}
		if p.X+p.Y > br.X+br.Y {
			br = p
		}
		if p.X-p.Y > tr.X-tr.Y {
			tr = p
		}
		if p.X-p.Y < bl.X-bl.Y {
			bl = p
		}
	}

	q := geometry.OrderCorners([4]geometry.Point{
		{X: float64(tl.X), Y: float64(tl.Y)},
		{X: float64(tr.X), Y: float64(tr.Y)},
		{X: float64(br.X), Y: float64(br.Y)},
		{X: float64(bl.X), Y: float64(bl.Y)},
	})
	if err := q.Validate(); err != nil {
		return geometry.Quadrilateral{}, false
	}
	return q, true
}

// matchesHint reports whether a quadrilateral's aspect ratio is compatible
// with the expected orientation. Without a hint everything matches; with one,
// candidates clearly in the opposite orientation are filtered out.
func matchesHint(q geometry.Quadrilateral, hint Hint) bool {
	ar := q.AspectRatio()
	if ar == 0 {
		return false
	}
	switch hint {
	case HintPortrait:
		return ar < 1.2
	case HintLandscape:
		return ar > 0.8
	default:
		return true
	}
}
