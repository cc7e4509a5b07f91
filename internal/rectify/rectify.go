package rectify

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/framescan/framescan/internal/geometry"
)

var (
	// ErrTimeout indicates the rectification deadline expired mid-warp.
	ErrTimeout = errors.New("rectification timed out")

	// ErrComputeFailed indicates the homography could not be computed,
	// typically because the corner set is degenerate or near-collinear.
	ErrComputeFailed = errors.New("homography computation failed")
)

// DefaultTimeout bounds a rectification call when the request does not set
// its own deadline.
const DefaultTimeout = 5 * time.Second

// rowBand is how many output rows are warped between cancellation checks.
const rowBand = 32

// Quality selects the resampling filter.
type Quality int

const (
	// QualityBest resamples with bilinear interpolation.
	QualityBest Quality = iota
	// QualityFast resamples nearest-neighbor, trading fidelity for speed.
	QualityFast
)

// String returns the quality name for logs and config files.
func (q Quality) String() string {
	if q == QualityFast {
		return "fast"
	}
	return "best"
}

// Request describes one rectification. A zero OutputWidth/OutputHeight asks
// for dimensions derived from the quadrilateral's average edge lengths, which
// preserves the print's apparent aspect ratio.
type Request struct {
	Source       image.Image
	Quad         geometry.Quadrilateral
	OutputWidth  int
	OutputHeight int
	Quality      Quality
	Timeout      time.Duration
}

// Result is the one-shot outcome of a rectification. On failure OK is false,
// Err holds the cause, and Image is nil; the caller substitutes the original
// unrectified source.
type Result struct {
	OK             bool
	Image          image.Image
	Err            error
	ProcessingTime time.Duration
}

// Rectifier warps quadrilateral regions into upright rectangles. It holds no
// per-request state and is safe for concurrent use.
type Rectifier struct {
	log logrus.FieldLogger
}

// New creates a rectifier. A nil logger discards.
func New(log logrus.FieldLogger) *Rectifier {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Rectifier{log: log}
}

// Rectify computes the homography from the output rectangle onto the request
// quadrilateral and resamples the source through it.
//
// # Algorithm
//
// The transform is built in the inverse direction, destination to source, so
// the warp loop walks output pixels and samples the source at the mapped
// position. Inverse mapping guarantees every output pixel is filled exactly
// once with no holes, which a forward mapping cannot. Samples falling outside
// the source bounds come back black.
//
// The loop checks for cancellation every rowBand output rows; on expiry the
// partial output is discarded and the result carries ErrTimeout.
func (r *Rectifier) Rectify(ctx context.Context, req Request) Result {
	start := time.Now()

	fail := func(err error) Result {
		r.log.WithError(err).Warn("rectification failed")
		return Result{Err: err, ProcessingTime: time.Since(start)}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if req.Source == nil {
		return fail(fmt.Errorf("%w: nil source image", ErrComputeFailed))
	}
	if err := req.Quad.Validate(); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrComputeFailed, err))
	}

	width, height := req.OutputWidth, req.OutputHeight
	if width <= 0 || height <= 0 {
		width, height = outputSize(req.Quad)
	}

	dst := [4]geometry.Point{
		{X: 0, Y: 0},
		{X: float64(width - 1), Y: 0},
		{X: float64(width - 1), Y: float64(height - 1)},
		{X: 0, Y: float64(height - 1)},
	}
	h, ok := computeHomography(dst, req.Quad.Corners())
	if !ok {
		return fail(fmt.Errorf("%w: singular corner configuration", ErrComputeFailed))
	}

	out, err := r.warp(ctx, req.Source, h, width, height, req.Quality)
	if err != nil {
		return fail(err)
	}

	elapsed := time.Since(start)
	r.log.WithFields(logrus.Fields{
		"output_width":  width,
		"output_height": height,
		"quality":       req.Quality.String(),
		"elapsed":       elapsed,
	}).Debug("rectification complete")
	return Result{OK: true, Image: out, ProcessingTime: elapsed}
}

// warp fills an output image by inverse-mapping each pixel through h.
func (r *Rectifier) warp(ctx context.Context, src image.Image, h Homography, width, height int, quality Quality) (*image.RGBA, error) {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	bounds := src.Bounds()

	for y := 0; y < height; y++ {
		if y%rowBand == 0 {
			select {
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return nil, ErrTimeout
				}
				return nil, ctx.Err()
			default:
			}
		}
		for x := 0; x < width; x++ {
			sx, sy := h.Apply(float64(x), float64(y))
			if quality == QualityFast {
				out.Set(x, y, nearestSample(src, bounds, sx, sy))
			} else {
				out.Set(x, y, bilinearSample(src, bounds, sx, sy))
			}
		}
	}
	return out, nil
}

// outputSize derives output dimensions from the quadrilateral's average
// opposite-edge lengths, so a print photographed at an angle keeps its
// apparent aspect ratio.
func outputSize(q geometry.Quadrilateral) (int, int) {
	e := q.EdgeLengths()
	width := int((e[0]+e[2])/2 + 0.5)
	height := int((e[1]+e[3])/2 + 0.5)
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// bilinearSample interpolates the four pixels around (x, y). Coordinates
// outside the source come back black.
func bilinearSample(src image.Image, b image.Rectangle, x, y float64) color.Color {
	if x < float64(b.Min.X) || y < float64(b.Min.Y) ||
		x > float64(b.Max.X-1) || y > float64(b.Max.Y-1) {
		return color.RGBA{0, 0, 0, 255}
	}

	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 >= b.Max.X {
		x1 = b.Max.X - 1
	}
	if y1 >= b.Max.Y {
		y1 = b.Max.Y - 1
	}
	fx := x - float64(x0)
	fy := y - float64(y0)

	c00 := channelValues(src.At(x0, y0))
	c10 := channelValues(src.At(x1, y0))
	c01 := channelValues(src.At(x0, y1))
	c11 := channelValues(src.At(x1, y1))

	var out [4]float64
	for i := 0; i < 4; i++ {
		top := lerp(c00[i], c10[i], fx)
		bot := lerp(c01[i], c11[i], fx)
		out[i] = lerp(top, bot, fy)
	}
	return color.RGBA{
		R: uint8(out[0] + 0.5),
		G: uint8(out[1] + 0.5),
		B: uint8(out[2] + 0.5),
		A: uint8(out[3] + 0.5),
	}
}

// nearestSample rounds (x, y) to the closest source pixel.
func nearestSample(src image.Image, b image.Rectangle, x, y float64) color.Color {
	xi, yi := int(x+0.5), int(y+0.5)
	if xi < b.Min.X || yi < b.Min.Y || xi >= b.Max.X || yi >= b.Max.Y {
		return color.RGBA{0, 0, 0, 255}
	}
	return src.At(xi, yi)
}

func channelValues(c color.Color) [4]float64 {
	r, g, b, a := c.RGBA()
	return [4]float64{float64(r >> 8), float64(g >> 8), float64(b >> 8), float64(a >> 8)}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
