package imaging

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// BorderStats summarizes the color relationship between the outer border of
// a frame and its central region.
//
// The enhanced-contrast strategy uses these numbers to decide how hard to
// push preprocessing: a small Separation means the print blends into the
// background and needs a stronger contrast boost and lower edge thresholds.
type BorderStats struct {
	// BorderLuminance is the mean CIE-Lab L* of the border band, 0-100.
	BorderLuminance float64 `json:"border_luminance"`

	// CenterLuminance is the mean CIE-Lab L* of the central region, 0-100.
	CenterLuminance float64 `json:"center_luminance"`

	// Separation is the CIE-Lab distance between the mean border color and
	// the mean center color. Values under ~10 indicate a print that barely
	// stands out from its background.
	Separation float64 `json:"separation"`
}

// ComputeBorderStats samples a border band (outer 10% on each side) and the
// central 50% region of the image, averages each in Lab space, and reports
// their separation. Sampling is strided so the cost stays bounded for large
// frames.
func ComputeBorderStats(img image.Image) BorderStats {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return BorderStats{}
	}

	bandW := width / 10
	bandH := height / 10
	if bandW < 1 {
		bandW = 1
	}
	if bandH < 1 {
		bandH = 1
	}

	// Stride keeps total samples around a few thousand per region.
	stride := width * height / 40000
	if stride < 1 {
		stride = 1
	}

	var bl, ba, bb float64
	borderN := 0
	var cl, ca, cb float64
	centerN := 0

	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i++
			if i%stride != 0 {
				continue
			}
			inBorder := x < bandW || x >= width-bandW || y < bandH || y >= height-bandH
			inCenter := x >= width/4 && x < width*3/4 && y >= height/4 && y < height*3/4
			if !inBorder && !inCenter {
				continue
			}
			c, ok := colorful.MakeColor(img.At(x+bounds.Min.X, y+bounds.Min.Y))
			if !ok {
				continue
			}
			l, a, b := c.Lab()
			if inBorder {
				bl += l
				ba += a
				bb += b
				borderN++
			} else {
				cl += l
				ca += a
				cb += b
				centerN++
			}
		}
	}

	if borderN == 0 || centerN == 0 {
		return BorderStats{}
	}

	borderMean := colorful.Lab(bl/float64(borderN), ba/float64(borderN), bb/float64(borderN))
	centerMean := colorful.Lab(cl/float64(centerN), ca/float64(centerN), cb/float64(centerN))

	return BorderStats{
		BorderLuminance: bl / float64(borderN) * 100,
		CenterLuminance: cl / float64(centerN) * 100,
		Separation:      borderMean.DistanceLab(centerMean) * 100,
	}
}
