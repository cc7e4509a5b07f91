package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Downsample resizes an image so its width is at most maxWidth, preserving
// aspect ratio. Returns the resized image and the scale factor needed to map
// coordinates in the result back to the source (>= 1.0). Images already
// within the limit are returned unchanged with scale 1.0.
//
// The Box filter is used: it is the cheapest filter that still averages
// pixels, which is what a detection prepass wants.
func Downsample(img image.Image, maxWidth int) (image.Image, float64) {
	bounds := img.Bounds()
	width := bounds.Dx()
	if width <= maxWidth || maxWidth <= 0 {
		return img, 1.0
	}
	resized := imaging.Resize(img, maxWidth, 0, imaging.Box)
	return resized, float64(width) / float64(maxWidth)
}

// EnhanceContrast applies a light Gaussian denoise followed by a contrast
// boost. The change parameter follows bild conventions: 0 is a no-op,
// positive values increase contrast. Used by the enhanced strategy when the
// print barely separates from the background.
func EnhanceContrast(img image.Image, change float64, blurRadius float64) image.Image {
	out := img
	if blurRadius > 0 {
		out = blur.Gaussian(out, blurRadius)
	}
	if change != 0 {
		out = adjust.Contrast(out, change)
	}
	return out
}

// ThresholdMask binarizes an image at the given luminance level (0-255) and
// returns the result as a boolean matrix, true where the pixel is at or
// above the level. The contour strategy uses this to segment a bright print
// from a darker background (or vice versa, by inverting the level choice).
func ThresholdMask(img image.Image, level uint8) [][]bool {
	gray := segment.Threshold(img, level)
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	mask := make([][]bool, height)
	for y := 0; y < height; y++ {
		mask[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			mask[y][x] = gray.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y >= 128
		}
	}
	return mask
}
