package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createTestImage creates a solid-colored RGBA image.
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createRectImage draws a filled dark rectangle on a white canvas.
func createRectImage(width, height, x1, y1, x2, y2 int) *image.RGBA {
	img := createTestImage(width, height, color.White)
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, color.RGBA{40, 40, 40, 255})
		}
	}
	return img
}

func countEdges(edges [][]bool) int {
	n := 0
	for _, row := range edges {
		for _, e := range row {
			if e {
				n++
			}
		}
	}
	return n
}

func TestEdgeMask_FindsRectangleOutline(t *testing.T) {
	img := createRectImage(100, 100, 20, 20, 80, 80)

	edges := EdgeMask(img, 50, 150)

	if len(edges) != 100 || len(edges[0]) != 100 {
		t.Fatalf("mask dimensions = %dx%d, want 100x100", len(edges[0]), len(edges))
	}
	n := countEdges(edges)
	// The rectangle perimeter is 4*60 = 240 pixels; hysteresis and NMS keep
	// edges thin, so the count should be in that neighborhood.
	if n < 120 || n > 600 {
		t.Errorf("edge count = %d, want roughly one rectangle outline", n)
	}
}

func TestEdgeMask_UniformImageHasNoEdges(t *testing.T) {
	img := createTestImage(50, 50, color.RGBA{128, 128, 128, 255})

	edges := EdgeMask(img, 50, 150)

	if n := countEdges(edges); n != 0 {
		t.Errorf("edge count = %d on uniform image, want 0", n)
	}
}

func TestGradientMask_FindsBoundary(t *testing.T) {
	img := createRectImage(60, 60, 15, 15, 45, 45)

	edges := GradientMask(img, 30)

	if n := countEdges(edges); n == 0 {
		t.Error("gradient mask found no edges around a high-contrast rectangle")
	}
}

func TestGradientMask_BorderNeverEdges(t *testing.T) {
	img := createRectImage(40, 40, 0, 0, 40, 40)

	edges := GradientMask(img, 10)

	for x := 0; x < 40; x++ {
		if edges[0][x] || edges[39][x] {
			t.Fatal("border rows must never be edges")
		}
	}
	for y := 0; y < 40; y++ {
		if edges[y][0] || edges[y][39] {
			t.Fatal("border columns must never be edges")
		}
	}
}

func TestGrayscale_Range(t *testing.T) {
	img := createTestImage(10, 10, color.White)
	gray := Grayscale(img)
	if v := gray[5][5]; v < 0.99 || v > 1.0 {
		t.Errorf("white luminance = %v, want ~1.0", v)
	}

	img = createTestImage(10, 10, color.Black)
	gray = Grayscale(img)
	if v := gray[5][5]; v != 0 {
		t.Errorf("black luminance = %v, want 0", v)
	}
}
