package detect

import (
	"image"
	"image/color"
	"testing"

	"github.com/framescan/framescan/internal/geometry"
	"github.com/framescan/framescan/internal/score"
)

// printScene draws a filled print rectangle on a plain background.
func printScene(width, height, x1, y1, x2, y2 int, bg, fg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, bg)
		}
	}
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, fg)
		}
	}
	return img
}

// assertQuadNear checks every corner of got against the expected rectangle
// corners within tol pixels.
func assertQuadNear(t *testing.T, got geometry.Quadrilateral, x1, y1, x2, y2, tol float64) {
	t.Helper()
	want := geometry.Quadrilateral{
		TopLeft:     geometry.Point{X: x1, Y: y1},
		TopRight:    geometry.Point{X: x2, Y: y1},
		BottomRight: geometry.Point{X: x2, Y: y2},
		BottomLeft:  geometry.Point{X: x1, Y: y2},
	}
	gc := got.Corners()
	wc := want.Corners()
	for i := range gc {
		if d := gc[i].Dist(wc[i]); d > tol {
			t.Errorf("corner %d = %+v, want near %+v (off by %.1f, tol %.1f)", i, gc[i], wc[i], d, tol)
		}
	}
}

var (
	darkGray  = color.RGBA{60, 60, 60, 255}
	offWhite  = color.RGBA{245, 245, 245, 255}
	softGray  = color.RGBA{90, 90, 90, 255}
	lightGray = color.RGBA{150, 150, 150, 255}
)

func TestQuickStrategy_DetectsAndScalesBack(t *testing.T) {
	// 1600px frame forces the downsample path; corners must come back in
	// source coordinates.
	img := printScene(1600, 1200, 200, 150, 1400, 1050, offWhite, darkGray)
	s := &QuickStrategy{Config: DefaultQuickConfig()}

	q, ok := s.Detect(img, HintNone)
	if !ok {
		t.Fatal("quick strategy found nothing")
	}
	assertQuadNear(t, q, 200, 150, 1400, 1050, 30)
}

func TestQuickStrategy_EmptySceneFindsNothing(t *testing.T) {
	img := printScene(400, 300, 0, 0, 0, 0, offWhite, offWhite)
	s := &QuickStrategy{Config: DefaultQuickConfig()}

	if _, ok := s.Detect(img, HintNone); ok {
		t.Error("quick strategy hallucinated a quad on a uniform image")
	}
}

func TestStandardStrategy_Detects(t *testing.T) {
	img := printScene(400, 300, 50, 40, 350, 260, offWhite, darkGray)
	s := &StandardStrategy{Config: DefaultCannyConfig()}

	q, ok := s.Detect(img, HintNone)
	if !ok {
		t.Fatal("standard strategy found nothing")
	}
	assertQuadNear(t, q, 50, 40, 350, 260, 5)
}

func TestEnhancedStrategy_LowContrastScene(t *testing.T) {
	// Moderate-contrast scene that the enhanced preprocessing should
	// resolve with its relaxed thresholds.
	img := printScene(400, 300, 60, 50, 340, 250, softGray, lightGray)
	s := &EnhancedStrategy{Config: DefaultEnhancedConfig()}

	q, ok := s.Detect(img, HintNone)
	if !ok {
		t.Fatal("enhanced strategy found nothing")
	}
	assertQuadNear(t, q, 60, 50, 340, 250, 8)
}

func TestContourStrategy_PicksBestBlob(t *testing.T) {
	// A bright print plus a small bright distractor blob: the strategy
	// must keep the print (the distractor fails the area cut and scores
	// worse anyway).
	img := printScene(200, 200, 50, 50, 150, 150, color.RGBA{40, 40, 40, 255}, color.RGBA{220, 220, 220, 255})
	for y := 5; y < 15; y++ {
		for x := 5; x < 15; x++ {
			img.Set(x, y, color.RGBA{220, 220, 220, 255})
		}
	}

	scorer := score.NewScorer(score.DefaultWeights())
	s := NewContourStrategy(DefaultContourConfig(), scorer)

	q, ok := s.Detect(img, HintNone)
	if !ok {
		t.Fatal("contour strategy found nothing")
	}
	assertQuadNear(t, q, 50, 50, 149, 149, 4)
}

func TestContourStrategy_DarkPrintOnBright(t *testing.T) {
	// Inverted polarity: dark print on a bright surface.
	img := printScene(200, 200, 40, 60, 160, 140, color.RGBA{230, 230, 230, 255}, color.RGBA{35, 35, 35, 255})

	scorer := score.NewScorer(score.DefaultWeights())
	s := NewContourStrategy(DefaultContourConfig(), scorer)

	q, ok := s.Detect(img, HintNone)
	if !ok {
		t.Fatal("contour strategy found nothing on inverted polarity")
	}
	assertQuadNear(t, q, 40, 60, 159, 139, 4)
}

func TestLinesStrategy_Detects(t *testing.T) {
	img := printScene(400, 300, 60, 50, 340, 250, color.White, color.Black)
	s := &LinesStrategy{Config: DefaultLinesConfig()}

	q, ok := s.Detect(img, HintNone)
	if !ok {
		t.Fatal("lines strategy found nothing")
	}
	assertQuadNear(t, q, 60, 50, 340, 250, 6)
}

func TestStrategies_HintFiltersOppositeOrientation(t *testing.T) {
	// A clearly landscape print must be rejected under a portrait hint.
	img := printScene(400, 300, 50, 100, 350, 200, offWhite, darkGray)
	s := &StandardStrategy{Config: DefaultCannyConfig()}

	if _, ok := s.Detect(img, HintPortrait); ok {
		t.Error("landscape quad accepted under portrait hint")
	}
	if _, ok := s.Detect(img, HintLandscape); !ok {
		t.Error("landscape quad rejected under landscape hint")
	}
}

func TestBuildStrategies_FixedOrder(t *testing.T) {
	scorer := score.NewScorer(score.DefaultWeights())
	strategies := BuildStrategies(DefaultStrategyConfig(), scorer)

	want := []string{"quick", "standard", "enhanced", "contour", "lines"}
	if len(strategies) != len(want) {
		t.Fatalf("strategy count = %d, want %d", len(strategies), len(want))
	}
	for i, name := range want {
		if strategies[i].Name() != name {
			t.Errorf("strategies[%d] = %q, want %q", i, strategies[i].Name(), name)
		}
	}
}

func TestQuadFromContour_Rectangle(t *testing.T) {
	var contour []pixel
	for x := 10; x <= 110; x++ {
		contour = append(contour, pixel{X: x, Y: 20}, pixel{X: x, Y: 80})
	}
	for y := 20; y <= 80; y++ {
		contour = append(contour, pixel{X: 10, Y: y}, pixel{X: 110, Y: y})
	}

	q, ok := quadFromContour(contour)
	if !ok {
		t.Fatal("quadFromContour rejected a clean rectangle outline")
	}
	assertQuadNear(t, q, 10, 20, 110, 80, 1)
}

func TestQuadFromContour_TooFewPoints(t *testing.T) {
	if _, ok := quadFromContour([]pixel{{1, 1}, {2, 2}}); ok {
		t.Error("quadFromContour accepted a 2-point contour")
	}
}

func TestFindContours_SeparatesComponents(t *testing.T) {
	mask := make([][]bool, 100)
	for y := range mask {
		mask[y] = make([]bool, 100)
	}
	for y := 10; y < 30; y++ {
		for x := 10; x < 30; x++ {
			mask[y][x] = true
		}
	}
	for y := 60; y < 90; y++ {
		for x := 60; x < 90; x++ {
			mask[y][x] = true
		}
	}

	contours := findContours(mask)
	if len(contours) != 2 {
		t.Fatalf("contour count = %d, want 2", len(contours))
	}
	if len(largestContour(contours)) != 30*30 {
		t.Errorf("largest contour size = %d, want 900", len(largestContour(contours)))
	}
}

func TestHoughQuad_SyntheticEdges(t *testing.T) {
	// Hand-built edge mask: a 1px rectangle outline.
	mask := make([][]bool, 300)
	for y := range mask {
		mask[y] = make([]bool, 400)
	}
	for x := 60; x <= 340; x++ {
		mask[50][x] = true
		mask[250][x] = true
	}
	for y := 50; y <= 250; y++ {
		mask[y][60] = true
		mask[y][340] = true
	}

	q, ok := houghQuad(mask, 75)
	if !ok {
		t.Fatal("houghQuad found no quad in a clean rectangle outline")
	}
	assertQuadNear(t, q, 60, 50, 340, 250, 3)
}

func TestHoughQuad_EmptyMask(t *testing.T) {
	mask := make([][]bool, 100)
	for y := range mask {
		mask[y] = make([]bool, 100)
	}
	if _, ok := houghQuad(mask, 20); ok {
		t.Error("houghQuad hallucinated a quad in an empty mask")
	}
}

func TestMatchesHint(t *testing.T) {
	portrait := geometry.Quadrilateral{
		TopLeft:     geometry.Point{X: 0, Y: 0},
		TopRight:    geometry.Point{X: 100, Y: 0},
		BottomRight: geometry.Point{X: 100, Y: 150},
		BottomLeft:  geometry.Point{X: 0, Y: 150},
	}
	if !matchesHint(portrait, HintNone) {
		t.Error("HintNone must match everything")
	}
	if !matchesHint(portrait, HintPortrait) {
		t.Error("portrait quad must match portrait hint")
	}
	if matchesHint(portrait, HintLandscape) {
		t.Error("portrait quad (ratio 0.67) must fail landscape hint")
	}
}
