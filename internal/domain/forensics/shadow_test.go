package forensics

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"

	platformtesting "civic-eye-server-go/internal/platform/testing"
)

// squaresImage draws isolated white squares on black so the edge map splits
// into one contour per square.
func squaresImage(t *testing.T, squares int) *image.RGBA {
	t.Helper()
	img := platformtesting.FlatImage(64, 64, color.RGBA{A: 255})
	white := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	positions := []image.Point{{8, 8}, {36, 8}, {8, 36}, {36, 36}}
	for i := 0; i < squares && i < len(positions); i++ {
		p := positions[i]
		draw.Draw(img, image.Rect(p.X, p.Y, p.X+10, p.Y+10), white, image.Point{}, draw.Src)
	}
	return img
}

func TestShadowFlatImageIsSparse(t *testing.T) {
	img := decodeForTest(t, platformtesting.EncodePNG(t,
		platformtesting.FlatImage(32, 32, color.RGBA{R: 128, G: 128, B: 128, A: 255})))

	got := NewShadowAnalyzer(DefaultConfig()).Analyze(context.Background(), img)
	if got.Value != 55 {
		t.Errorf("flat image shadow = %.2f, expected sparse 55", got.Value)
	}
	if got.Diagnostics["contours"] != 0 {
		t.Errorf("flat image contours = %v, expected 0", got.Diagnostics["contours"])
	}
}

func TestShadowCountsSeparateContours(t *testing.T) {
	img := decodeForTest(t, platformtesting.EncodePNG(t, squaresImage(t, 4)))

	got := NewShadowAnalyzer(DefaultConfig()).Analyze(context.Background(), img)
	if got.Diagnostics["contours"] != 4 {
		t.Errorf("contours = %v, expected 4", got.Diagnostics["contours"])
	}
	if got.Value != 80 {
		t.Errorf("four-square shadow = %.2f, expected base 80", got.Value)
	}
}

func TestShadowSparseBelowContourMinimum(t *testing.T) {
	img := decodeForTest(t, platformtesting.EncodePNG(t, squaresImage(t, 2)))

	got := NewShadowAnalyzer(DefaultConfig()).Analyze(context.Background(), img)
	if got.Value != 55 {
		t.Errorf("two-contour shadow = %.2f, expected sparse 55", got.Value)
	}
}

func TestShadowDensityPenalty(t *testing.T) {
	cfg := DefaultConfig()
	// Tighten the density band so the four-square scene lands outside it.
	cfg.ShadowDensityMax = 0.001

	img := decodeForTest(t, platformtesting.EncodePNG(t, squaresImage(t, 4)))
	got := NewShadowAnalyzer(cfg).Analyze(context.Background(), img)
	if got.Value != 60 {
		t.Errorf("dense shadow = %.2f, expected 80-20", got.Value)
	}
}

func TestShadowFallbackOnTinyImage(t *testing.T) {
	img := decodeForTest(t, platformtesting.EncodePNG(t,
		platformtesting.FlatImage(2, 2, color.RGBA{A: 255})))

	got := NewShadowAnalyzer(DefaultConfig()).Analyze(context.Background(), img)
	if got.Value != 70 {
		t.Errorf("tiny image shadow = %.2f, expected fallback 70", got.Value)
	}
}
