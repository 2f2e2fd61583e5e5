package forensics

import (
	"context"
	"image/color"
	"testing"

	domainimage "civic-eye-server-go/internal/domain/image"
	platformtesting "civic-eye-server-go/internal/platform/testing"
)

func decodeForTest(t *testing.T, raw []byte) *domainimage.DecodedImage {
	t.Helper()
	cfg := platformtesting.SetupTestConfig(t)
	decoder := domainimage.NewDecoder(cfg.Engine, platformtesting.SetupTestLogger(t))
	decoded, err := decoder.Decode(raw)
	if err != nil {
		t.Fatalf("decode test image: %v", err)
	}
	return decoded
}

func TestELAFlatImageScoresHigh(t *testing.T) {
	img := decodeForTest(t, platformtesting.EncodePNG(t,
		platformtesting.FlatImage(32, 32, color.RGBA{R: 128, G: 128, B: 128, A: 255})))

	got := NewELAAnalyzer(DefaultConfig()).Analyze(context.Background(), img)
	if got.Name != NameELA {
		t.Fatalf("unexpected name: %s", got.Name)
	}
	// A uniform field recompresses almost losslessly.
	if got.Value < 90 {
		t.Errorf("flat image ELA = %.2f, expected >= 90", got.Value)
	}
	if _, ok := got.Diagnostics["max_difference"]; !ok {
		t.Error("expected max_difference diagnostic")
	}
}

func TestELACheckerboardScoresLow(t *testing.T) {
	img := decodeForTest(t, platformtesting.EncodePNG(t, platformtesting.CheckerImage(32, 32, 2)))

	got := NewELAAnalyzer(DefaultConfig()).Analyze(context.Background(), img)
	// Sharp transitions ring hard under JPEG recompression; amplified
	// differences saturate and the score collapses.
	if got.Value > 50 {
		t.Errorf("checkerboard ELA = %.2f, expected <= 50", got.Value)
	}
}

func TestELANeutralOnDegenerateImage(t *testing.T) {
	got := NewELAAnalyzer(DefaultConfig()).Analyze(context.Background(), nil)
	if got.Value != 50 {
		t.Errorf("degenerate image ELA = %.2f, expected neutral 50", got.Value)
	}
}
