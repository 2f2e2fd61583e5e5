package forensics

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"

	domainimage "civic-eye-server-go/internal/domain/image"
	"civic-eye-server-go/internal/platform/errors"
)

// ELAAnalyzer performs Error Level Analysis: recompressing a lossy image at
// a fixed quality and diffing against the original exposes regions that
// were edited, because they recompress differently than untouched regions.
type ELAAnalyzer struct {
	cfg Config
}

func NewELAAnalyzer(cfg Config) *ELAAnalyzer {
	return &ELAAnalyzer{cfg: cfg}
}

func (a *ELAAnalyzer) Name() string { return NameELA }

func (a *ELAAnalyzer) Analyze(_ context.Context, img *domainimage.DecodedImage) SubScore {
	value, diag, err := a.compute(img)
	if err != nil {
		// Neutral on failure; an unreadable recompression pass must not
		// fail the request.
		return SubScore{Name: NameELA, Value: a.cfg.ELANeutral}
	}
	return SubScore{Name: NameELA, Value: value, Diagnostics: diag}
}

func (a *ELAAnalyzer) compute(img *domainimage.DecodedImage) (float64, map[string]float64, error) {
	if img == nil || img.Pixels() == 0 {
		return 0, nil, errors.New(errors.KindForensics, "ela.compute", "degenerate image")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img.Std(), &jpeg.Options{Quality: a.cfg.ELAQuality}); err != nil {
		return 0, nil, errors.Wrap(errors.KindForensics, "ela.compute", "recompress image", err)
	}

	recompressed, err := jpeg.Decode(&buf)
	if err != nil {
		return 0, nil, errors.Wrap(errors.KindForensics, "ela.compute", "decode recompressed image", err)
	}

	rb := recompressed.Bounds()
	if rb.Dx() != img.Width || rb.Dy() != img.Height {
		return 0, nil, errors.New(errors.KindForensics, "ela.compute",
			fmt.Sprintf("recompressed dimensions drifted: %dx%d", rb.Dx(), rb.Dy()))
	}

	// Amplified per-pixel difference, clipped at the channel maximum; the
	// extremum across every channel and pixel drives the score.
	extremum := 0.0
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r0, g0, b0 := img.RGBAt(x, y)
			r16, g16, b16, _ := recompressed.At(rb.Min.X+x, rb.Min.Y+y).RGBA()

			for _, d := range [3]float64{
				absDiff(r0, uint8(r16>>8)),
				absDiff(g0, uint8(g16>>8)),
				absDiff(b0, uint8(b16>>8)),
			} {
				amplified := clamp(d*a.cfg.ELAGain, 0, 255)
				if amplified > extremum {
					extremum = amplified
				}
			}
		}
	}

	score := clamp(100-extremum/2.55, 0, 100)
	diag := map[string]float64{"max_difference": extremum}
	return score, diag, nil
}

func absDiff(a, b uint8) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}
