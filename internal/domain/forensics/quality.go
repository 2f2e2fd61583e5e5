package forensics

import (
	"context"
	"math"

	domainimage "civic-eye-server-go/internal/domain/image"
	"civic-eye-server-go/internal/platform/errors"
)

// QualityAnalyzer measures whether the capture itself is usable evidence:
// blur (Laplacian variance), sensor noise (intensity spread) and exposure
// (mean brightness) each deduct from a perfect score.
type QualityAnalyzer struct {
	cfg Config
}

func NewQualityAnalyzer(cfg Config) *QualityAnalyzer {
	return &QualityAnalyzer{cfg: cfg}
}

func (a *QualityAnalyzer) Name() string { return NameQuality }

func (a *QualityAnalyzer) Analyze(_ context.Context, img *domainimage.DecodedImage) SubScore {
	value, diag, err := a.compute(img)
	if err != nil {
		return SubScore{Name: NameQuality, Value: a.cfg.QualityFallback}
	}
	return SubScore{Name: NameQuality, Value: value, Diagnostics: diag}
}

func (a *QualityAnalyzer) compute(img *domainimage.DecodedImage) (float64, map[string]float64, error) {
	if img == nil || img.Width < 3 || img.Height < 3 {
		return 0, nil, errors.New(errors.KindForensics, "quality.compute", "image too small for focus analysis")
	}

	blur := laplacianVariance(img)
	mean, stddev := lumaStats(img)

	score := 100.0
	switch {
	case blur < a.cfg.BlurSevere:
		score -= 30
	case blur < a.cfg.BlurMild:
		score -= 15
	}
	switch {
	case stddev > a.cfg.NoiseSevere:
		score -= 20
	case stddev > a.cfg.NoiseMild:
		score -= 10
	}
	switch {
	case mean < 30 || mean > 220:
		score -= 15
	case mean < 50 || mean > 200:
		score -= 8
	}

	score = clamp(score, a.cfg.QualityMin, 100)
	diag := map[string]float64{
		"blur_variance": blur,
		"noise_stddev":  stddev,
		"brightness":    mean,
	}
	return score, diag, nil
}

// laplacianVariance returns the variance of the 4-neighbor Laplacian over
// the interior pixels. Sharp captures spread the response wide; defocus
// collapses it toward zero.
func laplacianVariance(img *domainimage.DecodedImage) float64 {
	w, h := img.Width, img.Height
	n := (w - 2) * (h - 2)
	if n <= 0 {
		return 0
	}

	responses := make([]float64, 0, n)
	sum := 0.0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			lap := 4*float64(img.LumaAt(x, y)) -
				float64(img.LumaAt(x-1, y)) - float64(img.LumaAt(x+1, y)) -
				float64(img.LumaAt(x, y-1)) - float64(img.LumaAt(x, y+1))
			responses = append(responses, lap)
			sum += lap
		}
	}

	mean := sum / float64(n)
	variance := 0.0
	for _, lap := range responses {
		d := lap - mean
		variance += d * d
	}
	return variance / float64(n)
}

// lumaStats returns the mean and population standard deviation of the
// grayscale intensities.
func lumaStats(img *domainimage.DecodedImage) (mean, stddev float64) {
	luma := img.Luma()
	n := float64(len(luma))
	if n == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range luma {
		sum += float64(v)
	}
	mean = sum / n

	variance := 0.0
	for _, v := range luma {
		d := float64(v) - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / n)
}
