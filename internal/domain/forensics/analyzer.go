package forensics

import (
	"context"

	domainimage "civic-eye-server-go/internal/domain/image"
)

// Sub-score names, also used as keys in the trust explanation.
const (
	NameELA      = "ela"
	NameMetadata = "metadata"
	NameShadow   = "shadow"
	NameQuality  = "quality"
)

// SubScore is one heuristic's independent 0-100 authenticity estimate.
// Higher means more consistent with an authentic, unedited photo.
type SubScore struct {
	Name        string             `json:"name"`
	Value       float64            `json:"value"`
	Diagnostics map[string]float64 `json:"diagnostics,omitempty"`
}

// Analyzer produces a sub-score from the shared immutable decoded image.
// Implementations absorb their own failures: Analyze never returns an
// error, it substitutes the analyzer's documented neutral constant so a
// partial forensic read still yields a usable trust score.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, img *domainimage.DecodedImage) SubScore
}

// Config enumerates every tunable the four analyzers use, including the
// neutral fallback constants downstream priority decisions depend on.
type Config struct {
	// ELA
	ELAQuality int     `yaml:"ela_quality"`
	ELAGain    float64 `yaml:"ela_gain"`
	ELANeutral float64 `yaml:"ela_neutral"`

	// Metadata
	MetadataMissing   float64  `yaml:"metadata_missing"`
	MetadataFallback  float64  `yaml:"metadata_fallback"`
	MetadataDeduction float64  `yaml:"metadata_deduction"`
	MetadataFloor     float64  `yaml:"metadata_floor"`
	EditorTokens      []string `yaml:"editor_tokens"`

	// Edge/shadow
	EdgeLowThreshold  float64 `yaml:"edge_low_threshold"`
	EdgeHighThreshold float64 `yaml:"edge_high_threshold"`
	ShadowMinContours int     `yaml:"shadow_min_contours"`
	ShadowSparse      float64 `yaml:"shadow_sparse"`
	ShadowBase        float64 `yaml:"shadow_base"`
	ShadowDensityMin  float64 `yaml:"shadow_density_min"`
	ShadowDensityMax  float64 `yaml:"shadow_density_max"`
	ShadowDensityCut  float64 `yaml:"shadow_density_cut"`
	ShadowFloor       float64 `yaml:"shadow_floor"`
	ShadowFallback    float64 `yaml:"shadow_fallback"`

	// Quality
	BlurSevere      float64 `yaml:"blur_severe"`
	BlurMild        float64 `yaml:"blur_mild"`
	NoiseSevere     float64 `yaml:"noise_severe"`
	NoiseMild       float64 `yaml:"noise_mild"`
	QualityMin      float64 `yaml:"quality_min"`
	QualityFallback float64 `yaml:"quality_fallback"`
}

// DefaultConfig returns the canonical tuning. The fallback constants
// (50, 60/70, 55/70, 70) must stay as documented: reproducibility of
// downstream priority decisions depends on them.
func DefaultConfig() Config {
	return Config{
		ELAQuality: 90,
		ELAGain:    10,
		ELANeutral: 50,

		MetadataMissing:   60,
		MetadataFallback:  70,
		MetadataDeduction: 25,
		MetadataFloor:     50,
		EditorTokens:      []string{"photoshop", "gimp", "paint", "editor"},

		EdgeLowThreshold:  50,
		EdgeHighThreshold: 150,
		ShadowMinContours: 3,
		ShadowSparse:      55,
		ShadowBase:        80,
		ShadowDensityMin:  0.01,
		ShadowDensityMax:  0.5,
		ShadowDensityCut:  20,
		ShadowFloor:       50,
		ShadowFallback:    70,

		BlurSevere:      50,
		BlurMild:        100,
		NoiseSevere:     50,
		NoiseMild:       35,
		QualityMin:      30,
		QualityFallback: 70,
	}
}

// All returns the four analyzers in their canonical order. Order is
// irrelevant for correctness; the engine runs them fork-join anyway.
func All(cfg Config) []Analyzer {
	return []Analyzer{
		NewELAAnalyzer(cfg),
		NewMetadataAnalyzer(cfg),
		NewShadowAnalyzer(cfg),
		NewQualityAnalyzer(cfg),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
