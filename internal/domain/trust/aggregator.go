package trust

import (
	"math"

	"civic-eye-server-go/internal/domain/forensics"
)

// AggregatorConfig carries the per-analyzer weights and per-issue
// multipliers the trust score is built from.
type AggregatorConfig struct {
	Weights     map[string]float64    `yaml:"weights"`
	Multipliers map[IssueType]float64 `yaml:"multipliers"`
}

// DefaultAggregatorConfig returns the canonical weighting. The weights sum
// to 1 so an all-100 forensic read maps to 100 before the multiplier.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		Weights: map[string]float64{
			forensics.NameELA:      0.35,
			forensics.NameMetadata: 0.25,
			forensics.NameShadow:   0.20,
			forensics.NameQuality:  0.20,
		},
		Multipliers: map[IssueType]float64{
			IssueAccident:  1.05,
			IssueFire:      1.08,
			IssueRoadBlock: 1.02,
			IssuePothole:   1.0,
			IssueGarbage:   0.98,
			IssueWaterLeak: 1.0,
			IssueOther:     1.0,
		},
	}
}

// Explanation records how the final trust score was reached so a reviewer
// can audit every contribution.
type Explanation struct {
	ELAScore         float64 `json:"ela_score"`
	MetadataScore    float64 `json:"metadata_score"`
	ShadowScore      float64 `json:"shadow_score"`
	QualityScore     float64 `json:"quality_score"`
	IssueTypeWeight  float64 `json:"issue_type_weight"`
	DuplicatePenalty float64 `json:"duplicate_penalty,omitempty"`
}

// Aggregator combines sub-scores into the final 0-100 trust score.
type Aggregator struct {
	cfg AggregatorConfig
}

func NewAggregator(cfg AggregatorConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate weighs the sub-scores, applies the issue-type multiplier and
// any duplicate-sighting penalty, then clamps to [0, 100] and rounds to
// two decimals. Sub-scores for unknown analyzer names carry zero weight.
func (a *Aggregator) Aggregate(scores []forensics.SubScore, issueType IssueType, duplicatePenalty float64) (float64, Explanation) {
	expl := Explanation{DuplicatePenalty: duplicatePenalty}

	weighted := 0.0
	for _, s := range scores {
		weighted += s.Value * a.cfg.Weights[s.Name]
		switch s.Name {
		case forensics.NameELA:
			expl.ELAScore = s.Value
		case forensics.NameMetadata:
			expl.MetadataScore = s.Value
		case forensics.NameShadow:
			expl.ShadowScore = s.Value
		case forensics.NameQuality:
			expl.QualityScore = s.Value
		}
	}

	multiplier, ok := a.cfg.Multipliers[issueType]
	if !ok {
		multiplier = 1.0
	}
	expl.IssueTypeWeight = multiplier

	score := weighted*multiplier - duplicatePenalty
	score = math.Round(clamp(score, 0, 100)*100) / 100
	return score, expl
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
