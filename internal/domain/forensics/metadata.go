package forensics

import (
	"context"
	"strings"

	domainimage "civic-eye-server-go/internal/domain/image"
)

// MetadataAnalyzer inspects EXIF evidence. Editing software leaves its name
// in the Software/ProcessingSoftware fields; each such trace deducts from a
// perfect score. Absent metadata is only mildly suspicious: messaging apps
// and privacy-minded uploaders strip EXIF routinely.
type MetadataAnalyzer struct {
	cfg Config
}

func NewMetadataAnalyzer(cfg Config) *MetadataAnalyzer {
	return &MetadataAnalyzer{cfg: cfg}
}

func (a *MetadataAnalyzer) Name() string { return NameMetadata }

func (a *MetadataAnalyzer) Analyze(_ context.Context, img *domainimage.DecodedImage) SubScore {
	if img == nil {
		return SubScore{Name: NameMetadata, Value: a.cfg.MetadataFallback}
	}
	return a.score(img.Metadata())
}

func (a *MetadataAnalyzer) score(meta *domainimage.Metadata) SubScore {
	if meta.Empty() {
		return SubScore{
			Name:        NameMetadata,
			Value:       a.cfg.MetadataMissing,
			Diagnostics: map[string]float64{"fields": 0},
		}
	}

	fields := meta.Fields()
	score := 100.0
	hits := 0.0
	for _, software := range meta.SoftwareFields() {
		if a.matchesEditor(software) {
			score -= a.cfg.MetadataDeduction
			hits++
		}
	}
	if score < a.cfg.MetadataFloor {
		score = a.cfg.MetadataFloor
	}

	return SubScore{
		Name:  NameMetadata,
		Value: score,
		Diagnostics: map[string]float64{
			"fields":      float64(len(fields)),
			"editor_hits": hits,
		},
	}
}

func (a *MetadataAnalyzer) matchesEditor(value string) bool {
	lowered := strings.ToLower(value)
	for _, token := range a.cfg.EditorTokens {
		if strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}
