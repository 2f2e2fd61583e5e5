package trust

// Priority is the dispatch tier a report lands in.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// ClassifierConfig holds the per-issue base severities and the tier cutoffs.
type ClassifierConfig struct {
	BaseSeverity map[IssueType]float64 `yaml:"base_severity"`
	HighCutoff   float64               `yaml:"high_cutoff"`
	MediumCutoff float64               `yaml:"medium_cutoff"`
}

func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		BaseSeverity: map[IssueType]float64{
			IssueFire:      95,
			IssueAccident:  90,
			IssueRoadBlock: 80,
			IssueWaterLeak: 70,
			IssuePothole:   60,
			IssueGarbage:   50,
			IssueOther:     40,
		},
		HighCutoff:   85,
		MediumCutoff: 60,
	}
}

// Classifier maps issue type and trust score to severity and priority.
// Low-trust evidence discounts the issue's base severity: a claimed fire
// backed by a doctored photo must not jump the dispatch queue.
type Classifier struct {
	cfg ClassifierConfig
}

func NewClassifier(cfg ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify returns the trust-adjusted severity and its priority tier.
func (c *Classifier) Classify(issueType IssueType, trustScore float64) (severity float64, priority Priority) {
	severity, ok := c.cfg.BaseSeverity[issueType]
	if !ok {
		severity = c.cfg.BaseSeverity[IssueOther]
	}

	switch {
	case trustScore < 40:
		severity = maxFloat(severity-30, 20)
	case trustScore < 60:
		severity = maxFloat(severity-15, 30)
	case trustScore < 80:
		severity = maxFloat(severity-5, 40)
	}

	switch {
	case severity >= c.cfg.HighCutoff:
		priority = PriorityHigh
	case severity >= c.cfg.MediumCutoff:
		priority = PriorityMedium
	default:
		priority = PriorityLow
	}
	return severity, priority
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
