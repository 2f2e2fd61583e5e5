// Package engine orchestrates the full analysis pipeline: decode the upload
// once, run every forensic analyzer over the shared pixel views, aggregate a
// trust score and classify the report for dispatch.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"civic-eye-server-go/internal/domain/duplicate"
	"civic-eye-server-go/internal/domain/eventbus"
	"civic-eye-server-go/internal/domain/forensics"
	domainimage "civic-eye-server-go/internal/domain/image"
	"civic-eye-server-go/internal/domain/trust"
	"civic-eye-server-go/internal/platform/logging"
	"civic-eye-server-go/internal/platform/observability"
)

// Result is the complete, immutable outcome of one analysis.
type Result struct {
	ReportID   string              `json:"report_id"`
	IssueType  trust.IssueType     `json:"issue_type"`
	TrustScore float64             `json:"trust_score"`
	Severity   float64             `json:"severity"`
	Priority   trust.Priority      `json:"priority"`
	Details    trust.Explanation   `json:"explanation"`
	SubScores  []forensics.SubScore `json:"sub_scores"`
	Duplicate  *duplicate.Sighting `json:"duplicate,omitempty"`
	Image      ImageInfo           `json:"image"`
	AnalyzedAt time.Time           `json:"analyzed_at"`
}

// ImageInfo summarizes the decoded upload.
type ImageInfo struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Engine wires the decoder, the analyzers and the scoring stages together.
type Engine struct {
	decoder    *domainimage.Decoder
	analyzers  []forensics.Analyzer
	aggregator *trust.Aggregator
	classifier *trust.Classifier
	checker    duplicate.Checker
	logger     *logging.Logger
}

// New constructs an engine. A nil checker disables duplicate tracking.
func New(
	decoder *domainimage.Decoder,
	analyzers []forensics.Analyzer,
	aggregator *trust.Aggregator,
	classifier *trust.Classifier,
	checker duplicate.Checker,
	logger *logging.Logger,
) *Engine {
	if checker == nil {
		checker = duplicate.NewNoop()
	}
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Engine{
		decoder:    decoder,
		analyzers:  analyzers,
		aggregator: aggregator,
		classifier: classifier,
		checker:    checker,
		logger:     logger,
	}
}

// Analyze scores one upload. Only an undecodable image fails the call;
// every downstream stage degrades to its documented fallback instead.
func (e *Engine) Analyze(ctx context.Context, raw []byte, rawIssueType string) (*Result, error) {
	ctx, endSpan := observability.StartSpan(ctx, "engine", "analyze")

	issueType := trust.ParseIssueType(rawIssueType)

	img, err := e.decoder.Decode(raw)
	if err != nil {
		endSpan(err)
		return nil, err
	}

	sighting := e.checkDuplicate(ctx, raw)
	scores := e.runAnalyzers(ctx, img)

	penalty := 0.0
	if sighting != nil {
		penalty = sighting.Penalty
	}
	trustScore, explanation := e.aggregator.Aggregate(scores, issueType, penalty)
	severity, priority := e.classifier.Classify(issueType, trustScore)

	result := &Result{
		ReportID:   uuid.NewString(),
		IssueType:  issueType,
		TrustScore: trustScore,
		Severity:   severity,
		Priority:   priority,
		Details:    explanation,
		SubScores:  scores,
		Duplicate:  sighting,
		Image: ImageInfo{
			Format: img.Format,
			Width:  img.Width,
			Height: img.Height,
		},
		AnalyzedAt: time.Now().UTC(),
	}

	e.logger.InfoTag("ENGINE", "report %s: issue=%s trust=%.2f severity=%.0f priority=%s",
		result.ReportID, issueType, trustScore, severity, priority)
	observability.RecordMetric(ctx, "trust_score", trustScore,
		map[string]string{"issue_type": issueType.String(), "priority": string(priority)})

	eventbus.Publish(eventbus.TopicReportAnalyzed, eventbus.ReportAnalyzed{
		ReportID:   result.ReportID,
		IssueType:  issueType.String(),
		TrustScore: trustScore,
		Severity:   severity,
		Priority:   string(priority),
		Duplicate:  sighting != nil && sighting.Found,
		AnalyzedAt: result.AnalyzedAt,
	})

	endSpan(nil)
	return result, nil
}

// runAnalyzers executes every analyzer fork-join over the shared image.
// Analyzers never error, so the group exists purely for the join.
func (e *Engine) runAnalyzers(ctx context.Context, img *domainimage.DecodedImage) []forensics.SubScore {
	scores := make([]forensics.SubScore, len(e.analyzers))

	group, ctx := errgroup.WithContext(ctx)
	for i, analyzer := range e.analyzers {
		i, analyzer := i, analyzer
		group.Go(func() error {
			start := time.Now()
			scores[i] = analyzer.Analyze(ctx, img)
			observability.RecordMetric(ctx, "analyzer.duration_ms",
				float64(time.Since(start).Milliseconds()),
				map[string]string{"analyzer": scores[i].Name})
			e.logger.DebugTag("ENGINE", "%s scored %.2f", scores[i].Name, scores[i].Value)
			return nil
		})
	}
	_ = group.Wait()

	return scores
}

// checkDuplicate consults and updates the sighting index. Index failures
// must not block scoring, so they degrade to "no prior sighting".
func (e *Engine) checkDuplicate(ctx context.Context, raw []byte) *duplicate.Sighting {
	fingerprint := duplicate.Fingerprint(raw)

	sighting, err := e.checker.Check(ctx, fingerprint)
	if err != nil {
		e.logger.WarnTag("DUP", "sighting lookup failed: %v", err)
		return nil
	}
	if err := e.checker.Record(ctx, fingerprint); err != nil {
		e.logger.WarnTag("DUP", "sighting record failed: %v", err)
	}
	if !sighting.Found {
		return nil
	}
	return &sighting
}
