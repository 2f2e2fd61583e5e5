package engine

import (
	"context"
	"image/color"
	"testing"
	"time"

	"civic-eye-server-go/internal/domain/duplicate"
	"civic-eye-server-go/internal/domain/forensics"
	domainimage "civic-eye-server-go/internal/domain/image"
	"civic-eye-server-go/internal/domain/trust"
	"civic-eye-server-go/internal/platform/errors"
	platformtesting "civic-eye-server-go/internal/platform/testing"
)

func newTestEngine(t *testing.T, checker duplicate.Checker) *Engine {
	t.Helper()

	cfg := platformtesting.SetupTestConfig(t)
	logger := platformtesting.SetupTestLogger(t)
	return New(
		domainimage.NewDecoder(cfg.Engine, logger),
		forensics.All(forensics.DefaultConfig()),
		trust.NewAggregator(trust.DefaultAggregatorConfig()),
		trust.NewClassifier(trust.DefaultClassifierConfig()),
		checker,
		logger,
	)
}

func flatPNG(t *testing.T) []byte {
	t.Helper()
	return platformtesting.EncodePNG(t,
		platformtesting.FlatImage(32, 32, color.RGBA{R: 128, G: 128, B: 128, A: 255}))
}

func TestAnalyzeFlatImage(t *testing.T) {
	eng := newTestEngine(t, nil)

	result, err := eng.Analyze(context.Background(), flatPNG(t), "pothole")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if result.ReportID == "" {
		t.Error("expected a report ID")
	}
	if result.IssueType != trust.IssuePothole {
		t.Errorf("issue type = %s, expected pothole", result.IssueType)
	}
	if len(result.SubScores) != 4 {
		t.Fatalf("expected 4 sub-scores, got %d", len(result.SubScores))
	}

	// A flat synthetic frame has fully predictable forensics: near-lossless
	// recompression, no EXIF, no contours, zero Laplacian variance.
	if result.Details.ELAScore < 90 {
		t.Errorf("ela score = %.2f, expected >= 90", result.Details.ELAScore)
	}
	if result.Details.MetadataScore != 60 {
		t.Errorf("metadata score = %.2f, expected 60", result.Details.MetadataScore)
	}
	if result.Details.ShadowScore != 55 {
		t.Errorf("shadow score = %.2f, expected 55", result.Details.ShadowScore)
	}
	if result.Details.QualityScore != 70 {
		t.Errorf("quality score = %.2f, expected 70", result.Details.QualityScore)
	}

	if result.TrustScore < 71 || result.TrustScore > 75 {
		t.Errorf("trust score = %.2f, expected within [71, 75]", result.TrustScore)
	}
	if result.Severity != 55 {
		t.Errorf("severity = %.1f, expected 55", result.Severity)
	}
	if result.Priority != trust.PriorityLow {
		t.Errorf("priority = %s, expected LOW", result.Priority)
	}

	if result.Image.Format != "png" || result.Image.Width != 32 {
		t.Errorf("unexpected image info: %+v", result.Image)
	}
	if time.Since(result.AnalyzedAt) > time.Minute {
		t.Errorf("stale analyzed timestamp: %v", result.AnalyzedAt)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	eng := newTestEngine(t, nil)
	raw := flatPNG(t)

	first, err := eng.Analyze(context.Background(), raw, "fire")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	second, err := eng.Analyze(context.Background(), raw, "fire")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if first.TrustScore != second.TrustScore {
		t.Errorf("trust drifted across runs: %.2f vs %.2f", first.TrustScore, second.TrustScore)
	}
	if first.Severity != second.Severity || first.Priority != second.Priority {
		t.Error("classification drifted across runs")
	}
	if first.ReportID == second.ReportID {
		t.Error("report IDs must be unique per analysis")
	}
}

func TestAnalyzeUnknownIssueDefaultsToOther(t *testing.T) {
	eng := newTestEngine(t, nil)
	raw := flatPNG(t)

	unknown, err := eng.Analyze(context.Background(), raw, "levitating bin")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	other, err := eng.Analyze(context.Background(), raw, "other")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if unknown.IssueType != trust.IssueOther {
		t.Errorf("issue type = %s, expected other", unknown.IssueType)
	}
	if unknown.TrustScore != other.TrustScore || unknown.Severity != other.Severity {
		t.Error("unknown issue type must score exactly like other")
	}
}

func TestAnalyzeRejectsUndecodablePayload(t *testing.T) {
	eng := newTestEngine(t, nil)

	_, err := eng.Analyze(context.Background(), []byte("not an image"), "pothole")
	if !errors.IsDecode(err) {
		t.Errorf("expected decode error, got: %v", err)
	}
}

func TestAnalyzePenalizesResubmission(t *testing.T) {
	checker := duplicate.NewMemory(duplicate.Config{TTL: time.Hour})
	eng := newTestEngine(t, checker)
	raw := flatPNG(t)

	first, err := eng.Analyze(context.Background(), raw, "garbage")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if first.Duplicate != nil {
		t.Errorf("first submission flagged as duplicate: %+v", first.Duplicate)
	}

	second, err := eng.Analyze(context.Background(), raw, "garbage")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if second.Duplicate == nil || second.Duplicate.Count != 1 {
		t.Fatalf("resubmission not flagged: %+v", second.Duplicate)
	}
	if second.Duplicate.Penalty != 5 {
		t.Errorf("penalty = %.1f, expected 5", second.Duplicate.Penalty)
	}
	if second.TrustScore != first.TrustScore-5 {
		t.Errorf("trust = %.2f, expected %.2f", second.TrustScore, first.TrustScore-5)
	}
	if second.Details.DuplicatePenalty != 5 {
		t.Errorf("explanation penalty = %v, expected 5", second.Details.DuplicatePenalty)
	}
}
