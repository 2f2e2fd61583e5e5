package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"civic-eye-server-go/internal/domain/engine"
	"civic-eye-server-go/internal/domain/forensics"
	domainimage "civic-eye-server-go/internal/domain/image"
	"civic-eye-server-go/internal/domain/trust"
	"civic-eye-server-go/internal/platform/config"
	"civic-eye-server-go/internal/platform/logging"
)

var (
	analyzeIssueType string
	analyzeJSON      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Score a photo and print its trust report",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeIssueType, "issue-type", "t", "other",
		"claimed issue category (pothole, garbage, water_leak, road_block, accident, fire, other)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full result as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	logger, err := logging.New(logging.Config{Level: "error", Dir: os.TempDir(), Filename: "civic-eye-cli.log"})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Close()

	cfg := config.Default()
	eng := engine.New(
		domainimage.NewDecoder(cfg.Engine, logger),
		forensics.All(forensics.DefaultConfig()),
		trust.NewAggregator(trust.DefaultAggregatorConfig()),
		trust.NewClassifier(trust.DefaultClassifierConfig()),
		nil,
		logger,
	)

	result, err := eng.Analyze(context.Background(), raw, analyzeIssueType)
	if err != nil {
		return err
	}

	if analyzeJSON {
		payload, err := sonic.ConfigDefault.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return nil
	}

	printResult(cmd, result)
	return nil
}

func printResult(cmd *cobra.Command, result *engine.Result) {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)

	bold.Fprintf(out, "Report %s\n", result.ReportID)
	fmt.Fprintf(out, "  image:      %s %dx%d\n", result.Image.Format, result.Image.Width, result.Image.Height)
	fmt.Fprintf(out, "  issue type: %s\n", result.IssueType)

	fmt.Fprintf(out, "  trust:      %s\n", colorizeTrust(result.TrustScore))
	fmt.Fprintf(out, "  severity:   %.0f\n", result.Severity)
	fmt.Fprintf(out, "  priority:   %s\n", colorizePriority(result.Priority))

	bold.Fprintln(out, "Sub-scores")
	for _, sub := range result.SubScores {
		fmt.Fprintf(out, "  %-10s %.2f\n", sub.Name, sub.Value)
	}

	if result.Duplicate != nil && result.Duplicate.Found {
		color.New(color.FgYellow).Fprintf(out,
			"Seen %d time(s) before: trust reduced by %.0f\n",
			result.Duplicate.Count, result.Duplicate.Penalty)
	}
}

func colorizeTrust(score float64) string {
	switch {
	case score >= 80:
		return color.GreenString("%.2f", score)
	case score >= 60:
		return color.YellowString("%.2f", score)
	default:
		return color.RedString("%.2f", score)
	}
}

func colorizePriority(priority trust.Priority) string {
	switch priority {
	case trust.PriorityHigh:
		return color.RedString(string(priority))
	case trust.PriorityMedium:
		return color.YellowString(string(priority))
	default:
		return color.GreenString(string(priority))
	}
}
