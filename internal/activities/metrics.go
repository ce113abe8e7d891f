package activities

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/workflow"
)

// Patterns matching the structured report format the case analysis agent is
// instructed to produce.
var (
	historicalCLVPattern      = regexp.MustCompile(`(?i)Historical CLV:\s*\$?([\d,]+\.?\d*)`)
	projectedCLVPattern       = regexp.MustCompile(`(?i)Projected CLV:\s*\$?([\d,]+\.?\d*)`)
	retentionProbPattern      = regexp.MustCompile(`(?i)Retention Probability:\s*(\d+\.?\d*)%?`)
	strategyInvestmentPattern = regexp.MustCompile(`(?i)Total Strategy Investment:\s*\$?([\d,]+\.?\d*)`)
	roiRatioPattern           = regexp.MustCompile(`(?i)ROI Ratio:\s*([\d.]+)`)
	clvConfidencePattern      = regexp.MustCompile(`(?i)CLV Confidence:\s*(\w+)`)
	retainedPattern           = regexp.MustCompile(`(?i)Customer Likely Retained:\s*(\w+)`)
	strategyQualityPattern    = regexp.MustCompile(`(?i)Strategy Quality:\s*([\w/]+)`)
)

// ExtractMetrics parses the case analysis report into quantitative metrics.
// Missing values default to zero; the retention verdict stays nil when the
// report is noncommittal so the workflow can apply its probability fallback.
func ExtractMetrics(report string) *workflow.ExtractedMetrics {
	m := &workflow.ExtractedMetrics{
		HistoricalCLV:               extractNumber(historicalCLVPattern, report),
		ProjectedCLV:                extractNumber(projectedCLVPattern, report),
		RetentionProbabilityPercent: extractNumber(retentionProbPattern, report),
		StrategyInvestment:          extractNumber(strategyInvestmentPattern, report),
		ROIRatio:                    extractNumber(roiRatioPattern, report),
		CLVConfidence:               extractWord(clvConfidencePattern, report, "Unknown"),
		RetentionAssessment:         extractWord(retainedPattern, report, "Uncertain"),
		StrategyQuality:             extractWord(strategyQualityPattern, report, "Unknown"),
	}

	m.TotalEstimatedValue = m.HistoricalCLV
	if m.ProjectedCLV > m.TotalEstimatedValue {
		m.TotalEstimatedValue = m.ProjectedCLV
	}

	switch strings.ToLower(m.RetentionAssessment) {
	case "yes", "true", "likely", "high":
		retained := true
		m.CustomerRetained = &retained
	case "no", "false", "unlikely", "low":
		retained := false
		m.CustomerRetained = &retained
	}
	return m
}

func extractNumber(pattern *regexp.Regexp, text string) float64 {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return 0
	}
	return value
}

func extractWord(pattern *regexp.Regexp, text, fallback string) string {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return fallback
	}
	return match[1]
}
