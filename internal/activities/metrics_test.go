package activities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `**CUSTOMER VALUE METRICS:**
- Historical CLV: $12,500.00
- Projected CLV: $18,750
- CLV Confidence: High

**RETENTION ASSESSMENT:**
- Retention Probability: 85%
- Strategy Quality: Comprehensive

**FINANCIAL ANALYSIS:**
- Total Strategy Investment: $2,500
- ROI Ratio: 7.50

**FINAL RECOMMENDATION:**
- Customer Likely Retained: Yes`

func TestExtractMetrics(t *testing.T) {
	m := ExtractMetrics(sampleReport)

	assert.Equal(t, 12500.0, m.HistoricalCLV)
	assert.Equal(t, 18750.0, m.ProjectedCLV)
	assert.Equal(t, 18750.0, m.TotalEstimatedValue)
	assert.Equal(t, 85.0, m.RetentionProbabilityPercent)
	assert.Equal(t, 2500.0, m.StrategyInvestment)
	assert.Equal(t, 7.5, m.ROIRatio)
	assert.Equal(t, "High", m.CLVConfidence)
	assert.Equal(t, "Comprehensive", m.StrategyQuality)
	assert.Equal(t, "Yes", m.RetentionAssessment)
	require.NotNil(t, m.CustomerRetained)
	assert.True(t, *m.CustomerRetained)
}

func TestExtractMetricsVerdict(t *testing.T) {
	m := ExtractMetrics("Customer Likely Retained: No")
	require.NotNil(t, m.CustomerRetained)
	assert.False(t, *m.CustomerRetained)

	m = ExtractMetrics("Customer Likely Retained: Unlikely")
	require.NotNil(t, m.CustomerRetained)
	assert.False(t, *m.CustomerRetained)

	m = ExtractMetrics("customer likely retained: likely")
	require.NotNil(t, m.CustomerRetained)
	assert.True(t, *m.CustomerRetained)

	// A noncommittal verdict stays undecided so the probability fallback
	// applies downstream.
	m = ExtractMetrics("Customer Likely Retained: Uncertain")
	assert.Nil(t, m.CustomerRetained)
	assert.Equal(t, "Uncertain", m.RetentionAssessment)
}

func TestExtractMetricsEmptyReport(t *testing.T) {
	m := ExtractMetrics("The model refused to follow the format.")

	assert.Zero(t, m.HistoricalCLV)
	assert.Zero(t, m.ProjectedCLV)
	assert.Zero(t, m.TotalEstimatedValue)
	assert.Zero(t, m.RetentionProbabilityPercent)
	assert.Equal(t, "Unknown", m.CLVConfidence)
	assert.Equal(t, "Uncertain", m.RetentionAssessment)
	assert.Equal(t, "Unknown", m.StrategyQuality)
	assert.Nil(t, m.CustomerRetained)
}

func TestExtractMetricsHistoricalDominates(t *testing.T) {
	m := ExtractMetrics("Historical CLV: $9,000\nProjected CLV: $4,000")
	assert.Equal(t, 9000.0, m.TotalEstimatedValue)
}
