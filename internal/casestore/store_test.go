package casestore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSummary(t *testing.T) {
	state := &CaseState{
		CaseID:         "retention_7_20240102_150405",
		CustomerID:     7,
		CreatedAt:      "2024-01-02T15:04:05Z",
		UrgencyLevel:   "high",
		EstimatedValue: 12500.5,
		CustomerProfile: map[string]any{
			"risk_level": "high",
		},
		Strategy: map[string]any{
			"strategy": "discount and expedited shipping",
		},
		DecisionPoints: []DecisionPoint{
			{Timestamp: "2024-01-02T15:05:00Z", Decision: "Escalated due to high churn risk"},
		},
	}

	summary := FormatSummary(state)

	assert.Contains(t, summary, "Retention Case Summary: retention_7_20240102_150405")
	assert.Contains(t, summary, "Customer ID: 7")
	assert.Contains(t, summary, "Urgency: high")
	assert.Contains(t, summary, "Estimated Value: $12500.50")
	assert.Contains(t, summary, "- Customer Intelligence: complete")
	assert.Contains(t, summary, "- Operations Investigation: pending")
	assert.Contains(t, summary, "- Retention Strategy: complete")
	assert.Contains(t, summary, "- Communication: pending")
	assert.Contains(t, summary, "Escalated due to high churn risk")
}

func TestFormatSummaryNoDecisions(t *testing.T) {
	state := &CaseState{CaseID: "retention_1_x", CustomerID: 1}
	summary := FormatSummary(state)
	assert.NotContains(t, summary, "Key Decision Points")
	assert.Equal(t, 4, strings.Count(summary, "pending"))
}

func TestOpenBadURL(t *testing.T) {
	_, err := Open("not-a-url")
	require.Error(t, err)
}
