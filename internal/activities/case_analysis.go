package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/casestore"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/kafka"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/workflow"
)

const caseAnalysisPrompt = `You are a Case Analysis Agent extracting REAL outcomes and metrics from a
completed retention case. Work only from the case data provided; where a
metric is unavailable write "Not Available" rather than inventing a value.

Your response MUST include these exact lines, filled in from the data:

**CUSTOMER VALUE METRICS:**
- Historical CLV: $X,XXX
- Projected CLV: $X,XXX
- CLV Confidence: High/Medium/Low

**RETENTION ASSESSMENT:**
- Retention Probability: XX%
- Strategy Quality: Comprehensive/Adequate/Basic

**FINANCIAL ANALYSIS:**
- Total Strategy Investment: $X,XXX
- ROI Ratio: X.XX

**FINAL RECOMMENDATION:**
- Customer Likely Retained: Yes/No/Uncertain`

// CaseAnalysis extracts the quantitative verdict from the accumulated case
// state. Its metrics are the sole numeric input to the final retention
// verdict.
func (a *Activities) CaseAnalysis(ctx context.Context, caseID string, customerID int, complaintDetails string, cfg workflow.AgentConfig) (workflow.AgentResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Case Analysis Agent extracting outcomes", "case_id", caseID, "customer_id", customerID)

	agentType := "case_analysis"
	threadID := fmt.Sprintf("case_analysis_%s", caseID)
	query := fmt.Sprintf("Case Analysis for case %s, customer %d: %s", caseID, customerID, complaintDetails)

	s, err := newSession(ctx, cfg)
	if err != nil {
		return failedResult(agentType, caseID, customerID, query, threadID, cfg.ModelName, err), nil
	}
	defer s.close()

	caseContext := fmt.Sprintf("COMPLAINT:\n%s", complaintDetails)
	if state, err := s.cases.GetState(ctx, caseID); err != nil {
		logger.Warn("Case state unavailable for analysis", "case_id", caseID, "error", err)
	} else {
		caseContext = fmt.Sprintf("%s\n\nCASE STATE:\n%s", caseContext, casestore.FormatSummary(state))
	}

	response, err := s.model.Chat(ctx, caseAnalysisPrompt, caseContext)
	if err != nil {
		result := failedResult(agentType, caseID, customerID, query, threadID, cfg.ModelName, err)
		// A failed analysis still carries zeroed metrics with a definite
		// "not retained" verdict, matching the failure contract downstream.
		retained := false
		result.Metrics = &workflow.ExtractedMetrics{
			CLVConfidence:       "Unknown",
			RetentionAssessment: "Failed",
			StrategyQuality:     "Unknown",
			CustomerRetained:    &retained,
		}
		return result, nil
	}

	metrics := ExtractMetrics(response)
	a.emitAgentEvent(ctx, caseID, customerID, agentType, kafka.EventAgentCompleted, true)
	logger.Info("Case Analysis Agent completed extraction",
		"case_id", caseID,
		"estimated_value", metrics.TotalEstimatedValue,
		"retention_probability", metrics.RetentionProbabilityPercent)

	return workflow.AgentResult{
		Query:     query,
		ModelUsed: cfg.ModelName,
		ThreadID:  threadID,
		Success:   true,
		Response:  response,
		Metrics:   metrics,
		Metadata: map[string]any{
			"agent_type":  agentType,
			"case_id":     caseID,
			"customer_id": customerID,
		},
	}, nil
}
