package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/casestore"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/kafka"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/workflow"
)

const businessIntelligencePrompt = `You are a Business Intelligence Agent producing the executive report for a
completed retention case.

Summarize the case for leadership: what happened, what it cost, what was done
about it, and what the business should learn. Be concise and quantitative.

Provide an executive report covering:
- Case overview and customer value at stake
- Root cause and operational impact
- Retention strategy and investment
- Recommendations to prevent recurrence`

// BusinessIntelligence generates the executive summary. Its response feeds the
// executive_summary field of the final result.
func (a *Activities) BusinessIntelligence(ctx context.Context, caseID string, customerID int, complaintDetails string, cfg workflow.AgentConfig) (workflow.AgentResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Business Intelligence Agent processing case", "case_id", caseID, "customer_id", customerID)

	agentType := "business_intelligence"
	threadID := fmt.Sprintf("business_intel_%s", caseID)
	query := fmt.Sprintf("Executive Report for case %s, customer %d: %s", caseID, customerID, complaintDetails)

	s, err := newSession(ctx, cfg)
	if err != nil {
		return failedResult(agentType, caseID, customerID, query, threadID, cfg.ModelName, err), nil
	}
	defer s.close()

	caseContext := fmt.Sprintf("COMPLAINT:\n%s", complaintDetails)
	if state, err := s.cases.GetState(ctx, caseID); err != nil {
		logger.Warn("Case state unavailable, reporting from complaint only", "case_id", caseID, "error", err)
	} else {
		caseContext = fmt.Sprintf("%s\n\nCASE STATE:\n%s", caseContext, casestore.FormatSummary(state))
	}

	response, err := s.model.Chat(ctx, businessIntelligencePrompt, caseContext)
	if err != nil {
		return failedResult(agentType, caseID, customerID, query, threadID, cfg.ModelName, err), nil
	}

	a.emitAgentEvent(ctx, caseID, customerID, agentType, kafka.EventAgentCompleted, true)
	logger.Info("Business Intelligence Agent completed", "case_id", caseID)

	return workflow.AgentResult{
		Query:     query,
		ModelUsed: cfg.ModelName,
		ThreadID:  threadID,
		Success:   true,
		Response:  response,
		Metadata: map[string]any{
			"agent_type":  agentType,
			"case_id":     caseID,
			"customer_id": customerID,
		},
	}, nil
}
