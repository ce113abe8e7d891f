package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/casestore"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/kafka"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/workflow"
)

const retentionStrategyPrompt = `You are a Retention Strategy Agent developing a plan to keep an at-risk
customer.

Using the accumulated case intelligence, design a retention strategy that is
proportionate to the customer's value: concrete compensation, operational
fixes, and communication steps. Quantify the total investment and keep it
below the customer's estimated lifetime value.

Provide a strategy covering:
- Immediate actions to stop the churn
- Compensation package with total cost
- Operational commitments with deadlines
- Communication plan matched to the customer's preferred channel`

// RetentionStrategy develops the retention plan. It reads the case store
// itself rather than receiving earlier stage results, so it always works from
// the most current persisted state, including partial state when an earlier
// branch failed.
func (a *Activities) RetentionStrategy(ctx context.Context, caseID string, customerID int, complaintDetails string, cfg workflow.AgentConfig) (workflow.AgentResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Retention Strategy Agent processing case", "case_id", caseID, "customer_id", customerID)

	agentType := "retention_strategy"
	threadID := fmt.Sprintf("strategy_%s", caseID)
	query := fmt.Sprintf("Retention Strategy for case %s, customer %d: %s", caseID, customerID, complaintDetails)

	s, err := newSession(ctx, cfg)
	if err != nil {
		return failedResult(agentType, caseID, customerID, query, threadID, cfg.ModelName, err), nil
	}
	defer s.close()

	caseContext := fmt.Sprintf("COMPLAINT:\n%s", complaintDetails)
	state, err := s.cases.GetState(ctx, caseID)
	if err != nil {
		// Proceed from the complaint alone when stage 1 left no state behind.
		logger.Warn("Case state unavailable, developing strategy from complaint only", "case_id", caseID, "error", err)
	} else {
		caseContext = fmt.Sprintf("%s\n\nCASE STATE:\n%s", caseContext, casestore.FormatSummary(state))
	}

	response, err := s.model.Chat(ctx, retentionStrategyPrompt, caseContext)
	if err != nil {
		return failedResult(agentType, caseID, customerID, query, threadID, cfg.ModelName, err), nil
	}

	if err := s.cases.SetAgentResult(ctx, caseID, "strategy", map[string]any{
		"strategy": response,
	}); err != nil {
		logger.Warn("Failed to store strategy results", "case_id", caseID, "error", err)
	}
	if err := s.cases.UpdateContext(ctx, caseID, casestore.ContextUpdate{
		DecisionPoint: "Retention strategy developed",
	}); err != nil {
		logger.Warn("Failed to log strategy decision point", "case_id", caseID, "error", err)
	}

	a.emitAgentEvent(ctx, caseID, customerID, agentType, kafka.EventAgentCompleted, true)
	logger.Info("Retention Strategy Agent completed", "case_id", caseID)

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
