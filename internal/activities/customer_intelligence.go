package activities

import (
	"context"
	"encoding/json"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/casestore"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/kafka"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/workflow"
)

const customerIntelligencePrompt = `You are a Customer Intelligence Agent analyzing a customer for a retention case.

Quantify the financial impact of losing this customer, assess retention
priority, and recommend the maximum justifiable retention investment.
Base every number on the data provided.

Provide a customer intelligence report covering:
- Customer value assessment (historical and predicted)
- Risk analysis and churn indicators
- Retention priority recommendation
- Maximum justifiable retention investment`

// CustomerIntelligence analyzes customer value and churn risk. It is the
// agent that creates the shared case record, so it must run in the first
// pipeline stage.
func (a *Activities) CustomerIntelligence(ctx context.Context, caseID string, customerID int, complaintDetails string, cfg workflow.AgentConfig) (workflow.AgentResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Customer Intelligence Agent processing case", "case_id", caseID, "customer_id", customerID)

	agentType := "customer_intelligence"
	threadID := fmt.Sprintf("customer_intel_%s", caseID)
	query := fmt.Sprintf("Customer Intelligence Analysis for case %s, customer %d: %s", caseID, customerID, complaintDetails)

	s, err := newSession(ctx, cfg)
	if err != nil {
		return failedResult(agentType, caseID, customerID, query, threadID, cfg.ModelName, err), nil
	}
	defer s.close()

	if err := s.cases.CreateCase(ctx, caseID, customerID, complaintDetails); err != nil {
		return failedResult(agentType, caseID, customerID, query, threadID, cfg.ModelName, err), nil
	}

	profile, err := s.db.CustomerProfile(ctx, customerID)
	if err != nil {
		return failedResult(agentType, caseID, customerID, query, threadID, cfg.ModelName, err), nil
	}
	clv, err := s.db.LifetimeValue(ctx, customerID)
	if err != nil {
		return failedResult(agentType, caseID, customerID, query, threadID, cfg.ModelName, err), nil
	}
	risk, err := s.db.RiskScore(ctx, customerID)
	if err != nil {
		return failedResult(agentType, caseID, customerID, query, threadID, cfg.ModelName, err), nil
	}

	estimatedValue := clv.HistoricalValue
	if clv.ProjectedValue > estimatedValue {
		estimatedValue = clv.ProjectedValue
	}
	update := casestore.ContextUpdate{
		EstimatedValue: &estimatedValue,
		DecisionPoint:  fmt.Sprintf("Customer intelligence: CLV $%.2f, churn risk %s", estimatedValue, risk.Level),
	}
	if risk.Level == "high" {
		update.UrgencyLevel = workflow.UrgencyHigh
	}
	if err := s.cases.UpdateContext(ctx, caseID, update); err != nil {
		logger.Warn("Failed to update case context", "case_id", caseID, "error", err)
	}

	data, _ := json.Marshal(map[string]any{
		"complaint":      complaintDetails,
		"profile":        profile,
		"lifetime_value": clv,
		"risk":           risk,
	})
	response, err := s.model.Chat(ctx, customerIntelligencePrompt, string(data))
	if err != nil {
		return failedResult(agentType, caseID, customerID, query, threadID, cfg.ModelName, err), nil
	}

	if err := s.cases.SetAgentResult(ctx, caseID, "customer_intelligence", map[string]any{
		"profile":         profile,
		"lifetime_value":  clv,
		"risk":            risk,
		"analysis":        response,
		"estimated_value": estimatedValue,
	}); err != nil {
		logger.Warn("Failed to store customer intelligence results", "case_id", caseID, "error", err)
	}

	a.emitAgentEvent(ctx, caseID, customerID, agentType, kafka.EventAgentCompleted, true)
	logger.Info("Customer Intelligence Agent completed analysis", "case_id", caseID)

	return workflow.AgentResult{
		Query:     query,
		ModelUsed: cfg.ModelName,
		ThreadID:  threadID,
		Success:   true,
		Response:  response,
		Metadata: map[string]any{
			"agent_type":      agentType,
			"case_id":         caseID,
			"customer_id":     customerID,
			"estimated_value": estimatedValue,
			"risk_level":      risk.Level,
		},
	}, nil
}
