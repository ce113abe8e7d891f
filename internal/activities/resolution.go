package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/casestore"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/database"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/kafka"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/workflow"
)

const suggestResolutionPrompt = `You are a Resolution Suggestion Agent drafting the concrete resolution plan
that will be presented to a human reviewer for a retention case.

Turn the case findings into a specific, actionable resolution: exactly what
the customer is offered, who does what by when, and how it will be
communicated. The reviewer may decline with feedback; when feedback is
present, revise the plan to address it directly rather than restating the
previous proposal.

Provide a resolution plan covering:
- The offer to the customer, itemized with costs
- Operational commitments and owners
- Communication steps and timing
- Follow-up checkpoints`

const caseNotesLimit = 2000

// SuggestResolution generates a resolution candidate for human review. Each
// invocation also upserts the durable retention_cases row, which is how a
// case outlives the 24-hour shared-state window.
func (a *Activities) SuggestResolution(ctx context.Context, caseID, feedback string, cfg workflow.AgentConfig) (workflow.AgentResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Resolution Suggestion Agent processing case", "case_id", caseID, "has_feedback", feedback != "")

	agentType := "resolution_suggestion"
	threadID := fmt.Sprintf("resolution_%s", caseID)
	query := fmt.Sprintf("Resolution Suggestion for case %s", caseID)

	s, err := newSession(ctx, cfg)
	if err != nil {
		return failedResult(agentType, caseID, 0, query, threadID, cfg.ModelName, err), nil
	}
	defer s.close()

	customerID := 0
	caseContext := ""
	state, err := s.cases.GetState(ctx, caseID)
	if err != nil {
		logger.Warn("Case state unavailable for resolution", "case_id", caseID, "error", err)
	} else {
		customerID = state.CustomerID
		caseContext = casestore.FormatSummary(state)
		if state.ComplaintDetails != "" {
			caseContext = fmt.Sprintf("COMPLAINT:\n%s\n\n%s", state.ComplaintDetails, caseContext)
		}
	}
	if feedback != "" {
		caseContext = fmt.Sprintf("%s\n\nREVIEWER FEEDBACK ON PREVIOUS PROPOSAL:\n%s", caseContext, feedback)
	}

	response, err := s.model.Chat(ctx, suggestResolutionPrompt, caseContext)
	if err != nil {
		return failedResult(agentType, caseID, customerID, query, threadID, cfg.ModelName, err), nil
	}

	if state != nil {
		record := database.RetentionCaseRecord{
			CaseID:         caseID,
			CustomerID:     state.CustomerID,
			CaseStatus:     "pending_approval",
			UrgencyLevel:   state.UrgencyLevel,
			EstimatedValue: state.EstimatedValue,
			CaseNotes:      truncateNotes(response, caseNotesLimit),
		}
		if state.Strategy != nil {
			if strategy, ok := state.Strategy["strategy"].(string); ok {
				record.RetentionStrategyUsed = truncateNotes(strategy, caseNotesLimit)
			}
		}
		if err := s.db.SaveRetentionCase(ctx, record); err != nil {
			logger.Warn("Failed to save retention case record", "case_id", caseID, "error", err)
		} else {
			a.emitAgentEvent(ctx, caseID, customerID, agentType, kafka.EventCaseSaved, true)
		}
	}

	a.emitAgentEvent(ctx, caseID, customerID, agentType, kafka.EventResolutionProposed, true)
	logger.Info("Resolution Suggestion Agent completed", "case_id", caseID)

	return workflow.AgentResult{
		Query:     query,
		ModelUsed: cfg.ModelName,
		ThreadID:  threadID,
		Success:   true,
		Response:  response,
		Metadata: map[string]any{
			"agent_type":   agentType,
			"case_id":      caseID,
			"customer_id":  customerID,
			"had_feedback": feedback != "",
		},
	}, nil
}

func truncateNotes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
