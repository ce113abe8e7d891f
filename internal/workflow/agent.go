package workflow

import (
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const agentWorkflowTimeout = 2 * time.Minute

// AgentWorkflow processes a single query with the conversational agent and
// returns its result directly. Thread ID is optional; passing one lets the
// agent continue an existing conversation memory.
func AgentWorkflow(ctx workflow.Context, query, threadID string, cfg AgentConfig) (AgentResult, error) {
	if strings.TrimSpace(query) == "" {
		return AgentResult{}, temporal.NewNonRetryableApplicationError("missing required workflow parameter: query", "InvalidConfig", nil)
	}
	if err := cfg.Validate(); err != nil {
		return AgentResult{}, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidConfig", err)
	}

	var result AgentResult
	err := workflow.ExecuteActivity(
		withAgentOptions(ctx, agentWorkflowTimeout),
		ProcessWithAgentActivity,
		query, threadID, cfg,
	).Get(ctx, &result)
	return result, err
}
