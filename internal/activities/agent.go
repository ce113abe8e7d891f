package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/llm"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/workflow"
)

const conversationalAgentPrompt = `You are a helpful data analyst with access to an e-commerce business's
customer, order, and support data. Answer the user's question directly and
quantitatively where possible.`

// ProcessWithAgent answers a single conversational query. Only the model is
// needed here; the thread ID travels in the result for callers that correlate
// turns, and nothing is persisted by this activity.
func (a *Activities) ProcessWithAgent(ctx context.Context, query, threadID string, cfg workflow.AgentConfig) (workflow.AgentResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Processing query with agent", "thread_id", threadID)

	model := llm.NewClient(cfg.OllamaBaseURL, cfg.ModelName, cfg.Temperature)
	response, err := model.Chat(ctx, conversationalAgentPrompt, query)
	if err != nil {
		return workflow.AgentResult{
			Query:     query,
			ModelUsed: cfg.ModelName,
			ThreadID:  threadID,
			Success:   false,
			Error:     err.Error(),
			Response:  fmt.Sprintf("agent failed: %v", err),
		}, nil
	}

	return workflow.AgentResult{
		Query:     query,
		ModelUsed: cfg.ModelName,
		ThreadID:  threadID,
		Success:   true,
		Response:  response,
	}, nil
}
