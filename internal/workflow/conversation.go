package workflow

import (
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// How long each turn waits for user feedback before the conversation is
	// considered abandoned.
	feedbackWaitTimeout = 30 * time.Minute

	processWithAgentTimeout = 10 * time.Minute

	// Used when the user wants to continue but gave no follow-up question.
	defaultFollowUpQuery = "Can you explain that further or provide more details?"
)

// InteractiveConversationWorkflow runs an agent conversation that continues
// until the user signals they are satisfied or stops responding. Each turn
// processes one query, records it in the history, and waits for a
// user_feedback signal. External callers can snapshot the conversation at any
// point through the query handlers.
func InteractiveConversationWorkflow(ctx workflow.Context, initialQuery, threadID string, cfg AgentConfig) (ConversationSummary, error) {
	logger := workflow.GetLogger(ctx)

	if strings.TrimSpace(initialQuery) == "" {
		return ConversationSummary{}, temporal.NewNonRetryableApplicationError("missing required workflow parameter: initial_query", "InvalidConfig", nil)
	}
	if strings.TrimSpace(threadID) == "" {
		return ConversationSummary{}, temporal.NewNonRetryableApplicationError("missing required workflow parameter: thread_id", "InvalidConfig", nil)
	}
	if err := cfg.Validate(); err != nil {
		return ConversationSummary{}, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidConfig", err)
	}

	var (
		history          []ConversationTurn
		pendingFeedback  *UserFeedback
		waitingForUser   bool
		conversationDone bool
	)

	feedbackCh := workflow.GetSignalChannel(ctx, UserFeedbackSignal)
	workflow.Go(ctx, func(ctx workflow.Context) {
		for {
			var feedback UserFeedback
			feedbackCh.Receive(ctx, &feedback)
			pendingFeedback = &feedback
		}
	})

	if err := workflow.SetQueryHandler(ctx, ConversationHistoryQuery, func() ([]ConversationTurn, error) {
		return append([]ConversationTurn(nil), history...), nil
	}); err != nil {
		return ConversationSummary{}, err
	}
	if err := workflow.SetQueryHandler(ctx, LatestResponseQuery, func() (*ConversationTurn, error) {
		if len(history) == 0 {
			return nil, nil
		}
		latest := history[len(history)-1]
		return &latest, nil
	}); err != nil {
		return ConversationSummary{}, err
	}
	if err := workflow.SetQueryHandler(ctx, WaitingForFeedbackQuery, func() (bool, error) {
		return waitingForUser && pendingFeedback == nil, nil
	}); err != nil {
		return ConversationSummary{}, err
	}

	logger.Info("Starting interactive conversation", "thread_id", threadID, "model", cfg.ModelName)
	currentQuery := initialQuery

	for !conversationDone {
		logger.Info("Processing query", "query", currentQuery)

		var result AgentResult
		err := workflow.ExecuteActivity(
			withAgentOptions(ctx, processWithAgentTimeout),
			ProcessWithAgentActivity,
			currentQuery, threadID, cfg,
		).Get(ctx, &result)
		if err != nil {
			result = AgentResult{Success: false, Response: err.Error(), ModelUsed: cfg.ModelName}
		}

		modelUsed := result.ModelUsed
		if modelUsed == "" {
			modelUsed = cfg.ModelName
		}
		history = append(history, ConversationTurn{
			Query:     currentQuery,
			Response:  result.Response,
			ModelUsed: modelUsed,
			Success:   result.Success,
			Timestamp: workflow.Now(ctx).Format(time.RFC3339),
		})

		logger.Info("Agent responded, waiting for user feedback")
		pendingFeedback = nil
		waitingForUser = true
		signaled, err := workflow.AwaitWithTimeout(ctx, feedbackWaitTimeout, func() bool {
			return pendingFeedback != nil
		})
		waitingForUser = false
		if err != nil {
			return ConversationSummary{}, err
		}
		if !signaled {
			logger.Info("No feedback received, ending conversation")
			conversationDone = true
			continue
		}

		feedback := *pendingFeedback
		switch {
		case !feedback.ContinueConversation:
			logger.Info("User indicated they are satisfied, ending conversation")
			conversationDone = true
		case strings.TrimSpace(feedback.FollowUpQuery) != "":
			currentQuery = feedback.FollowUpQuery
		default:
			logger.Info("User wants to continue without a specific follow-up, using default query")
			currentQuery = defaultFollowUpQuery
		}
	}

	finalResponse := ""
	if len(history) > 0 {
		finalResponse = history[len(history)-1].Response
	}
	return ConversationSummary{
		ConversationComplete: true,
		TotalTurns:           len(history),
		ThreadID:             threadID,
		ModelUsed:            cfg.ModelName,
		FinalResponse:        finalResponse,
		ConversationHistory:  history,
	}, nil
}
