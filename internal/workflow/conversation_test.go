package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func newConversationEnv(t *testing.T, queries *[]string) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(InteractiveConversationWorkflow)
	env.RegisterActivityWithOptions(
		func(ctx context.Context, query, threadID string, cfg AgentConfig) (AgentResult, error) {
			if queries != nil {
				*queries = append(*queries, query)
			}
			return AgentResult{
				Query:     query,
				ModelUsed: cfg.ModelName,
				ThreadID:  threadID,
				Success:   true,
				Response:  "answer to: " + query,
			}, nil
		},
		activity.RegisterOptions{Name: ProcessWithAgentActivity},
	)
	return env
}

func conversationSummary(t *testing.T, env *testsuite.TestWorkflowEnvironment) ConversationSummary {
	t.Helper()
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var summary ConversationSummary
	require.NoError(t, env.GetWorkflowResult(&summary))
	return summary
}

func TestInteractiveConversationWorkflow_MultiTurn(t *testing.T) {
	var queries []string
	env := newConversationEnv(t, &queries)

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(UserFeedbackSignal, UserFeedback{ContinueConversation: true, FollowUpQuery: "And per region?"})
	}, time.Minute)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(UserFeedbackSignal, UserFeedback{ContinueConversation: false})
	}, 2*time.Minute)

	env.ExecuteWorkflow(InteractiveConversationWorkflow, "How many orders last month?", "thread-1", testAgentConfig())
	summary := conversationSummary(t, env)

	assert.True(t, summary.ConversationComplete)
	assert.Equal(t, 2, summary.TotalTurns)
	assert.Equal(t, "thread-1", summary.ThreadID)
	assert.Equal(t, "answer to: And per region?", summary.FinalResponse)
	assert.Equal(t, []string{"How many orders last month?", "And per region?"}, queries)
	require.Len(t, summary.ConversationHistory, 2)
	assert.True(t, summary.ConversationHistory[0].Success)
	assert.NotEmpty(t, summary.ConversationHistory[0].Timestamp)
}

func TestInteractiveConversationWorkflow_ContinueWithoutFollowUp(t *testing.T) {
	var queries []string
	env := newConversationEnv(t, &queries)

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(UserFeedbackSignal, UserFeedback{ContinueConversation: true, FollowUpQuery: "  "})
	}, time.Minute)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(UserFeedbackSignal, UserFeedback{ContinueConversation: false})
	}, 2*time.Minute)

	env.ExecuteWorkflow(InteractiveConversationWorkflow, "Initial question", "thread-2", testAgentConfig())
	summary := conversationSummary(t, env)

	assert.Equal(t, 2, summary.TotalTurns)
	require.Len(t, queries, 2)
	assert.Equal(t, defaultFollowUpQuery, queries[1])
}

func TestInteractiveConversationWorkflow_FeedbackTimeout(t *testing.T) {
	env := newConversationEnv(t, nil)

	env.ExecuteWorkflow(InteractiveConversationWorkflow, "One and done", "thread-3", testAgentConfig())
	summary := conversationSummary(t, env)

	assert.True(t, summary.ConversationComplete)
	assert.Equal(t, 1, summary.TotalTurns)
	assert.Equal(t, "answer to: One and done", summary.FinalResponse)
}

func TestInteractiveConversationWorkflow_Queries(t *testing.T) {
	env := newConversationEnv(t, nil)

	env.RegisterDelayedCallback(func() {
		waiting, err := env.QueryWorkflow(WaitingForFeedbackQuery)
		require.NoError(t, err)
		var isWaiting bool
		require.NoError(t, waiting.Get(&isWaiting))
		assert.True(t, isWaiting)

		latest, err := env.QueryWorkflow(LatestResponseQuery)
		require.NoError(t, err)
		var turn *ConversationTurn
		require.NoError(t, latest.Get(&turn))
		require.NotNil(t, turn)
		assert.Equal(t, "answer to: Query me", turn.Response)

		history, err := env.QueryWorkflow(ConversationHistoryQuery)
		require.NoError(t, err)
		var turns []ConversationTurn
		require.NoError(t, history.Get(&turns))
		assert.Len(t, turns, 1)

		env.SignalWorkflow(UserFeedbackSignal, UserFeedback{ContinueConversation: false})
	}, time.Minute)

	env.ExecuteWorkflow(InteractiveConversationWorkflow, "Query me", "thread-4", testAgentConfig())
	summary := conversationSummary(t, env)
	assert.Equal(t, 1, summary.TotalTurns)
}

func TestInteractiveConversationWorkflow_MissingInputs(t *testing.T) {
	env := newConversationEnv(t, nil)
	env.ExecuteWorkflow(InteractiveConversationWorkflow, "  ", "thread-5", testAgentConfig())
	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial_query")

	env = newConversationEnv(t, nil)
	env.ExecuteWorkflow(InteractiveConversationWorkflow, "hello", "", testAgentConfig())
	require.True(t, env.IsWorkflowCompleted())
	err = env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thread_id")
}

func TestAgentWorkflow(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(AgentWorkflow)
	env.RegisterActivityWithOptions(
		func(ctx context.Context, query, threadID string, cfg AgentConfig) (AgentResult, error) {
			return AgentResult{Query: query, ThreadID: threadID, Success: true, Response: "42"}, nil
		},
		activity.RegisterOptions{Name: ProcessWithAgentActivity},
	)

	env.ExecuteWorkflow(AgentWorkflow, "What is the answer?", "thread-6", testAgentConfig())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result AgentResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.True(t, result.Success)
	assert.Equal(t, "42", result.Response)
}

func TestAgentWorkflow_MissingQuery(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(AgentWorkflow)

	env.ExecuteWorkflow(AgentWorkflow, "", "thread-7", testAgentConfig())
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}
