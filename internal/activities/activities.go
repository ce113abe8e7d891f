// Package activities implements the retention agents as Temporal activities.
// Each agent owns its own store and database access: it dials Redis and
// Postgres with the connection bundle it was handed, does its analysis with
// one LLM call, persists its slice of the shared case state, and returns a
// well-formed AgentResult. Internal failures become Success=false results,
// never activity errors, so the workflow's joins stay pure data waits.
package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"

	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/casestore"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/database"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/kafka"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/llm"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/workflow"
)

// Activities bundles the worker-level dependencies shared by every agent.
// The Kafka producer may be nil; event publishing is then skipped.
type Activities struct {
	events *kafka.Producer
}

func New(events *kafka.Producer) *Activities {
	return &Activities{events: events}
}

// RegisterRetention registers the retention agents under their workflow-facing
// names.
func (a *Activities) RegisterRetention(r worker.Registry) {
	r.RegisterActivityWithOptions(a.CustomerIntelligence, activity.RegisterOptions{Name: workflow.CustomerIntelligenceActivity})
	r.RegisterActivityWithOptions(a.OperationsInvestigation, activity.RegisterOptions{Name: workflow.OperationsInvestigationActivity})
	r.RegisterActivityWithOptions(a.RetentionStrategy, activity.RegisterOptions{Name: workflow.RetentionStrategyActivity})
	r.RegisterActivityWithOptions(a.BusinessIntelligence, activity.RegisterOptions{Name: workflow.BusinessIntelligenceActivity})
	r.RegisterActivityWithOptions(a.CaseAnalysis, activity.RegisterOptions{Name: workflow.CaseAnalysisActivity})
	r.RegisterActivityWithOptions(a.SuggestResolution, activity.RegisterOptions{Name: workflow.SuggestResolutionActivity})
}

// RegisterConversational registers the conversational agent.
func (a *Activities) RegisterConversational(r worker.Registry) {
	r.RegisterActivityWithOptions(a.ProcessWithAgent, activity.RegisterOptions{Name: workflow.ProcessWithAgentActivity})
}

// session holds the per-invocation connections an agent works with. Agents
// are handed credentials per call rather than sharing worker-level pools, so
// a worker can serve workflows pointed at different backends.
type session struct {
	cases *casestore.Store
	db    *database.Client
	model *llm.Client
}

func newSession(ctx context.Context, cfg workflow.AgentConfig) (*session, error) {
	cases, err := casestore.Open(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("open case store: %w", err)
	}
	db, err := database.Connect(ctx, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)
	if err != nil {
		cases.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &session{
		cases: cases,
		db:    db,
		model: llm.NewClient(cfg.OllamaBaseURL, cfg.ModelName, cfg.Temperature),
	}, nil
}

func (s *session) close() {
	s.db.Close()
	_ = s.cases.Close()
}

// emitAgentEvent publishes a best-effort observability event for a completed
// agent run.
func (a *Activities) emitAgentEvent(ctx context.Context, caseID string, customerID int, agentType, eventType string, success bool) {
	if a.events == nil {
		return
	}
	err := a.events.SendCaseEvent(ctx, kafka.CaseEvent{
		CaseID:     caseID,
		CustomerID: customerID,
		AgentType:  agentType,
		EventType:  eventType,
		Success:    success,
	})
	if err != nil {
		activity.GetLogger(ctx).Warn("Failed to publish case event", "case_id", caseID, "agent", agentType, "error", err)
	}
}

// failedResult wraps an agent failure as data.
func failedResult(agentType, caseID string, customerID int, query, threadID, modelName string, err error) workflow.AgentResult {
	return workflow.AgentResult{
		Query:     query,
		ModelUsed: modelName,
		ThreadID:  threadID,
		Success:   false,
		Error:     err.Error(),
		Response:  fmt.Sprintf("%s agent failed: %v", agentType, err),
		Metadata: map[string]any{
			"agent_type":  agentType,
			"case_id":     caseID,
			"customer_id": customerID,
		},
	}
}
