package workflow

import (
	"fmt"
	"strings"
)

// Task queue names, one per worker pool.
const (
	RetentionTaskQueue    = "customer-retention-queue"
	ConversationTaskQueue = "interactive-conversation-queue"
	AgentTaskQueue        = "agent-task-queue"
)

// Activity names. Activities are invoked by registered name so workflow code
// never imports activity implementations.
const (
	CustomerIntelligenceActivity    = "customer_intelligence_agent"
	OperationsInvestigationActivity = "operations_investigation_agent"
	RetentionStrategyActivity       = "retention_strategy_agent"
	BusinessIntelligenceActivity    = "business_intelligence_agent"
	CaseAnalysisActivity            = "case_analysis_agent"
	SuggestResolutionActivity       = "suggest_resolution"
	ProcessWithAgentActivity        = "process_with_agent"
)

// Signal and query names.
const (
	ApproveResolutionSignal = "approve_resolution"
	UserFeedbackSignal      = "user_feedback"

	ConversationHistoryQuery = "getConversationHistory"
	LatestResponseQuery      = "getLatestResponse"
	WaitingForFeedbackQuery  = "isWaitingForFeedback"
)

// Urgency levels for a retention case. Agents may escalate but are not
// expected to downgrade.
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// CustomerComplaint is the input that starts a retention workflow.
type CustomerComplaint struct {
	CustomerID       int    `json:"customer_id"`
	ComplaintDetails string `json:"complaint_details"`
	OrderIDs         []int  `json:"order_ids,omitempty"`
	UrgencyLevel     string `json:"urgency_level"`
}

// AgentConfig is the connection bundle handed to every agent activity.
// Agents own all store and database access; the workflow only threads the
// bundle through.
type AgentConfig struct {
	PostgresHost     string  `json:"postgres_host"`
	PostgresPort     string  `json:"postgres_port"`
	PostgresDB       string  `json:"postgres_db"`
	PostgresUser     string  `json:"postgres_user"`
	PostgresPassword string  `json:"postgres_password"`
	OllamaBaseURL    string  `json:"ollama_base_url"`
	ModelName        string  `json:"model_name"`
	Temperature      float64 `json:"temperature"`
	RedisURL         string  `json:"redis_url"`
}

// Validate reports every missing required connection parameter. A zero
// temperature is valid and intentionally not checked.
func (c AgentConfig) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"postgres_host", c.PostgresHost},
		{"postgres_port", c.PostgresPort},
		{"postgres_db", c.PostgresDB},
		{"postgres_user", c.PostgresUser},
		{"postgres_password", c.PostgresPassword},
		{"ollama_base_url", c.OllamaBaseURL},
		{"model_name", c.ModelName},
		{"redis_url", c.RedisURL},
	}

	var missing []string
	for _, p := range required {
		if strings.TrimSpace(p.value) == "" {
			missing = append(missing, p.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required workflow parameters: %s", strings.Join(missing, ", "))
	}
	return nil
}

// HumanApproval is the approve_resolution signal payload.
type HumanApproval struct {
	Approve  bool   `json:"approve"`
	FollowUp string `json:"followUp"`
}

// UserFeedback is the user_feedback signal payload for interactive
// conversations.
type UserFeedback struct {
	ContinueConversation bool   `json:"continue_conversation"`
	FollowUpQuery        string `json:"follow_up_query"`
}

// ExtractedMetrics is the quantitative output of the case analysis agent.
// CustomerRetained is tri-state: nil means the agent could not decide and the
// workflow falls back to the probability threshold.
type ExtractedMetrics struct {
	HistoricalCLV               float64 `json:"historical_clv"`
	ProjectedCLV                float64 `json:"projected_clv"`
	TotalEstimatedValue         float64 `json:"total_estimated_value"`
	RetentionProbabilityPercent float64 `json:"retention_probability_percent"`
	StrategyInvestment          float64 `json:"strategy_investment"`
	ROIRatio                    float64 `json:"roi_ratio"`
	CLVConfidence               string  `json:"clv_confidence"`
	RetentionAssessment         string  `json:"retention_assessment"`
	StrategyQuality             string  `json:"strategy_quality"`
	CustomerRetained            *bool   `json:"customer_retained"`
}

// AgentResult is the return contract of every agent activity. A failed agent
// still returns a well-formed result with Success=false; failures are data,
// not activity errors.
type AgentResult struct {
	Query     string            `json:"query"`
	ModelUsed string            `json:"model_used"`
	ThreadID  string            `json:"thread_id"`
	Success   bool              `json:"success"`
	Response  string            `json:"response"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
	Metrics   *ExtractedMetrics `json:"extracted_metrics,omitempty"`
}

// RetentionResult is the terminal output of the retention workflow.
type RetentionResult struct {
	CaseID                string          `json:"case_id"`
	CustomerRetained      bool            `json:"customer_retained"`
	TotalEstimatedValue   float64         `json:"total_estimated_value"`
	StrategyExecuted      map[string]bool `json:"strategy_executed"`
	ExecutiveSummary      string          `json:"executive_summary"`
	CompletionTimeMinutes float64         `json:"completion_time_minutes"`
	ResolutionApproved    bool            `json:"resolution_approved"`
	FinalResolution       string          `json:"final_resolution"`
	ResolutionAttempts    int             `json:"resolution_attempts"`
}

// ConversationTurn records one query/response exchange.
type ConversationTurn struct {
	Query     string `json:"query"`
	Response  string `json:"response"`
	ModelUsed string `json:"model_used"`
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
}

// ConversationSummary is the terminal output of an interactive conversation.
type ConversationSummary struct {
	ConversationComplete bool               `json:"conversation_complete"`
	TotalTurns           int                `json:"total_turns"`
	ThreadID             string             `json:"thread_id"`
	ModelUsed            string             `json:"model_used"`
	FinalResponse        string             `json:"final_response"`
	ConversationHistory  []ConversationTurn `json:"conversation_history"`
}
