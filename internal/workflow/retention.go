package workflow

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// How long each approval wait blocks before the last generated
	// resolution is treated as implicitly approved.
	approvalWaitTimeout = 30 * time.Minute

	executiveSummaryLimit  = 500
	executiveSummaryMarker = "..."

	// Feedback used for the next resolution attempt when a reviewer declines
	// without saying why.
	declineFallbackFeedback = "This will not work. Please suggest something different."
)

// Per-activity start-to-close timeouts. Independent per task, not inherited
// from an enclosing deadline.
const (
	customerIntelligenceTimeout    = 8 * time.Minute
	operationsInvestigationTimeout = 8 * time.Minute
	retentionStrategyTimeout       = 6 * time.Minute
	businessIntelligenceTimeout    = 6 * time.Minute
	caseAnalysisTimeout            = 4 * time.Minute
	suggestResolutionTimeout       = 8 * time.Minute
)

// CustomerRetentionWorkflow drives a retention case end to end:
//
//  1. Derive a case ID; the customer intelligence agent creates the shared
//     case record, so the workflow never assumes it exists up front.
//  2. Customer intelligence + operations investigation in parallel.
//  3. Retention strategy, reading whatever the parallel stage persisted.
//  4. Business intelligence + case analysis in parallel.
//  5. Resolution suggestion loop: generate, wait up to 30 minutes for the
//     approve_resolution signal, regenerate on decline. No attempt limit.
//  6. Compile the terminal RetentionResult from agent return values only.
//
// No agent failure aborts the pipeline; each stage's success flag is carried
// verbatim into the final result. The only fatal condition is missing
// configuration before any agent runs.
func CustomerRetentionWorkflow(ctx workflow.Context, complaint CustomerComplaint, cfg AgentConfig) (RetentionResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting customer retention workflow", "customer_id", complaint.CustomerID)
	startTime := workflow.Now(ctx)

	if err := cfg.Validate(); err != nil {
		return RetentionResult{}, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidConfig", err)
	}

	// Latch approval signals as they arrive. Signals delivered while no wait
	// is active are held for the next wait cycle; only the most recent one
	// before a wait matters.
	var pendingApproval *HumanApproval
	approvalCh := workflow.GetSignalChannel(ctx, ApproveResolutionSignal)
	workflow.Go(ctx, func(ctx workflow.Context) {
		for {
			var approval HumanApproval
			approvalCh.Receive(ctx, &approval)
			pendingApproval = &approval
		}
	})

	caseID := fmt.Sprintf("retention_%d_%s", complaint.CustomerID, startTime.Format("20060102_150405"))
	logger.Info("Generated retention case ID", "case_id", caseID)

	// Stage 2: customer intelligence and operations investigation in
	// parallel. Both futures are resolved before the strategy stage starts,
	// and a failed branch never short-circuits the join.
	logger.Info("Stage 2: running customer intelligence and operations investigation in parallel")
	intelFuture := workflow.ExecuteActivity(
		withAgentOptions(ctx, customerIntelligenceTimeout),
		CustomerIntelligenceActivity,
		caseID, complaint.CustomerID, complaint.ComplaintDetails, cfg,
	)
	opsFuture := workflow.ExecuteActivity(
		withAgentOptions(ctx, operationsInvestigationTimeout),
		OperationsInvestigationActivity,
		caseID, complaint.CustomerID, complaint.ComplaintDetails, complaint.OrderIDs, cfg,
	)
	customerAnalysis := awaitAgent(ctx, intelFuture, CustomerIntelligenceActivity)
	investigation := awaitAgent(ctx, opsFuture, OperationsInvestigationActivity)
	logger.Info("Stage 2 completed", "customer_intelligence", customerAnalysis.Success, "operations_investigation", investigation.Success)

	// Stage 3: retention strategy. The agent reads the case store itself, so
	// it proceeds even when stage 2 partially failed.
	logger.Info("Stage 3: developing retention strategy")
	strategyResult := awaitAgent(ctx, workflow.ExecuteActivity(
		withAgentOptions(ctx, retentionStrategyTimeout),
		RetentionStrategyActivity,
		caseID, complaint.CustomerID, complaint.ComplaintDetails, cfg,
	), RetentionStrategyActivity)
	logger.Info("Stage 3 completed", "retention_strategy", strategyResult.Success)

	// Stages 4-5: business intelligence and case analysis in parallel. Case
	// analysis is the sole source of the quantitative verdict.
	logger.Info("Stage 4-5: running business intelligence and case analysis in parallel")
	biFuture := workflow.ExecuteActivity(
		withAgentOptions(ctx, businessIntelligenceTimeout),
		BusinessIntelligenceActivity,
		caseID, complaint.CustomerID, complaint.ComplaintDetails, cfg,
	)
	caseFuture := workflow.ExecuteActivity(
		withAgentOptions(ctx, caseAnalysisTimeout),
		CaseAnalysisActivity,
		caseID, complaint.CustomerID, complaint.ComplaintDetails, cfg,
	)
	biResult := awaitAgent(ctx, biFuture, BusinessIntelligenceActivity)
	caseAnalysis := awaitAgent(ctx, caseFuture, CaseAnalysisActivity)
	logger.Info("Stage 4-5 completed", "business_intelligence", biResult.Success, "case_analysis", caseAnalysis.Success)

	// Stage 6: resolution suggestion with human approval loop. Generation and
	// the signal wait never overlap, and at most one suggest_resolution
	// invocation is in flight at a time.
	logger.Info("Stage 6: generating resolution suggestion and waiting for human approval")
	var (
		resolutionAttempts = 0
		resolutionApproved = false
		finalResolution    = ""
		currentFeedback    = ""
		resolutionResult   AgentResult
	)
	for !resolutionApproved {
		resolutionAttempts++
		logger.Info("Resolution attempt", "attempt", resolutionAttempts)

		resolutionResult = awaitAgent(ctx, workflow.ExecuteActivity(
			withAgentOptions(ctx, suggestResolutionTimeout),
			SuggestResolutionActivity,
			caseID, currentFeedback, cfg,
		), SuggestResolutionActivity)
		finalResolution = resolutionResult.Response
		logger.Info("Resolution suggestion generated, waiting for human approval")

		// Clear any stale signal so only approvals of this candidate count.
		pendingApproval = nil
		signaled, err := workflow.AwaitWithTimeout(ctx, approvalWaitTimeout, func() bool {
			return pendingApproval != nil
		})
		if err != nil {
			return RetentionResult{}, err
		}
		if !signaled {
			// Nobody answered within the wait window: treat the last
			// generated candidate as implicitly approved.
			logger.Info("Timed out waiting for human approval, using last resolution as final")
			resolutionApproved = true
			continue
		}

		approval := *pendingApproval
		if approval.Approve {
			logger.Info("Resolution approved by human reviewer")
			resolutionApproved = true
		} else {
			logger.Info("Resolution declined", "feedback", approval.FollowUp)
			if strings.TrimSpace(approval.FollowUp) == "" {
				currentFeedback = declineFallbackFeedback
			} else {
				currentFeedback = approval.FollowUp
			}
		}
	}

	// Stage 7: compile the terminal result from agent return values only.
	logger.Info("Stage 7: compiling final results with extracted metrics")
	durationMinutes := workflow.Now(ctx).Sub(startTime).Minutes()
	customerRetained, totalEstimatedValue := retentionVerdict(caseAnalysis.Metrics)

	summary := biResult.Response
	if summary == "" {
		summary = "Executive report not available"
	}

	result := RetentionResult{
		CaseID:              caseID,
		CustomerRetained:    customerRetained,
		TotalEstimatedValue: totalEstimatedValue,
		StrategyExecuted: map[string]bool{
			"customer_intelligence":    customerAnalysis.Success,
			"operations_investigation": investigation.Success,
			"retention_strategy":       strategyResult.Success,
			"business_intelligence":    biResult.Success,
			"case_analysis":            caseAnalysis.Success,
			"resolution_suggestion":    resolutionResult.Success,
		},
		ExecutiveSummary:      truncateSummary(summary, executiveSummaryLimit),
		CompletionTimeMinutes: durationMinutes,
		ResolutionApproved:    resolutionApproved,
		FinalResolution:       finalResolution,
		ResolutionAttempts:    resolutionAttempts,
	}

	logger.Info("Customer retention workflow completed",
		"case_id", caseID,
		"duration_minutes", durationMinutes,
		"customer_retained", customerRetained,
		"estimated_value", totalEstimatedValue,
		"resolution_approved", resolutionApproved,
		"resolution_attempts", resolutionAttempts)
	return result, nil
}

// withAgentOptions applies the per-task timeout and the invoker-owned retry
// policy. Transient invocation failures are retried here; anything that
// exhausts the policy surfaces through awaitAgent as a failed stage.
func withAgentOptions(ctx workflow.Context, timeout time.Duration) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})
}

// awaitAgent resolves an agent future. Invocation-layer errors (timeouts,
// exhausted retries) are folded into a failed AgentResult so the pipeline
// never aborts on an individual stage.
func awaitAgent(ctx workflow.Context, future workflow.Future, agentName string) AgentResult {
	var result AgentResult
	if err := future.Get(ctx, &result); err != nil {
		workflow.GetLogger(ctx).Error("Agent invocation failed", "agent", agentName, "error", err)
		return AgentResult{
			Success:  false,
			Error:    err.Error(),
			Response: fmt.Sprintf("%s did not complete: %v", agentName, err),
			Metadata: map[string]any{"agent_type": agentName},
		}
	}
	return result
}

// retentionVerdict extracts the final retention verdict. The explicit
// tri-state flag from case analysis wins; when it is indeterminate, a
// retention probability of at least 50% counts as retained.
func retentionVerdict(metrics *ExtractedMetrics) (retained bool, estimatedValue float64) {
	if metrics == nil {
		return false, 0
	}
	if metrics.CustomerRetained != nil {
		return *metrics.CustomerRetained, metrics.TotalEstimatedValue
	}
	return metrics.RetentionProbabilityPercent >= 50.0, metrics.TotalEstimatedValue
}

// truncateSummary caps the executive summary at limit characters, appending
// the truncation marker only when text was actually dropped.
func truncateSummary(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + executiveSummaryMarker
}
