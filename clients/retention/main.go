package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/config"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/workflow"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatal("Failed to connect to Temporal:", err)
	}
	defer c.Close()

	complaint := workflow.CustomerComplaint{
		CustomerID: 1,
		ComplaintDetails: "I am extremely frustrated. My last two orders arrived late and one " +
			"was damaged. I have been a loyal customer for years and I am seriously " +
			"considering taking my business elsewhere.",
		OrderIDs:     []int{1, 2},
		UrgencyLevel: workflow.UrgencyHigh,
	}
	if len(os.Args) > 1 {
		complaint.ComplaintDetails = os.Args[1]
	}

	workflowID := fmt.Sprintf("customer-retention-%d-%d", complaint.CustomerID, time.Now().Unix())
	run, err := c.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: workflow.RetentionTaskQueue,
	}, workflow.CustomerRetentionWorkflow, complaint, cfg.AgentConfig())
	if err != nil {
		log.Fatal("Failed to start retention workflow:", err)
	}

	log.Printf("Started retention workflow %s (run %s)", run.GetID(), run.GetRunID())
	log.Println("The workflow will pause for human approval after suggesting a resolution.")
	log.Println("Approve with:")
	log.Printf(`  temporal workflow signal --workflow-id %s --name %s --input '{"approve": true}'`, workflowID, workflow.ApproveResolutionSignal)
	log.Println("Decline with feedback:")
	log.Printf(`  temporal workflow signal --workflow-id %s --name %s --input '{"approve": false, "followUp": "Offer a bigger discount"}'`, workflowID, workflow.ApproveResolutionSignal)
	log.Println("If no signal arrives within 30 minutes the resolution is treated as approved.")

	var result workflow.RetentionResult
	if err := run.Get(context.Background(), &result); err != nil {
		log.Fatal("Retention workflow failed:", err)
	}

	fmt.Println("=== Retention Case Complete ===")
	fmt.Printf("Case ID:             %s\n", result.CaseID)
	fmt.Printf("Customer retained:   %t\n", result.CustomerRetained)
	fmt.Printf("Estimated value:     $%.2f\n", result.TotalEstimatedValue)
	fmt.Printf("Resolution approved: %t\n", result.ResolutionApproved)
	fmt.Printf("Resolution attempts: %d\n", result.ResolutionAttempts)
	fmt.Printf("Completed in:        %.1f minutes\n", result.CompletionTimeMinutes)
	fmt.Println("Executive summary:")
	fmt.Println(result.ExecutiveSummary)
}
