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

	query := "How many customers do we have, and who are our top spenders?"
	if len(os.Args) > 1 {
		query = os.Args[1]
	}

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

	threadID := fmt.Sprintf("basic-%d", time.Now().Unix())
	run, err := c.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
		ID:        fmt.Sprintf("agent-query-%d", time.Now().Unix()),
		TaskQueue: workflow.AgentTaskQueue,
	}, workflow.AgentWorkflow, query, threadID, cfg.AgentConfig())
	if err != nil {
		log.Fatal("Failed to start agent workflow:", err)
	}
	log.Printf("Started agent workflow %s", run.GetID())

	var result workflow.AgentResult
	if err := run.Get(context.Background(), &result); err != nil {
		log.Fatal("Agent workflow failed:", err)
	}

	if !result.Success {
		log.Fatalf("Agent query failed: %s", result.Error)
	}
	fmt.Println(result.Response)
}
