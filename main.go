package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/activities"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/config"
	"github.com/GethosTheWalrus/langgraph-temporal-workflow/internal/kafka"
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

	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.CaseEventsTopic)
		defer producer.Close()
		log.Printf("Kafka case events enabled on topic %s", cfg.Kafka.CaseEventsTopic)
	} else {
		log.Println("KAFKA_BROKERS not set - case events will not be published")
	}

	acts := activities.New(producer)

	// Retention worker: the multi-agent pipeline and its agents.
	retentionWorker := worker.New(c, workflow.RetentionTaskQueue, worker.Options{})
	retentionWorker.RegisterWorkflow(workflow.CustomerRetentionWorkflow)
	acts.RegisterRetention(retentionWorker)

	// Conversation worker: interactive multi-turn sessions.
	conversationWorker := worker.New(c, workflow.ConversationTaskQueue, worker.Options{})
	conversationWorker.RegisterWorkflow(workflow.InteractiveConversationWorkflow)
	acts.RegisterConversational(conversationWorker)

	// Agent worker: one-shot queries.
	agentWorker := worker.New(c, workflow.AgentTaskQueue, worker.Options{})
	agentWorker.RegisterWorkflow(workflow.AgentWorkflow)
	acts.RegisterConversational(agentWorker)

	log.Printf("Starting workers against %s (namespace %s)", cfg.Temporal.HostPort, cfg.Temporal.Namespace)
	log.Printf("Task queues: %s, %s, %s", workflow.RetentionTaskQueue, workflow.ConversationTaskQueue, workflow.AgentTaskQueue)

	if err := retentionWorker.Start(); err != nil {
		log.Fatal("Failed to start retention worker:", err)
	}
	if err := conversationWorker.Start(); err != nil {
		log.Fatal("Failed to start conversation worker:", err)
	}
	if err := agentWorker.Start(); err != nil {
		log.Fatal("Failed to start agent worker:", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("Received shutdown signal")

	retentionWorker.Stop()
	conversationWorker.Stop()
	agentWorker.Stop()
}
