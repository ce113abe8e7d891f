// Package casestore holds the shared per-case state that retention agents
// read and write while a workflow is running. One Redis hash per case,
// expiring 24 hours after creation. The workflow itself never touches this
// store; everything it needs comes back as activity return values.
package casestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	caseKeyPrefix = "retention_case:"
	caseTTL       = 24 * time.Hour
)

// ErrCaseNotFound is returned when a case record is missing or has expired.
var ErrCaseNotFound = errors.New("retention case not found")

// DecisionPoint is one entry in the append-only case decision log.
type DecisionPoint struct {
	Timestamp string `json:"timestamp"`
	Decision  string `json:"decision"`
}

// CaseState is the shared state document for one retention case.
type CaseState struct {
	CaseID     string `json:"case_id"`
	CustomerID int    `json:"customer_id"`
	CreatedAt  string `json:"created_at"`

	// Per-agent result slots, each written once by its owning agent.
	CustomerProfile     map[string]any `json:"customer_profile,omitempty"`
	Investigation       map[string]any `json:"investigation,omitempty"`
	Strategy            map[string]any `json:"strategy,omitempty"`
	CommunicationResult map[string]any `json:"communication_result,omitempty"`

	// Shared context mutated by any agent.
	UrgencyLevel      string          `json:"urgency_level"`
	EstimatedValue    float64         `json:"estimated_value"`
	PriorityEscalated bool            `json:"priority_escalated"`
	DecisionPoints    []DecisionPoint `json:"decision_points"`

	// Populated on read from its own hash field.
	ComplaintDetails string `json:"complaint_details,omitempty"`
}

// ContextUpdate carries the optional shared-context mutations. Nil pointers
// leave the corresponding field untouched.
type ContextUpdate struct {
	UrgencyLevel   string
	EstimatedValue *float64
	Escalated      *bool
	DecisionPoint  string
}

// Store is a Redis-backed case store.
type Store struct {
	client *redis.Client
}

// Open connects to Redis using a redis:// URL.
func Open(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Store{client: redis.NewClient(opts)}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func caseKey(caseID string) string {
	return caseKeyPrefix + caseID
}

// CreateCase initializes the shared state for a new retention case and arms
// the 24-hour retention window. Creating an existing case overwrites it; the
// customer intelligence agent is the only expected creator.
func (s *Store) CreateCase(ctx context.Context, caseID string, customerID int, complaintDetails string) error {
	state := CaseState{
		CaseID:         caseID,
		CustomerID:     customerID,
		CreatedAt:      time.Now().Format(time.RFC3339),
		UrgencyLevel:   "medium",
		DecisionPoints: []DecisionPoint{},
	}
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal case state: %w", err)
	}

	key := caseKey(caseID)
	if err := s.client.HSet(ctx, key, map[string]any{
		"state":             string(doc),
		"complaint_details": complaintDetails,
		"created_at":        state.CreatedAt,
	}).Err(); err != nil {
		return fmt.Errorf("create case %s: %w", caseID, err)
	}
	if err := s.client.Expire(ctx, key, caseTTL).Err(); err != nil {
		return fmt.Errorf("set case ttl %s: %w", caseID, err)
	}
	return nil
}

// GetState retrieves the current case state.
func (s *Store) GetState(ctx context.Context, caseID string) (*CaseState, error) {
	fields, err := s.client.HGetAll(ctx, caseKey(caseID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get case %s: %w", caseID, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("case %s: %w", caseID, ErrCaseNotFound)
	}

	var state CaseState
	if err := json.Unmarshal([]byte(fields["state"]), &state); err != nil {
		return nil, fmt.Errorf("decode case %s: %w", caseID, err)
	}
	state.ComplaintDetails = fields["complaint_details"]
	return &state, nil
}

// SetAgentResult writes an agent's results into its slot. Recognized agent
// names: customer_intelligence, operations, strategy, communication.
func (s *Store) SetAgentResult(ctx context.Context, caseID, agentName string, results map[string]any) error {
	return s.mutate(ctx, caseID, func(state *CaseState) error {
		switch agentName {
		case "customer_intelligence":
			state.CustomerProfile = results
		case "operations":
			state.Investigation = results
		case "strategy":
			state.Strategy = results
		case "communication":
			state.CommunicationResult = results
		default:
			return fmt.Errorf("unknown agent name %q", agentName)
		}
		return nil
	})
}

// UpdateContext applies shared-context changes: urgency escalation, value
// estimates, the escalation flag, and decision-log appends.
func (s *Store) UpdateContext(ctx context.Context, caseID string, update ContextUpdate) error {
	return s.mutate(ctx, caseID, func(state *CaseState) error {
		if update.UrgencyLevel != "" {
			state.UrgencyLevel = update.UrgencyLevel
		}
		if update.EstimatedValue != nil {
			state.EstimatedValue = *update.EstimatedValue
		}
		if update.Escalated != nil {
			state.PriorityEscalated = *update.Escalated
		}
		if update.DecisionPoint != "" {
			state.DecisionPoints = append(state.DecisionPoints, DecisionPoint{
				Timestamp: time.Now().Format(time.RFC3339),
				Decision:  update.DecisionPoint,
			})
		}
		return nil
	})
}

// Summary formats a human-readable overview of the case for reporting agents.
func (s *Store) Summary(ctx context.Context, caseID string) (string, error) {
	state, err := s.GetState(ctx, caseID)
	if err != nil {
		return "", err
	}
	return FormatSummary(state), nil
}

// FormatSummary renders a case state as the report text agents embed in their
// prompts.
func FormatSummary(state *CaseState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Retention Case Summary: %s\n\n", state.CaseID)
	fmt.Fprintf(&b, "Customer ID: %d\n", state.CustomerID)
	fmt.Fprintf(&b, "Created: %s\n", state.CreatedAt)
	fmt.Fprintf(&b, "Urgency: %s\n", state.UrgencyLevel)
	fmt.Fprintf(&b, "Estimated Value: $%.2f\n", state.EstimatedValue)
	fmt.Fprintf(&b, "Escalated: %t\n\n", state.PriorityEscalated)

	b.WriteString("Agent Completion Status:\n")
	fmt.Fprintf(&b, "- Customer Intelligence: %s\n", completionMark(state.CustomerProfile != nil))
	fmt.Fprintf(&b, "- Operations Investigation: %s\n", completionMark(state.Investigation != nil))
	fmt.Fprintf(&b, "- Retention Strategy: %s\n", completionMark(state.Strategy != nil))
	fmt.Fprintf(&b, "- Communication: %s\n", completionMark(state.CommunicationResult != nil))

	if len(state.DecisionPoints) > 0 {
		b.WriteString("\nKey Decision Points:\n")
		for _, point := range state.DecisionPoints {
			fmt.Fprintf(&b, "- %s: %s\n", point.Timestamp, point.Decision)
		}
	}
	return b.String()
}

func completionMark(done bool) string {
	if done {
		return "complete"
	}
	return "pending"
}

// mutate performs a read-modify-write of the state document. Callers are
// individual agents updating disjoint slots, so lost updates between agents
// are not a practical concern.
func (s *Store) mutate(ctx context.Context, caseID string, fn func(*CaseState) error) error {
	state, err := s.GetState(ctx, caseID)
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}

	complaint := state.ComplaintDetails
	state.ComplaintDetails = ""
	doc, err := json.Marshal(state)
	state.ComplaintDetails = complaint
	if err != nil {
		return fmt.Errorf("marshal case state: %w", err)
	}
	if err := s.client.HSet(ctx, caseKey(caseID), "state", string(doc)).Err(); err != nil {
		return fmt.Errorf("update case %s: %w", caseID, err)
	}
	return nil
}
