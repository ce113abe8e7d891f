// Package database provides the e-commerce data access used by retention
// agents: customer profiles, lifetime value, churn risk, order investigation,
// and the retention_cases record written when a case concludes.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Client struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool from discrete connection parameters.
func Connect(ctx context.Context, host, port, db, user, password string) (*Client, error) {
	connString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, db)
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &Client{pool: pool}, nil
}

func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

// CustomerProfile aggregates the customer's account, order history, and open
// support load.
type CustomerProfile struct {
	CustomerID       int        `json:"customer_id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Segment          string     `json:"segment"`
	AccountStatus    string     `json:"account_status"`
	City             string     `json:"city"`
	State            string     `json:"state"`
	TotalOrders      int        `json:"total_orders"`
	TotalSpent       float64    `json:"total_spent"`
	AvgOrderValue    float64    `json:"avg_order_value"`
	LastOrderAt      *time.Time `json:"last_order_at"`
	OpenTickets      int        `json:"open_tickets"`
	PreferredChannel string     `json:"preferred_channel"`
}

func (c *Client) CustomerProfile(ctx context.Context, customerID int) (*CustomerProfile, error) {
	p := CustomerProfile{CustomerID: customerID}

	err := c.pool.QueryRow(ctx, `
		SELECT
			u.name,
			u.email,
			COALESCE(u.segment, 'unknown'),
			COALESCE(u.account_status, 'active'),
			COALESCE(a.city, ''),
			COALESCE(a.state, ''),
			COALESCE(p.preferred_channel, 'email')
		FROM users u
		LEFT JOIN addresses a ON u.id = a.user_id AND a.is_default = true
		LEFT JOIN customer_preferences p ON u.id = p.user_id
		WHERE u.id = $1`,
		customerID,
	).Scan(&p.Name, &p.Email, &p.Segment, &p.AccountStatus, &p.City, &p.State, &p.PreferredChannel)
	if err != nil {
		return nil, fmt.Errorf("customer %d profile: %w", customerID, err)
	}

	err = c.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(total), 0),
			COALESCE(AVG(total), 0),
			MAX(created_at)
		FROM orders
		WHERE user_id = $1`,
		customerID,
	).Scan(&p.TotalOrders, &p.TotalSpent, &p.AvgOrderValue, &p.LastOrderAt)
	if err != nil {
		return nil, fmt.Errorf("customer %d order history: %w", customerID, err)
	}

	err = c.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM customer_support_tickets
		WHERE user_id = $1 AND status IN ('open', 'in_progress')`,
		customerID,
	).Scan(&p.OpenTickets)
	if err != nil {
		return nil, fmt.Errorf("customer %d ticket count: %w", customerID, err)
	}

	return &p, nil
}

// LifetimeValue is the historical spend plus a projection derived from the
// customer's monthly run rate over a two-year horizon.
type LifetimeValue struct {
	CustomerID      int        `json:"customer_id"`
	HistoricalValue float64    `json:"historical_value"`
	ProjectedValue  float64    `json:"projected_value"`
	OrderCount      int        `json:"order_count"`
	FirstOrderAt    *time.Time `json:"first_order_at"`
	LastOrderAt     *time.Time `json:"last_order_at"`
	MonthlyRunRate  float64    `json:"monthly_run_rate"`
}

const projectionMonths = 24

func (c *Client) LifetimeValue(ctx context.Context, customerID int) (*LifetimeValue, error) {
	v := LifetimeValue{CustomerID: customerID}

	err := c.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(o.total), 0),
			MIN(o.created_at),
			MAX(o.created_at)
		FROM orders o
		WHERE o.user_id = $1 AND o.status NOT IN ('cancelled', 'refunded')`,
		customerID,
	).Scan(&v.OrderCount, &v.HistoricalValue, &v.FirstOrderAt, &v.LastOrderAt)
	if err != nil {
		return nil, fmt.Errorf("customer %d lifetime value: %w", customerID, err)
	}

	if v.FirstOrderAt != nil && v.LastOrderAt != nil {
		months := v.LastOrderAt.Sub(*v.FirstOrderAt).Hours() / (24 * 30)
		if months < 1 {
			months = 1
		}
		v.MonthlyRunRate = v.HistoricalValue / months
	}
	v.ProjectedValue = v.MonthlyRunRate * projectionMonths

	return &v, nil
}

// RiskScore quantifies churn risk from recency, support load, and account
// status.
type RiskScore struct {
	CustomerID         int     `json:"customer_id"`
	Score              float64 `json:"score"`
	Level              string  `json:"level"`
	DaysSinceLastOrder int     `json:"days_since_last_order"`
	OpenTickets        int     `json:"open_tickets"`
	AccountStatus      string  `json:"account_status"`
}

func (c *Client) RiskScore(ctx context.Context, customerID int) (*RiskScore, error) {
	r := RiskScore{CustomerID: customerID}
	var lastOrderAt *time.Time

	err := c.pool.QueryRow(ctx, `
		SELECT
			COALESCE(u.account_status, 'active'),
			MAX(o.created_at),
			COUNT(cs.id) FILTER (WHERE cs.status IN ('open', 'in_progress'))
		FROM users u
		LEFT JOIN orders o ON u.id = o.user_id
		LEFT JOIN customer_support_tickets cs ON u.id = cs.user_id
		WHERE u.id = $1
		GROUP BY u.id, u.account_status`,
		customerID,
	).Scan(&r.AccountStatus, &lastOrderAt, &r.OpenTickets)
	if err != nil {
		return nil, fmt.Errorf("customer %d risk score: %w", customerID, err)
	}

	if lastOrderAt != nil {
		r.DaysSinceLastOrder = int(time.Since(*lastOrderAt).Hours() / 24)
	}

	// Weighted score on a 0-100 scale.
	score := 0.0
	if r.AccountStatus == "at_risk" {
		score += 40
	}
	if r.DaysSinceLastOrder > 90 {
		score += 30
	} else if r.DaysSinceLastOrder > 30 {
		score += 15
	}
	score += float64(r.OpenTickets) * 10
	if score > 100 {
		score = 100
	}
	r.Score = score

	switch {
	case score >= 60:
		r.Level = "high"
	case score >= 30:
		r.Level = "medium"
	default:
		r.Level = "low"
	}
	return &r, nil
}

// OrderDetail is what the operations investigation needs about a delayed or
// disputed order.
type OrderDetail struct {
	OrderID     int        `json:"order_id"`
	CustomerID  int        `json:"customer_id"`
	Status      string     `json:"status"`
	Total       float64    `json:"total"`
	CreatedAt   time.Time  `json:"created_at"`
	ShippedAt   *time.Time `json:"shipped_at"`
	ItemCount   int        `json:"item_count"`
	DaysPending int        `json:"days_pending"`
}

func (c *Client) Orders(ctx context.Context, orderIDs []int) ([]OrderDetail, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	rows, err := c.pool.Query(ctx, `
		SELECT
			o.id,
			o.user_id,
			o.status,
			o.total,
			o.created_at,
			o.shipped_at,
			COUNT(oi.id)
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		WHERE o.id = ANY($1)
		GROUP BY o.id
		ORDER BY o.created_at`,
		orderIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("orders %v: %w", orderIDs, err)
	}
	defer rows.Close()

	var orders []OrderDetail
	for rows.Next() {
		var o OrderDetail
		if err := rows.Scan(&o.OrderID, &o.CustomerID, &o.Status, &o.Total, &o.CreatedAt, &o.ShippedAt, &o.ItemCount); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if o.ShippedAt == nil {
			o.DaysPending = int(time.Since(o.CreatedAt).Hours() / 24)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// SupportTicket is an open customer support ticket.
type SupportTicket struct {
	TicketID  int       `json:"ticket_id"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Client) OpenTickets(ctx context.Context, customerID int) ([]SupportTicket, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, subject, status, priority, created_at
		FROM customer_support_tickets
		WHERE user_id = $1 AND status IN ('open', 'in_progress')
		ORDER BY created_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("customer %d tickets: %w", customerID, err)
	}
	defer rows.Close()

	var tickets []SupportTicket
	for rows.Next() {
		var t SupportTicket
		if err := rows.Scan(&t.TicketID, &t.Subject, &t.Status, &t.Priority, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// RetentionCaseRecord is the durable row persisted when a retention case
// concludes. Unlike the Redis case state, it outlives the 24-hour window.
type RetentionCaseRecord struct {
	CaseID                string
	CustomerID            int
	CaseStatus            string
	UrgencyLevel          string
	EstimatedValue        float64
	ActualRetentionCost   float64
	CustomerRetained      *bool
	RetentionStrategyUsed string
	CaseNotes             string
}

func (c *Client) SaveRetentionCase(ctx context.Context, rec RetentionCaseRecord) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO retention_cases (
			id, user_id, case_status, urgency_level, estimated_value,
			actual_retention_cost, customer_retained, retention_strategy_used,
			case_notes, resolved_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			case_status = EXCLUDED.case_status,
			urgency_level = EXCLUDED.urgency_level,
			estimated_value = EXCLUDED.estimated_value,
			actual_retention_cost = EXCLUDED.actual_retention_cost,
			customer_retained = EXCLUDED.customer_retained,
			retention_strategy_used = EXCLUDED.retention_strategy_used,
			case_notes = EXCLUDED.case_notes,
			resolved_at = EXCLUDED.resolved_at,
			updated_at = EXCLUDED.updated_at`,
		rec.CaseID, rec.CustomerID, rec.CaseStatus, rec.UrgencyLevel, rec.EstimatedValue,
		rec.ActualRetentionCost, rec.CustomerRetained, rec.RetentionStrategyUsed, rec.CaseNotes,
	)
	if err != nil {
		return fmt.Errorf("save retention case %s: %w", rec.CaseID, err)
	}
	return nil
}
