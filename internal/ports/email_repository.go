package ports

import (
	"context"
	"errors"
	"time"
)

var ErrEmailNotFound = errors.New("email not found")

// EmailRecord is one processed supplier message together with its stored
// classification. Filename is the natural key; re-ingesting the same file
// overwrites the previous row rather than duplicating it.
type EmailRecord struct {
	Filename   string    `json:"filename"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`

	Intent     string  `json:"intent"`
	RiskScore  int     `json:"risk_score"`
	Confidence float64 `json:"confidence"`
	PartID     string  `json:"part_id,omitempty"`
	OrderID    string  `json:"order_id,omitempty"`
	OldValue   string  `json:"old_value,omitempty"`
	NewValue   string  `json:"new_value,omitempty"`
	Reasoning  string  `json:"reasoning,omitempty"`

	ActionTaken string    `json:"action_taken,omitempty"`
	IssueID     string    `json:"issue_id,omitempty"`
	Processed   bool      `json:"processed"`
	ProcessedAt time.Time `json:"processed_at"`
}

type EmailFilter struct {
	Sender  string
	Intent  string
	MinRisk int
	Limit   int
}

type EmailSummary struct {
	Total     int            `json:"total"`
	Processed int            `json:"processed"`
	ByIntent  map[string]int `json:"by_intent"`
	ByRisk    map[int]int    `json:"by_risk"`
}

type EmailRepository interface {
	Save(ctx context.Context, record EmailRecord) error
	Get(ctx context.Context, filename string) (EmailRecord, error)
	List(ctx context.Context, filter EmailFilter) ([]EmailRecord, error)
	// Search matches the query case-insensitively against sender, subject and
	// body.
	Search(ctx context.Context, query string, limit int) ([]EmailRecord, error)
	Summarize(ctx context.Context) (EmailSummary, error)
}
