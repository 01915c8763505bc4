package ports

import (
	"context"
	"errors"
	"time"
)

var ErrIssueNotFound = errors.New("issue not found")

type IssueRecord struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Intent      string     `json:"intent,omitempty"`
	Severity    int        `json:"severity"`
	Status      string     `json:"status"`
	PartID      string     `json:"part_id,omitempty"`
	OrderID     string     `json:"order_id,omitempty"`
	SourceEmail string     `json:"source_email,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`

	// Version increments on every mutation; repositories reject updates whose
	// expected version no longer matches the stored row.
	Version int `json:"version"`
}

type IssueFilter struct {
	Status   string
	Intent   string
	PartID   string
	Severity int
	Limit    int
}

type IssueSummary struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	BySeverity map[int]int    `json:"by_severity"`
	ByIntent   map[string]int `json:"by_intent"`
}

type IssueRepository interface {
	Create(ctx context.Context, record IssueRecord) error
	Get(ctx context.Context, id string) (IssueRecord, error)
	List(ctx context.Context, filter IssueFilter) ([]IssueRecord, error)
	// CountWithIDPrefix supports daily-sequence allocation; callers run it
	// inside the same transaction as the Create that follows.
	CountWithIDPrefix(ctx context.Context, prefix string) (int, error)
	// FindOpenDuplicate returns the non-terminal issue sharing intent, part
	// and order, or ErrIssueNotFound when none exists.
	FindOpenDuplicate(ctx context.Context, intent, partID, orderID string) (IssueRecord, error)
	// Update persists the record iff the stored version equals fromVersion.
	Update(ctx context.Context, record IssueRecord, fromVersion int) error
	Summarize(ctx context.Context) (IssueSummary, error)
}
