package triage

import (
	"fmt"
	"strings"
)

// ActionPlan is the declarative outcome of triaging one classified message.
// Nothing here performs side effects; the ingest pipeline executes the plan.
type ActionPlan struct {
	CreateIssue     *CreateIssueCommand
	StockHold       *StockHoldCommand
	LastTimeBuy     *LastTimeBuyCommand
	FulfillmentFlag *FulfillmentFlagCommand
	LogOnly         bool
}

type CreateIssueCommand struct {
	Severity    int
	Title       string
	Description string
	Intent      Intent
	PartID      string
	OrderID     string
	SourceEmail string
}

type StockHoldCommand struct {
	PartID string
	Reason string
}

// LastTimeBuyCommand is advisory only: it annotates the issue, it never
// mutates the store.
type LastTimeBuyCommand struct {
	PartID string
}

type FulfillmentFlagCommand struct {
	PartID  string
	OrderID string
}

// Decide maps a classification to its action plan. Deterministic: identical
// input always yields an identical plan, with no clock or randomness. The
// risk-threshold check fires independently of intent-specific rules; only the
// returned intent's rules apply (one intent per message by contract).
func Decide(c Classification, m Message) ActionPlan {
	plan := ActionPlan{}

	if c.RiskScore >= IssueRiskThreshold {
		plan.CreateIssue = &CreateIssueCommand{
			Severity:    c.RiskScore,
			Title:       issueTitle(c),
			Description: issueDescription(c, m),
			Intent:      c.Intent,
			PartID:      c.PartID,
			OrderID:     c.OrderID,
			SourceEmail: m.Filename,
		}
	} else {
		plan.LogOnly = true
	}

	switch c.Intent {
	case IntentQualityAlert:
		if c.PartID != "" {
			plan.StockHold = &StockHoldCommand{
				PartID: c.PartID,
				Reason: holdReason(c, m),
			}
		}
	case IntentDiscontinuation:
		if c.PartID != "" {
			plan.LastTimeBuy = &LastTimeBuyCommand{PartID: c.PartID}
		}
	case IntentCancellation, IntentDelay:
		if c.PartID != "" || c.OrderID != "" {
			plan.FulfillmentFlag = &FulfillmentFlagCommand{
				PartID:  c.PartID,
				OrderID: c.OrderID,
			}
		}
	}

	return plan
}

func issueTitle(c Classification) string {
	subject := c.PartID
	if subject == "" {
		subject = c.OrderID
	}
	if subject == "" {
		subject = "Supply chain alert"
	}
	return fmt.Sprintf("[SEV %d] %s: %s", c.RiskScore, c.Intent, subject)
}

func issueDescription(c Classification, m Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Auto-created from email %s.", m.Filename)
	if c.Reasoning != "" {
		fmt.Fprintf(&b, "\n\n%s", c.Reasoning)
	}
	if c.OldValue != "" || c.NewValue != "" {
		fmt.Fprintf(&b, "\n\nReported change: %q -> %q", c.OldValue, c.NewValue)
	}
	return b.String()
}

func holdReason(c Classification, m Message) string {
	if c.Reasoning != "" {
		return c.Reasoning
	}
	return fmt.Sprintf("quality alert from %s", m.Filename)
}
