package triage

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinRisk = 1
	MaxRisk = 5

	// IssueRiskThreshold is the lowest risk score that opens a tracked issue.
	IssueRiskThreshold = 4
)

// Message is one inbound supplier communication. Immutable once stored;
// ingestion creates it, the classifier consumes it.
type Message struct {
	Filename   string    `json:"filename"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`

	// Optional pre-extracted entity references from the mailbox collaborator.
	PartID  string `json:"part_id,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.Filename) == "" {
		return fmt.Errorf("%w: message filename is required", ErrValidation)
	}
	if strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("%w: message body is required", ErrValidation)
	}
	return nil
}

// Classification is the structured extraction for one message, persisted 1:1
// with its source.
type Classification struct {
	Intent     Intent  `json:"intent"`
	RiskScore  int     `json:"risk_score"`
	Confidence float64 `json:"confidence"`

	PartID  string `json:"part_id,omitempty"`
	OrderID string `json:"order_id,omitempty"`

	// Old/new value pairs carry the concrete change a supplier announced,
	// e.g. a pushed delivery date or a revised unit price.
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`

	Reasoning string `json:"reasoning,omitempty"`
}

func (c Classification) Validate() error {
	if !c.Intent.Valid() {
		return fmt.Errorf("%w: intent %q is not in the enumeration", ErrValidation, string(c.Intent))
	}
	if c.RiskScore < MinRisk || c.RiskScore > MaxRisk {
		return fmt.Errorf("%w: risk score %d out of range [%d,%d]", ErrValidation, c.RiskScore, MinRisk, MaxRisk)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v out of range [0,1]", ErrValidation, c.Confidence)
	}
	return nil
}

// Fallback is the classification used when the provider cannot produce a
// structurally valid result: unclassifiable input still yields OTHER with the
// lowest risk instead of failing the pipeline.
func Fallback() Classification {
	return Classification{
		Intent:     IntentOther,
		RiskScore:  MinRisk,
		Confidence: 0,
	}
}
