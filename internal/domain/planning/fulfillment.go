package planning

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrValidation marks malformed input to a calculation. Caller's bug, never
// retried.
var ErrValidation = errors.New("validation failed")

// BOMLine is one row of a model's bill of materials.
type BOMLine struct {
	PartID     string
	PartName   string
	QtyPerUnit int
}

// StockSnapshot is the availability view of one part at calculation time.
// OnHold stock never counts toward fulfillment.
type StockSnapshot struct {
	PartID   string
	Quantity int
	OnHold   bool
}

// FulfillmentInput carries pure snapshots; the caller (tool handler) reads
// them from the store so this function stays deterministic and storage-free.
type FulfillmentInput struct {
	Today      time.Time
	TargetDate time.Time
	Model      string
	Quantity   int

	BOM   []BOMLine
	Stock map[string]StockSnapshot
	// Reserved is the per-part quantity already committed to other orders.
	Reserved map[string]int
}

type Shortfall struct {
	PartID  string `json:"part_id"`
	Missing int    `json:"missing"`
}

type FulfillmentResult struct {
	Feasible   bool        `json:"feasible"`
	Shortfalls []Shortfall `json:"shortfalls"`
	// LimitingPart is the part with the largest shortfall; ties break to the
	// lexicographically lowest part id. Empty when feasible.
	LimitingPart string `json:"limiting_part,omitempty"`
}

// CheckFulfillment expands the bill of materials for Model x Quantity and
// compares per-part requirements against non-HOLD on-hand stock minus
// reservations. A missing stock row counts as zero availability: absence is
// never treated as sufficiency.
func CheckFulfillment(in FulfillmentInput) (FulfillmentResult, error) {
	if in.Quantity <= 0 {
		return FulfillmentResult{}, fmt.Errorf("%w: quantity must be > 0, got %d", ErrValidation, in.Quantity)
	}
	if in.TargetDate.Before(in.Today) {
		return FulfillmentResult{}, fmt.Errorf("%w: target date %s is in the past", ErrValidation, in.TargetDate.Format("2006-01-02"))
	}
	if len(in.BOM) == 0 {
		return FulfillmentResult{}, fmt.Errorf("%w: no bill of materials for model %q", ErrValidation, in.Model)
	}

	// A part may appear on multiple BOM lines; requirements accumulate.
	required := make(map[string]int, len(in.BOM))
	for _, line := range in.BOM {
		if line.PartID == "" || line.QtyPerUnit <= 0 {
			return FulfillmentResult{}, fmt.Errorf("%w: malformed BOM line for model %q", ErrValidation, in.Model)
		}
		required[line.PartID] += line.QtyPerUnit * in.Quantity
	}

	shortfalls := make([]Shortfall, 0, len(required))
	for partID, need := range required {
		available := 0
		if snap, ok := in.Stock[partID]; ok && !snap.OnHold {
			available = snap.Quantity
		}
		available -= in.Reserved[partID]
		if available < 0 {
			available = 0
		}

		if missing := need - available; missing > 0 {
			shortfalls = append(shortfalls, Shortfall{PartID: partID, Missing: missing})
		}
	}

	sort.Slice(shortfalls, func(i, j int) bool {
		return shortfalls[i].PartID < shortfalls[j].PartID
	})

	result := FulfillmentResult{
		Feasible:   len(shortfalls) == 0,
		Shortfalls: shortfalls,
	}
	for _, s := range shortfalls {
		if result.LimitingPart == "" {
			result.LimitingPart = s.PartID
			continue
		}
		// Shortfalls are sorted by part id, so a strictly larger miss is the
		// only reason to move the limiting part.
		if current := shortfallFor(shortfalls, result.LimitingPart); s.Missing > current {
			result.LimitingPart = s.PartID
		}
	}

	return result, nil
}

func shortfallFor(shortfalls []Shortfall, partID string) int {
	for _, s := range shortfalls {
		if s.PartID == partID {
			return s.Missing
		}
	}
	return 0
}
