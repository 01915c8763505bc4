package ports

import (
	"context"
	"errors"
	"time"
)

var ErrPartNotFound = errors.New("part not found")

// Stock status values as persisted. HOLD stock exists physically but never
// counts toward availability.
const (
	StockStatusNormal = "NORMAL"
	StockStatusHold   = "HOLD"
)

type StockRecord struct {
	PartID           string    `json:"part_id"`
	PartName         string    `json:"part_name"`
	Warehouse        string    `json:"warehouse,omitempty"`
	Quantity         int       `json:"quantity"`
	Status           string    `json:"status"`
	HoldReason       string    `json:"hold_reason,omitempty"`
	ReorderThreshold int       `json:"reorder_threshold,omitempty"`
	SupplierID       string    `json:"supplier_id,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type StockSummary struct {
	TotalParts   int `json:"total_parts"`
	TotalUnits   int `json:"total_units"`
	PartsOnHold  int `json:"parts_on_hold"`
	PartsLow     int `json:"parts_low"`
	LowThreshold int `json:"low_threshold"`
}

type StockRepository interface {
	GetPart(ctx context.Context, partID string) (StockRecord, error)
	ListParts(ctx context.Context, partIDs []string) ([]StockRecord, error)
	ListAll(ctx context.Context) ([]StockRecord, error)
	ListBelow(ctx context.Context, threshold int) ([]StockRecord, error)
	Summarize(ctx context.Context, lowThreshold int) (StockSummary, error)
	SetStatus(ctx context.Context, partID, status, reason string, at time.Time) error
	Upsert(ctx context.Context, record StockRecord) error
}
