package ports

import (
	"context"
	"errors"
)

var ErrModelNotFound = errors.New("model not found")

type BOMLineRecord struct {
	Model      string `json:"model"`
	PartID     string `json:"part_id"`
	PartName   string `json:"part_name"`
	QtyPerUnit int    `json:"qty_per_unit"`
}

type BOMRepository interface {
	// ListByModel returns the full bill of materials for one scooter model,
	// or ErrModelNotFound when the model has no lines at all.
	ListByModel(ctx context.Context, model string) ([]BOMLineRecord, error)
	// ListModelsUsingPart answers the reverse lookup: which models consume a
	// given part, and at what quantity per unit.
	ListModelsUsingPart(ctx context.Context, partID string) ([]BOMLineRecord, error)
}
