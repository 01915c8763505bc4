package planning

import (
	"errors"
	"testing"
	"time"
)

var (
	today  = time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	target = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
)

func TestCheckFulfillmentShortfall(t *testing.T) {
	result, err := CheckFulfillment(FulfillmentInput{
		Today:      today,
		TargetDate: target,
		Model:      "S2_V2",
		Quantity:   100,
		BOM: []BOMLine{
			{PartID: "P301", QtyPerUnit: 1},
			{PartID: "P305", QtyPerUnit: 1},
		},
		Stock: map[string]StockSnapshot{
			"P301": {PartID: "P301", Quantity: 220},
			"P305": {PartID: "P305", Quantity: 60},
		},
	})
	if err != nil {
		t.Fatalf("CheckFulfillment() error = %v", err)
	}
	if result.Feasible {
		t.Fatalf("CheckFulfillment() expected infeasible")
	}
	if len(result.Shortfalls) != 1 {
		t.Fatalf("CheckFulfillment() shortfalls = %+v", result.Shortfalls)
	}
	if result.Shortfalls[0].PartID != "P305" || result.Shortfalls[0].Missing != 40 {
		t.Fatalf("CheckFulfillment() shortfall = %+v", result.Shortfalls[0])
	}
	if result.LimitingPart != "P305" {
		t.Fatalf("CheckFulfillment() limiting part = %q", result.LimitingPart)
	}
}

func TestCheckFulfillmentFeasible(t *testing.T) {
	result, err := CheckFulfillment(FulfillmentInput{
		Today:      today,
		TargetDate: target,
		Model:      "S2_V2",
		Quantity:   10,
		BOM:        []BOMLine{{PartID: "P301", QtyPerUnit: 2}},
		Stock:      map[string]StockSnapshot{"P301": {PartID: "P301", Quantity: 20}},
	})
	if err != nil {
		t.Fatalf("CheckFulfillment() error = %v", err)
	}
	if !result.Feasible || len(result.Shortfalls) != 0 || result.LimitingPart != "" {
		t.Fatalf("CheckFulfillment() = %+v", result)
	}
}

func TestCheckFulfillmentHoldStockDoesNotCount(t *testing.T) {
	result, err := CheckFulfillment(FulfillmentInput{
		Today:      today,
		TargetDate: target,
		Model:      "S2_V2",
		Quantity:   10,
		BOM:        []BOMLine{{PartID: "P323", QtyPerUnit: 1}},
		Stock:      map[string]StockSnapshot{"P323": {PartID: "P323", Quantity: 500, OnHold: true}},
	})
	if err != nil {
		t.Fatalf("CheckFulfillment() error = %v", err)
	}
	if result.Feasible {
		t.Fatalf("CheckFulfillment() hold stock must not satisfy demand")
	}
	if result.Shortfalls[0].Missing != 10 {
		t.Fatalf("CheckFulfillment() missing = %d", result.Shortfalls[0].Missing)
	}
}

func TestCheckFulfillmentReservationsSubtract(t *testing.T) {
	result, err := CheckFulfillment(FulfillmentInput{
		Today:      today,
		TargetDate: target,
		Model:      "S2_V2",
		Quantity:   10,
		BOM:        []BOMLine{{PartID: "P310", QtyPerUnit: 1}},
		Stock:      map[string]StockSnapshot{"P310": {PartID: "P310", Quantity: 15}},
		Reserved:   map[string]int{"P310": 8},
	})
	if err != nil {
		t.Fatalf("CheckFulfillment() error = %v", err)
	}
	if result.Feasible {
		t.Fatalf("CheckFulfillment() reservations must reduce availability")
	}
	if result.Shortfalls[0].Missing != 3 {
		t.Fatalf("CheckFulfillment() missing = %d", result.Shortfalls[0].Missing)
	}
}

func TestCheckFulfillmentMissingStockRowIsZero(t *testing.T) {
	result, err := CheckFulfillment(FulfillmentInput{
		Today:      today,
		TargetDate: target,
		Model:      "S2_V2",
		Quantity:   5,
		BOM:        []BOMLine{{PartID: "P999", QtyPerUnit: 1}},
		Stock:      map[string]StockSnapshot{},
	})
	if err != nil {
		t.Fatalf("CheckFulfillment() error = %v", err)
	}
	if result.Feasible || result.Shortfalls[0].Missing != 5 {
		t.Fatalf("CheckFulfillment() = %+v", result)
	}
}

func TestCheckFulfillmentLimitingPartTieBreak(t *testing.T) {
	result, err := CheckFulfillment(FulfillmentInput{
		Today:      today,
		TargetDate: target,
		Model:      "S2_V2",
		Quantity:   10,
		BOM: []BOMLine{
			{PartID: "P320", QtyPerUnit: 1},
			{PartID: "P310", QtyPerUnit: 1},
		},
		Stock: map[string]StockSnapshot{},
	})
	if err != nil {
		t.Fatalf("CheckFulfillment() error = %v", err)
	}
	// Equal misses: the lexicographically lowest part id wins.
	if result.LimitingPart != "P310" {
		t.Fatalf("CheckFulfillment() limiting part = %q", result.LimitingPart)
	}
}

func TestCheckFulfillmentValidation(t *testing.T) {
	base := FulfillmentInput{
		Today:      today,
		TargetDate: target,
		Model:      "S2_V2",
		Quantity:   10,
		BOM:        []BOMLine{{PartID: "P301", QtyPerUnit: 1}},
	}

	zeroQty := base
	zeroQty.Quantity = 0
	if _, err := CheckFulfillment(zeroQty); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero quantity error = %v", err)
	}

	past := base
	past.TargetDate = today.AddDate(0, 0, -1)
	if _, err := CheckFulfillment(past); !errors.Is(err, ErrValidation) {
		t.Fatalf("past target error = %v", err)
	}

	noBOM := base
	noBOM.BOM = nil
	if _, err := CheckFulfillment(noBOM); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty BOM error = %v", err)
	}

	badLine := base
	badLine.BOM = []BOMLine{{PartID: "P301", QtyPerUnit: 0}}
	if _, err := CheckFulfillment(badLine); !errors.Is(err, ErrValidation) {
		t.Fatalf("malformed BOM line error = %v", err)
	}
}
