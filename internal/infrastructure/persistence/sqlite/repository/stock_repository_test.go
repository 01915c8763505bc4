package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"voltway/internal/ports"
)

func seedStock(t *testing.T, repo *StockRepository) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	rows := []ports.StockRecord{
		{PartID: "P301", PartName: "Frame S2", Quantity: 220, Status: ports.StockStatusNormal, UpdatedAt: now},
		{PartID: "P305", PartName: "Battery pack 48V", Quantity: 60, Status: ports.StockStatusNormal, UpdatedAt: now},
		{PartID: "P323", PartName: "Brake disc 120mm", Quantity: 35, Status: ports.StockStatusNormal, UpdatedAt: now},
		{PartID: "P340", PartName: "Controller board", Quantity: 18, Status: ports.StockStatusHold, UpdatedAt: now},
	}
	for _, row := range rows {
		if err := repo.Upsert(ctx, row); err != nil {
			t.Fatalf("Upsert(%s) error = %v", row.PartID, err)
		}
	}
}

func TestStockRepositoryGetAndListBelow(t *testing.T) {
	repo := NewStockRepository(setupDB(t))
	seedStock(t, repo)
	ctx := context.Background()

	got, err := repo.GetPart(ctx, "P323")
	if err != nil {
		t.Fatalf("GetPart() error = %v", err)
	}
	if got.Quantity != 35 {
		t.Fatalf("GetPart() quantity = %d", got.Quantity)
	}

	if _, err := repo.GetPart(ctx, "P999"); !errors.Is(err, ports.ErrPartNotFound) {
		t.Fatalf("GetPart(missing) error = %v", err)
	}

	low, err := repo.ListBelow(ctx, 50)
	if err != nil {
		t.Fatalf("ListBelow() error = %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("ListBelow() len = %d", len(low))
	}
	// Lowest quantity first.
	if low[0].PartID != "P340" || low[1].PartID != "P323" {
		t.Fatalf("ListBelow() order = %s, %s", low[0].PartID, low[1].PartID)
	}
}

func TestStockRepositorySetStatus(t *testing.T) {
	repo := NewStockRepository(setupDB(t))
	seedStock(t, repo)
	ctx := context.Background()
	at := time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)

	if err := repo.SetStatus(ctx, "P323", ports.StockStatusHold, "quality alert from mail_003.json", at); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	got, err := repo.GetPart(ctx, "P323")
	if err != nil {
		t.Fatalf("GetPart() error = %v", err)
	}
	if got.Status != ports.StockStatusHold || got.HoldReason != "quality alert from mail_003.json" {
		t.Fatalf("GetPart() = %q %q", got.Status, got.HoldReason)
	}

	// Releasing the hold drops the reason even when one is passed.
	if err := repo.SetStatus(ctx, "P323", ports.StockStatusNormal, "stale", at); err != nil {
		t.Fatalf("SetStatus(release) error = %v", err)
	}
	got, err = repo.GetPart(ctx, "P323")
	if err != nil {
		t.Fatalf("GetPart() error = %v", err)
	}
	if got.Status != ports.StockStatusNormal || got.HoldReason != "" {
		t.Fatalf("GetPart() after release = %q %q", got.Status, got.HoldReason)
	}

	if err := repo.SetStatus(ctx, "P999", ports.StockStatusHold, "", at); !errors.Is(err, ports.ErrPartNotFound) {
		t.Fatalf("SetStatus(missing) error = %v", err)
	}
}

func TestStockRepositorySummarize(t *testing.T) {
	repo := NewStockRepository(setupDB(t))
	seedStock(t, repo)

	summary, err := repo.Summarize(context.Background(), 50)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.TotalParts != 4 || summary.TotalUnits != 333 {
		t.Fatalf("Summarize() = %+v", summary)
	}
	if summary.PartsOnHold != 1 || summary.PartsLow != 2 {
		t.Fatalf("Summarize() holds/low = %+v", summary)
	}
}
