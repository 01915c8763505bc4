package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"voltway/internal/ports"
)

func sampleEmail(filename, sender, intent string, risk int) ports.EmailRecord {
	return ports.EmailRecord{
		Filename:   filename,
		Sender:     sender,
		Subject:    "Delivery update",
		Body:       "The battery shipment slips two weeks.",
		ReceivedAt: time.Date(2025, 4, 8, 10, 0, 0, 0, time.UTC),
		Intent:     intent,
		RiskScore:  risk,
		Confidence: 0.9,
		Processed:  true,
	}
}

func TestEmailRepositorySaveIsUpsert(t *testing.T) {
	repo := NewEmailRepository(setupDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, sampleEmail("mail_001.json", "a@supplier.example", "DELAY", 4)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	update := sampleEmail("mail_001.json", "a@supplier.example", "DELAY", 4)
	update.ActionTaken = "issue_created:ISS-20250410-001"
	if err := repo.Save(ctx, update); err != nil {
		t.Fatalf("Save(update) error = %v", err)
	}

	got, err := repo.Get(ctx, "mail_001.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ActionTaken != "issue_created:ISS-20250410-001" {
		t.Fatalf("Get() action = %q", got.ActionTaken)
	}

	all, err := repo.List(ctx, ports.EmailFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("List() len = %d, re-save must not duplicate", len(all))
	}

	if _, err := repo.Get(ctx, "missing.json"); !errors.Is(err, ports.ErrEmailNotFound) {
		t.Fatalf("Get(missing) error = %v", err)
	}
}

func TestEmailRepositoryListFilters(t *testing.T) {
	repo := NewEmailRepository(setupDB(t))
	ctx := context.Background()

	seed := []ports.EmailRecord{
		sampleEmail("mail_001.json", "a@supplier.example", "DELAY", 4),
		sampleEmail("mail_002.json", "b@supplier.example", "QUALITY_ALERT", 5),
		sampleEmail("mail_003.json", "a@supplier.example", "OTHER", 1),
	}
	for _, record := range seed {
		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("Save(%s) error = %v", record.Filename, err)
		}
	}

	bySender, err := repo.List(ctx, ports.EmailFilter{Sender: "a@supplier.example"})
	if err != nil {
		t.Fatalf("List(sender) error = %v", err)
	}
	if len(bySender) != 2 {
		t.Fatalf("List(sender) len = %d", len(bySender))
	}

	byRisk, err := repo.List(ctx, ports.EmailFilter{MinRisk: 4})
	if err != nil {
		t.Fatalf("List(risk) error = %v", err)
	}
	if len(byRisk) != 2 {
		t.Fatalf("List(risk) len = %d", len(byRisk))
	}

	byIntent, err := repo.List(ctx, ports.EmailFilter{Intent: "QUALITY_ALERT"})
	if err != nil {
		t.Fatalf("List(intent) error = %v", err)
	}
	if len(byIntent) != 1 || byIntent[0].Filename != "mail_002.json" {
		t.Fatalf("List(intent) = %+v", byIntent)
	}
}

func TestEmailRepositorySearch(t *testing.T) {
	repo := NewEmailRepository(setupDB(t))
	ctx := context.Background()

	battery := sampleEmail("mail_001.json", "a@supplier.example", "DELAY", 4)
	other := sampleEmail("mail_002.json", "b@supplier.example", "OTHER", 1)
	other.Body = "Catalog attached."
	for _, record := range []ports.EmailRecord{battery, other} {
		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	hits, err := repo.Search(ctx, "BATTERY", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].Filename != "mail_001.json" {
		t.Fatalf("Search() = %+v", hits)
	}
}

func TestEmailRepositorySummarize(t *testing.T) {
	repo := NewEmailRepository(setupDB(t))
	ctx := context.Background()

	processed := sampleEmail("mail_001.json", "a@supplier.example", "DELAY", 4)
	pending := sampleEmail("mail_002.json", "b@supplier.example", "", 0)
	pending.Processed = false
	for _, record := range []ports.EmailRecord{processed, pending} {
		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	summary, err := repo.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.Total != 2 || summary.Processed != 1 {
		t.Fatalf("Summarize() = %+v", summary)
	}
	if summary.ByIntent["DELAY"] != 1 {
		t.Fatalf("Summarize() intents = %+v", summary.ByIntent)
	}
}
