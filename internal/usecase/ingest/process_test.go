package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"voltway/internal/domain/triage"
	"voltway/internal/infrastructure/persistence/sqlite/model"
	"voltway/internal/infrastructure/persistence/sqlite/repository"
	"voltway/internal/infrastructure/persistence/sqlite/uow"
	"voltway/internal/ports"
	"voltway/internal/usecase/issues"
)

// fakeClassifier replies from a canned table keyed by filename. Unknown
// filenames fail the test early rather than silently classifying as OTHER.
type fakeClassifier struct {
	t       *testing.T
	results map[string]triage.Classification
	err     error
}

func (f *fakeClassifier) Classify(_ context.Context, msg triage.Message) (triage.Classification, error) {
	if f.err != nil {
		return triage.Classification{}, f.err
	}
	c, ok := f.results[msg.Filename]
	if !ok {
		f.t.Fatalf("unexpected classify call for %s", msg.Filename)
	}
	return c, nil
}

type fixture struct {
	svc    *Service
	emails ports.EmailRepository
	stock  ports.StockRepository
	issues ports.IssueRepository
}

func setupFixture(t *testing.T, classifier ports.MessageClassifier) fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "ingest.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Email{}, &model.Issue{}, &model.StockLevel{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	now := func() time.Time { return time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC) }
	unit := uow.NewUnitOfWork(db)
	emailRepo := repository.NewEmailRepository(db)
	stockRepo := repository.NewStockRepository(db)
	issueRepo := repository.NewIssueRepository(db)

	if err := stockRepo.Upsert(context.Background(), ports.StockRecord{
		PartID: "P323", PartName: "Brake disc 120mm", Quantity: 35,
		Status: ports.StockStatusNormal, UpdatedAt: now(),
	}); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	return fixture{
		svc:    NewService(classifier, emailRepo, stockRepo, issues.NewService(issueRepo, unit, now), unit, now),
		emails: emailRepo,
		stock:  stockRepo,
		issues: issueRepo,
	}
}

func qualityMessage(filename string) triage.Message {
	return triage.Message{
		Filename:   filename,
		Sender:     "qa@brakeparts.example",
		Subject:    "Urgent: brake disc defect",
		Body:       "Batch 7 of P323 fails the torque test, stop assembly.",
		ReceivedAt: time.Date(2025, 4, 9, 8, 0, 0, 0, time.UTC),
	}
}

func TestProcessQualityAlertHoldsStockAndOpensIssue(t *testing.T) {
	classifier := &fakeClassifier{t: t, results: map[string]triage.Classification{
		"mail_001.json": {
			Intent: triage.IntentQualityAlert, RiskScore: 5, Confidence: 0.95,
			PartID: "P323", Reasoning: "supplier reports failed torque test",
		},
	}}
	env := setupFixture(t, classifier)
	ctx := context.Background()

	result, err := env.svc.Process(ctx, qualityMessage("mail_001.json"))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result.Intent != "QUALITY_ALERT" || result.IssueID != "ISS-20250410-001" {
		t.Fatalf("Process() = %+v", result)
	}
	if result.ActionTaken != "issue_created:ISS-20250410-001,stock_hold:P323" {
		t.Fatalf("Process() action = %q", result.ActionTaken)
	}

	part, err := env.stock.GetPart(ctx, "P323")
	if err != nil {
		t.Fatalf("GetPart() error = %v", err)
	}
	if part.Status != ports.StockStatusHold || part.HoldReason != "supplier reports failed torque test" {
		t.Fatalf("GetPart() = %q %q", part.Status, part.HoldReason)
	}

	created, err := env.issues.Get(ctx, result.IssueID)
	if err != nil {
		t.Fatalf("issue Get() error = %v", err)
	}
	if created.Severity != 5 || created.PartID != "P323" || created.SourceEmail != "mail_001.json" {
		t.Fatalf("issue = %+v", created)
	}

	stored, err := env.emails.Get(ctx, "mail_001.json")
	if err != nil {
		t.Fatalf("email Get() error = %v", err)
	}
	if !stored.Processed || stored.IssueID != result.IssueID {
		t.Fatalf("email = %+v", stored)
	}
}

func TestProcessDeduplicatesSecondAlert(t *testing.T) {
	classifier := &fakeClassifier{t: t, results: map[string]triage.Classification{
		"mail_001.json": {Intent: triage.IntentQualityAlert, RiskScore: 5, Confidence: 0.95, PartID: "P323"},
		"mail_002.json": {Intent: triage.IntentQualityAlert, RiskScore: 4, Confidence: 0.9, PartID: "P323"},
	}}
	env := setupFixture(t, classifier)
	ctx := context.Background()

	first, err := env.svc.Process(ctx, qualityMessage("mail_001.json"))
	if err != nil {
		t.Fatalf("Process(first) error = %v", err)
	}
	second, err := env.svc.Process(ctx, qualityMessage("mail_002.json"))
	if err != nil {
		t.Fatalf("Process(second) error = %v", err)
	}

	if second.IssueID != first.IssueID {
		t.Fatalf("Process(second) issue = %q, want %q", second.IssueID, first.IssueID)
	}
	if second.ActionTaken != "issue_deduplicated:"+first.IssueID+",stock_hold:P323" {
		t.Fatalf("Process(second) action = %q", second.ActionTaken)
	}

	summary, err := env.issues.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.Total != 1 {
		t.Fatalf("Summarize() total = %d, want a single absorbed issue", summary.Total)
	}
}

func TestProcessLowRiskLogsOnly(t *testing.T) {
	classifier := &fakeClassifier{t: t, results: map[string]triage.Classification{
		"mail_003.json": {Intent: triage.IntentOther, RiskScore: 1, Confidence: 0.7},
	}}
	env := setupFixture(t, classifier)

	msg := qualityMessage("mail_003.json")
	msg.Body = "Happy holidays from your supplier."
	result, err := env.svc.Process(context.Background(), msg)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result.ActionTaken != "logged" || result.IssueID != "" {
		t.Fatalf("Process() = %+v", result)
	}
}

func TestProcessHoldSkippedForUnknownPart(t *testing.T) {
	classifier := &fakeClassifier{t: t, results: map[string]triage.Classification{
		"mail_004.json": {Intent: triage.IntentQualityAlert, RiskScore: 5, Confidence: 0.9, PartID: "P999"},
	}}
	env := setupFixture(t, classifier)

	result, err := env.svc.Process(context.Background(), qualityMessage("mail_004.json"))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result.ActionTaken != "issue_created:ISS-20250410-001,stock_hold_skipped:P999" {
		t.Fatalf("Process() action = %q", result.ActionTaken)
	}
}

func TestProcessBatchDefersOnRateLimit(t *testing.T) {
	classifier := &fakeClassifier{
		t:   t,
		err: fmt.Errorf("%w: chat completion after 3 attempts", ports.ErrRateLimitExceeded),
	}
	env := setupFixture(t, classifier)
	ctx := context.Background()

	messages := []triage.Message{
		qualityMessage("mail_001.json"),
		qualityMessage("mail_002.json"),
		qualityMessage("mail_003.json"),
	}
	batch, err := env.svc.ProcessBatch(ctx, messages)
	if !errors.Is(err, ports.ErrRateLimitExceeded) {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if batch.Processed != 0 || batch.Deferred != 3 {
		t.Fatalf("ProcessBatch() = %+v", batch)
	}

	// The first email is kept unclassified for a later retry.
	stored, err := env.emails.Get(ctx, "mail_001.json")
	if err != nil {
		t.Fatalf("email Get() error = %v", err)
	}
	if stored.Processed || stored.Intent != "" {
		t.Fatalf("email = %+v, want stored unprocessed", stored)
	}
	if !stored.ProcessedAt.IsZero() {
		t.Fatalf("email processed_at = %v, want zero on an unprocessed record", stored.ProcessedAt)
	}
}

func TestProcessBatchSkipsFailures(t *testing.T) {
	classifier := &fakeClassifier{t: t, results: map[string]triage.Classification{
		"mail_002.json": {Intent: triage.IntentOther, RiskScore: 1, Confidence: 0.5},
	}}
	env := setupFixture(t, classifier)

	empty := qualityMessage("mail_001.json")
	empty.Body = "  "
	batch, err := env.svc.ProcessBatch(context.Background(), []triage.Message{
		empty,
		qualityMessage("mail_002.json"),
	})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if batch.Failed != 1 || batch.Processed != 1 {
		t.Fatalf("ProcessBatch() = %+v", batch)
	}
}
