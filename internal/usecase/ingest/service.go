package ingest

import (
	"time"

	"voltway/internal/ports"
	"voltway/internal/usecase/issues"
)

type Service struct {
	classifier ports.MessageClassifier
	emails     ports.EmailRepository
	stock      ports.StockRepository
	issues     *issues.Service
	uow        ports.UnitOfWork
	now        func() time.Time
}

func NewService(
	classifier ports.MessageClassifier,
	emails ports.EmailRepository,
	stock ports.StockRepository,
	issueService *issues.Service,
	uow ports.UnitOfWork,
	now func() time.Time,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		classifier: classifier,
		emails:     emails,
		stock:      stock,
		issues:     issueService,
		uow:        uow,
		now:        now,
	}
}

// Result describes what one processed message caused.
type Result struct {
	Filename    string
	Intent      string
	RiskScore   int
	ActionTaken string
	IssueID     string
}

// BatchResult aggregates one directory or stream batch.
type BatchResult struct {
	Processed int
	Deferred  int
	Failed    int
	Results   []Result
}
