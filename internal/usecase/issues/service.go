package issues

import (
	"time"

	"voltway/internal/ports"
)

type Service struct {
	repo ports.IssueRepository
	uow  ports.UnitOfWork
	now  func() time.Time
}

// NewService wires issue usecases with repository and transaction boundary.
// now supplies the business clock; deployments with a simulated date inject
// a fixed one.
func NewService(repo ports.IssueRepository, uow ports.UnitOfWork, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo: repo,
		uow:  uow,
		now:  now,
	}
}

type CreateInput struct {
	Title       string
	Description string
	Intent      string
	Severity    int
	PartID      string
	OrderID     string
	SourceEmail string
}

type CreateResult struct {
	ID string
	// Existing is true when an open duplicate absorbed the request instead of
	// creating a new issue.
	Existing bool
}

type TransitionInput struct {
	ID     string
	Target string
	Notes  string
}
