package issues

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"voltway/internal/domain/issue"
	"voltway/internal/errs"
	"voltway/internal/ports"
)

func (s *Service) Get(ctx context.Context, id string) (ports.IssueRecord, error) {
	if ctx == nil {
		return ports.IssueRecord{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.IssueRecord{}, errs.Wrap(err, "check context")
	}

	id = strings.TrimSpace(id)
	if !issue.ValidID(id) {
		return ports.IssueRecord{}, fmt.Errorf("%w: malformed issue id %q", issue.ErrValidation, id)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ports.IssueFilter) ([]ports.IssueRecord, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	return s.repo.List(ctx, filter)
}

// ListOpen returns every issue still awaiting work, OPEN before IN_PROGRESS.
func (s *Service) ListOpen(ctx context.Context) ([]ports.IssueRecord, error) {
	open, err := s.List(ctx, ports.IssueFilter{Status: string(issue.StatusOpen)})
	if err != nil {
		return nil, err
	}
	inProgress, err := s.List(ctx, ports.IssueFilter{Status: string(issue.StatusInProgress)})
	if err != nil {
		return nil, err
	}
	return append(open, inProgress...), nil
}

func (s *Service) Summary(ctx context.Context) (ports.IssueSummary, error) {
	if ctx == nil {
		return ports.IssueSummary{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.IssueSummary{}, errs.Wrap(err, "check context")
	}
	return s.repo.Summarize(ctx)
}
