package issues

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/domain/issue"
	"voltway/internal/domain/triage"
	"voltway/internal/errs"
	"voltway/internal/ports"
)

// Create opens a new issue with a daily-sequenced identifier. When an open
// issue already tracks the same intent, part and order, the duplicate is
// absorbed: the existing id comes back and nothing is written.
func (s *Service) Create(ctx context.Context, input CreateInput) (CreateResult, error) {
	if ctx == nil {
		return CreateResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return CreateResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return CreateResult{}, errors.New("issue repository is required")
	}
	if s.uow == nil {
		return CreateResult{}, errors.New("issue unit of work is required")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return CreateResult{}, fmt.Errorf("%w: title is required", issue.ErrValidation)
	}
	if err := issue.CheckSeverity(input.Severity); err != nil {
		return CreateResult{}, err
	}

	intent := strings.TrimSpace(input.Intent)
	if intent != "" {
		parsed, err := triage.ParseIntent(intent)
		if err != nil {
			return CreateResult{}, err
		}
		intent = string(parsed)
	}

	normalized := input
	normalized.Title = title
	normalized.Intent = intent

	var result CreateResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		result, err = s.CreateInTx(txCtx, normalized)
		return err
	}); err != nil {
		return CreateResult{}, err
	}

	if result.Existing {
		logging.Info(ctx, "issue deduplicated", slog.String("issue_id", result.ID), slog.String("intent", intent))
	} else {
		logging.Info(ctx, "issue created", slog.String("issue_id", result.ID), slog.Int("severity", input.Severity))
	}
	return result, nil
}

// CreateInTx performs the duplicate check, sequence allocation and insert
// inside the caller's ambient transaction. The ingest pipeline uses it to
// keep the email record and its issue atomic; input must already be
// validated and normalized.
func (s *Service) CreateInTx(txCtx context.Context, input CreateInput) (CreateResult, error) {
	// Dedupe only applies when the issue is anchored to something concrete;
	// free-form manual issues always create.
	if input.Intent != "" && (input.PartID != "" || input.OrderID != "") {
		existing, err := s.repo.FindOpenDuplicate(txCtx, input.Intent, input.PartID, input.OrderID)
		if err == nil {
			return CreateResult{ID: existing.ID, Existing: true}, nil
		}
		if !errors.Is(err, ports.ErrIssueNotFound) {
			return CreateResult{}, err
		}
	}

	// The prefix count and the insert share one transaction, so two
	// concurrent creators cannot mint the same sequence number.
	now := s.now().UTC()
	count, err := s.repo.CountWithIDPrefix(txCtx, issue.DayPrefix(now))
	if err != nil {
		return CreateResult{}, err
	}

	id := issue.FormatID(now, count+1)
	record := ports.IssueRecord{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Intent:      input.Intent,
		Severity:    input.Severity,
		Status:      string(issue.StatusOpen),
		PartID:      input.PartID,
		OrderID:     input.OrderID,
		SourceEmail: input.SourceEmail,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
	if err := s.repo.Create(txCtx, record); err != nil {
		return CreateResult{}, err
	}
	return CreateResult{ID: id}, nil
}
