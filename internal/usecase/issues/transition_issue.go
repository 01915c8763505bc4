package issues

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/domain/issue"
	"voltway/internal/errs"
	"voltway/internal/ports"
)

// Transition moves an issue along its lifecycle. Illegal moves leave the
// stored status untouched; concurrent writers race on the version column and
// the loser gets issue.ErrConflict.
func (s *Service) Transition(ctx context.Context, input TransitionInput) (ports.IssueRecord, error) {
	if ctx == nil {
		return ports.IssueRecord{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.IssueRecord{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return ports.IssueRecord{}, errors.New("issue repository is required")
	}
	if s.uow == nil {
		return ports.IssueRecord{}, errors.New("issue unit of work is required")
	}

	id := strings.TrimSpace(input.ID)
	if !issue.ValidID(id) {
		return ports.IssueRecord{}, fmt.Errorf("%w: malformed issue id %q", issue.ErrValidation, input.ID)
	}
	target := issue.Status(strings.ToUpper(strings.TrimSpace(input.Target)))
	notes := strings.TrimSpace(input.Notes)

	var updated ports.IssueRecord
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.Get(txCtx, id)
		if err != nil {
			return err
		}

		if err := issue.CheckTransition(issue.Status(current.Status), target); err != nil {
			return err
		}
		if issue.NotesRequired(target) && notes == "" {
			return fmt.Errorf("%w: transition to %s requires notes", issue.ErrValidation, target)
		}

		now := s.now().UTC()
		next := current
		next.Status = string(target)
		next.UpdatedAt = now
		if notes != "" {
			next.Notes = notes
		}
		if target == issue.StatusResolved || target == issue.StatusClosed {
			next.ResolvedAt = &now
		}

		if err := s.repo.Update(txCtx, next, current.Version); err != nil {
			return err
		}
		next.Version = current.Version + 1
		updated = next
		return nil
	}); err != nil {
		return ports.IssueRecord{}, err
	}

	logging.Info(ctx, "issue transitioned", slog.String("issue_id", id), slog.String("status", string(target)))
	return updated, nil
}
