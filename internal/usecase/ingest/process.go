package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/domain/triage"
	"voltway/internal/errs"
	"voltway/internal/ports"
	"voltway/internal/usecase/issues"
)

// Process classifies one message and applies the resulting action plan. The
// stored email, any auto-created issue and any stock hold commit in a single
// transaction; a failure on any of them leaves no partial trace.
//
// A spent rate-limit budget stores the email unprocessed and returns
// ports.ErrRateLimitExceeded so batch callers can defer instead of dropping.
func (s *Service) Process(ctx context.Context, msg triage.Message) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, errs.Wrap(err, "check context")
	}
	if err := msg.Validate(); err != nil {
		return Result{}, err
	}

	ctx = logging.WithAttrs(ctx, slog.String("filename", msg.Filename))

	classification, err := s.classifier.Classify(ctx, msg)
	if err != nil {
		if errors.Is(err, ports.ErrRateLimitExceeded) {
			s.storeUnprocessed(ctx, msg)
		}
		return Result{}, err
	}

	// The classifier may return entity ids the mailbox already knew; prefer
	// the extraction, fall back to the pre-extracted hints.
	if classification.PartID == "" {
		classification.PartID = msg.PartID
	}
	if classification.OrderID == "" {
		classification.OrderID = msg.OrderID
	}

	plan := triage.Decide(classification, msg)

	var (
		actions []string
		issueID string
	)
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		actions = actions[:0]
		issueID = ""

		if plan.CreateIssue != nil {
			created, err := s.issues.CreateInTx(txCtx, issues.CreateInput{
				Title:       plan.CreateIssue.Title,
				Description: plan.CreateIssue.Description,
				Intent:      string(plan.CreateIssue.Intent),
				Severity:    plan.CreateIssue.Severity,
				PartID:      plan.CreateIssue.PartID,
				OrderID:     plan.CreateIssue.OrderID,
				SourceEmail: plan.CreateIssue.SourceEmail,
			})
			if err != nil {
				return err
			}
			issueID = created.ID
			if created.Existing {
				actions = append(actions, "issue_deduplicated:"+issueID)
			} else {
				actions = append(actions, "issue_created:"+issueID)
			}
		}

		if plan.StockHold != nil {
			err := s.stock.SetStatus(txCtx, plan.StockHold.PartID, ports.StockStatusHold, plan.StockHold.Reason, s.now().UTC())
			switch {
			case err == nil:
				actions = append(actions, "stock_hold:"+plan.StockHold.PartID)
			case errors.Is(err, ports.ErrPartNotFound):
				// A quality alert for a part we do not stock is still worth
				// the issue; the hold just has nothing to grab.
				logging.Warn(txCtx, "stock hold skipped, part unknown", slog.String("part_id", plan.StockHold.PartID))
				actions = append(actions, "stock_hold_skipped:"+plan.StockHold.PartID)
			default:
				return err
			}
		}

		if plan.LastTimeBuy != nil {
			actions = append(actions, "last_time_buy_review:"+plan.LastTimeBuy.PartID)
		}
		if plan.FulfillmentFlag != nil {
			flag := plan.FulfillmentFlag.PartID
			if flag == "" {
				flag = plan.FulfillmentFlag.OrderID
			}
			actions = append(actions, "fulfillment_check_flagged:"+flag)
		}
		if plan.LogOnly && len(actions) == 0 {
			actions = append(actions, "logged")
		}

		return s.emails.Save(txCtx, emailRecord(msg, classification, strings.Join(actions, ","), issueID, s.now().UTC()))
	}); err != nil {
		return Result{}, err
	}

	result := Result{
		Filename:    msg.Filename,
		Intent:      string(classification.Intent),
		RiskScore:   classification.RiskScore,
		ActionTaken: strings.Join(actions, ","),
		IssueID:     issueID,
	}
	logging.Info(ctx, "email processed",
		slog.String("intent", result.Intent),
		slog.Int("risk", result.RiskScore),
		slog.String("action", result.ActionTaken),
	)
	return result, nil
}

// ProcessBatch runs messages in order. Rate-limit exhaustion defers the
// remainder of the batch untouched; any other failure is counted and skipped
// so one bad email cannot wedge the inbox.
func (s *Service) ProcessBatch(ctx context.Context, messages []triage.Message) (BatchResult, error) {
	if ctx == nil {
		return BatchResult{}, errors.New("context is required")
	}

	var batch BatchResult
	for i, msg := range messages {
		if err := ctx.Err(); err != nil {
			return batch, errs.Wrap(err, "check context")
		}

		result, err := s.Process(ctx, msg)
		if err != nil {
			if errors.Is(err, ports.ErrRateLimitExceeded) {
				batch.Deferred = len(messages) - i
				logging.Warn(ctx, "batch deferred on rate limit", slog.Int("deferred", batch.Deferred))
				return batch, err
			}
			batch.Failed++
			logging.Error(ctx, "email failed", slog.String("filename", msg.Filename), slog.String("error", err.Error()))
			continue
		}

		batch.Processed++
		batch.Results = append(batch.Results, result)
	}
	return batch, nil
}

// storeUnprocessed keeps the raw email so a later run can classify it once
// the provider recovers. Best effort: losing this write only costs a re-read
// of the source file.
func (s *Service) storeUnprocessed(ctx context.Context, msg triage.Message) {
	record := emailRecord(msg, triage.Classification{}, "", "", time.Time{})
	record.Processed = false
	if err := s.emails.Save(ctx, record); err != nil {
		logging.Warn(ctx, "store unprocessed email failed", slog.String("error", err.Error()))
	}
}

func emailRecord(msg triage.Message, c triage.Classification, action, issueID string, at time.Time) ports.EmailRecord {
	return ports.EmailRecord{
		Filename:    msg.Filename,
		Sender:      msg.Sender,
		Subject:     msg.Subject,
		Body:        msg.Body,
		ReceivedAt:  msg.ReceivedAt,
		Intent:      string(c.Intent),
		RiskScore:   c.RiskScore,
		Confidence:  c.Confidence,
		PartID:      c.PartID,
		OrderID:     c.OrderID,
		OldValue:    c.OldValue,
		NewValue:    c.NewValue,
		Reasoning:   c.Reasoning,
		ActionTaken: action,
		IssueID:     issueID,
		Processed:   true,
		ProcessedAt: at,
	}
}
