package issues

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/domain/issue"
	"voltway/internal/errs"
	"voltway/internal/ports"
)

// MergeGroup records one deduplication: the oldest issue survives, the rest
// are closed pointing at it.
type MergeGroup struct {
	Kept   string   `json:"kept"`
	Closed []string `json:"closed"`
}

type mergeKey struct {
	intent  string
	partID  string
	orderID string
}

// MergeDuplicates sweeps OPEN issues that share intent, part and order,
// keeps the oldest of each group and closes the rest with a note naming the
// survivor. Issues without an intent or without a part/order anchor are never
// merged, and IN_PROGRESS issues are left alone: someone is already working
// them.
func (s *Service) MergeDuplicates(ctx context.Context) ([]MergeGroup, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("issue repository is required")
	}
	if s.uow == nil {
		return nil, errors.New("issue unit of work is required")
	}

	var groups []MergeGroup
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		open, err := s.repo.List(txCtx, ports.IssueFilter{Status: string(issue.StatusOpen)})
		if err != nil {
			return err
		}

		buckets := make(map[mergeKey][]ports.IssueRecord)
		for _, record := range open {
			if record.Intent == "" || (record.PartID == "" && record.OrderID == "") {
				continue
			}
			key := mergeKey{intent: record.Intent, partID: record.PartID, orderID: record.OrderID}
			buckets[key] = append(buckets[key], record)
		}

		keys := make([]mergeKey, 0, len(buckets))
		for key := range buckets {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, b := keys[i], keys[j]
			if a.intent != b.intent {
				return a.intent < b.intent
			}
			if a.partID != b.partID {
				return a.partID < b.partID
			}
			return a.orderID < b.orderID
		})

		groups = nil
		now := s.now().UTC()
		for _, key := range keys {
			records := buckets[key]
			if len(records) < 2 {
				continue
			}
			sort.Slice(records, func(i, j int) bool {
				if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
					return records[i].CreatedAt.Before(records[j].CreatedAt)
				}
				return records[i].ID < records[j].ID
			})

			group := MergeGroup{Kept: records[0].ID}
			for _, dup := range records[1:] {
				next := dup
				next.Status = string(issue.StatusClosed)
				next.Notes = "duplicate of " + group.Kept
				next.UpdatedAt = now
				next.ResolvedAt = &now
				if err := s.repo.Update(txCtx, next, dup.Version); err != nil {
					return err
				}
				group.Closed = append(group.Closed, dup.ID)
			}
			groups = append(groups, group)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	for _, group := range groups {
		logging.Info(ctx, "duplicate issues merged",
			slog.String("kept", group.Kept),
			slog.Int("closed", len(group.Closed)),
		)
	}
	return groups, nil
}
