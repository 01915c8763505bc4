package assistant

import (
	"context"
	"errors"

	"voltway/internal/domain/issue"
	"voltway/internal/ports"
	"voltway/internal/usecase/issues"
)

type issueIDArgs struct {
	IssueID string `json:"issue_id" jsonschema:"description=Issue identifier such as ISS-20250410-001"`
}

type createIssueArgs struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Severity    int    `json:"severity" jsonschema:"description=1 (informational) to 5 (production stops)"`
	Intent      string `json:"intent,omitempty" jsonschema:"description=Classified intent such as QUALITY_ALERT"`
	PartID      string `json:"part_id,omitempty"`
	OrderID     string `json:"order_id,omitempty"`
}

type updateIssueStatusArgs struct {
	IssueID string `json:"issue_id"`
	Status  string `json:"status" jsonschema:"description=Target status: IN_PROGRESS RESOLVED or CLOSED"`
	Notes   string `json:"notes,omitempty" jsonschema:"description=Required when resolving or closing"`
}

type resolveIssueArgs struct {
	IssueID string `json:"issue_id"`
	Notes   string `json:"notes" jsonschema:"description=Resolution notes"`
}

func (s *Service) openIssuesTool() (tool, error) {
	return newTool("get_open_issues",
		"Issues still awaiting work: OPEN first, then IN_PROGRESS.",
		func(ctx context.Context, _ emptyArgs) (any, error) {
			return s.issues.ListOpen(ctx)
		})
}

func (s *Service) issueDetailsTool() (tool, error) {
	return newTool("get_issue_details",
		"Full detail of one issue.",
		func(ctx context.Context, args issueIDArgs) (any, error) {
			record, err := s.issues.Get(ctx, args.IssueID)
			if err != nil {
				if errors.Is(err, ports.ErrIssueNotFound) {
					return map[string]any{"found": false, "issue_id": args.IssueID}, nil
				}
				return nil, err
			}
			return record, nil
		})
}

func (s *Service) createIssueTool() (tool, error) {
	return newTool("create_issue",
		"Open a tracked issue. Duplicate open issues for the same intent, part and order are absorbed.",
		func(ctx context.Context, args createIssueArgs) (any, error) {
			result, err := s.issues.Create(ctx, issues.CreateInput{
				Title:       args.Title,
				Description: args.Description,
				Severity:    args.Severity,
				Intent:      args.Intent,
				PartID:      args.PartID,
				OrderID:     args.OrderID,
			})
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"issue_id": result.ID,
				"existing": result.Existing,
			}, nil
		})
}

func (s *Service) updateIssueStatusTool() (tool, error) {
	return newTool("update_issue_status",
		"Move an issue along its lifecycle. Terminal issues cannot reopen.",
		func(ctx context.Context, args updateIssueStatusArgs) (any, error) {
			record, err := s.issues.Transition(ctx, issues.TransitionInput{
				ID:     args.IssueID,
				Target: args.Status,
				Notes:  args.Notes,
			})
			if err != nil {
				return transitionFailure(args.IssueID, err)
			}
			return record, nil
		})
}

func (s *Service) resolveIssueTool() (tool, error) {
	return newTool("resolve_issue",
		"Resolve an issue with notes.",
		func(ctx context.Context, args resolveIssueArgs) (any, error) {
			record, err := s.issues.Transition(ctx, issues.TransitionInput{
				ID:     args.IssueID,
				Target: string(issue.StatusResolved),
				Notes:  args.Notes,
			})
			if err != nil {
				return transitionFailure(args.IssueID, err)
			}
			return record, nil
		})
}

func (s *Service) issueSummaryTool() (tool, error) {
	return newTool("get_issue_summary",
		"Issue counts by status, severity and intent.",
		func(ctx context.Context, _ emptyArgs) (any, error) {
			return s.issues.Summary(ctx)
		})
}

// transitionFailure turns expected lifecycle errors into a structured tool
// result the model can relay, while real faults still propagate.
func transitionFailure(issueID string, err error) (any, error) {
	if errors.Is(err, issue.ErrInvalidTransition) ||
		errors.Is(err, issue.ErrValidation) ||
		errors.Is(err, issue.ErrConflict) ||
		errors.Is(err, ports.ErrIssueNotFound) {
		return map[string]any{
			"issue_id": issueID,
			"updated":  false,
			"error":    err.Error(),
		}, nil
	}
	return nil, err
}
