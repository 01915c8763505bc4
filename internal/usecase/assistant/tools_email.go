package assistant

import (
	"context"

	"voltway/internal/ports"
)

const defaultEmailLimit = 20

type emailHistoryArgs struct {
	Sender string `json:"sender,omitempty" jsonschema:"description=Filter by sender address"`
	Intent string `json:"intent,omitempty" jsonschema:"description=Filter by classified intent such as DELAY"`
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Maximum rows to return"`
}

type searchEmailsArgs struct {
	Query string `json:"query" jsonschema:"description=Case-insensitive text matched against sender and content"`
	Limit int    `json:"limit,omitempty"`
}

type emailsByRiskArgs struct {
	MinRisk int `json:"min_risk" jsonschema:"description=Lowest risk score to include, 1 to 5"`
}

func (s *Service) emailHistoryTool() (tool, error) {
	return newTool("get_email_history",
		"Processed supplier emails, newest first, optionally filtered by sender or intent.",
		func(ctx context.Context, args emailHistoryArgs) (any, error) {
			limit := args.Limit
			if limit <= 0 {
				limit = defaultEmailLimit
			}
			return s.emails.List(ctx, ports.EmailFilter{
				Sender: args.Sender,
				Intent: args.Intent,
				Limit:  limit,
			})
		})
}

func (s *Service) searchEmailsTool() (tool, error) {
	return newTool("search_emails",
		"Full-text search over stored supplier emails.",
		func(ctx context.Context, args searchEmailsArgs) (any, error) {
			limit := args.Limit
			if limit <= 0 {
				limit = defaultEmailLimit
			}
			return s.emails.Search(ctx, args.Query, limit)
		})
}

func (s *Service) emailSummaryTool() (tool, error) {
	return newTool("get_email_summary",
		"Counts of stored emails by intent and by risk score.",
		func(ctx context.Context, _ emptyArgs) (any, error) {
			return s.emails.Summarize(ctx)
		})
}

func (s *Service) emailsByRiskTool() (tool, error) {
	return newTool("get_emails_by_risk",
		"Emails at or above a risk score, newest first.",
		func(ctx context.Context, args emailsByRiskArgs) (any, error) {
			return s.emails.List(ctx, ports.EmailFilter{
				MinRisk: args.MinRisk,
				Limit:   defaultEmailLimit,
			})
		})
}
