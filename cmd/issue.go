/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/errs"
	"voltway/internal/ports"
	"voltway/internal/usecase/issues"
)

var (
	issueCreateSeverity int
	issueCreateIntent   string
	issueCreatePart     string
	issueCreateOrder    string
	issueCreateDesc     string

	issueTransitionNotes string

	issueListStatus string
)

// issueCmd represents the issue command group
var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Manage supply chain issues",
}

var issueCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Open a new issue",
	Args:  cobra.ExactArgs(1),
	RunE: withAppArgs(func(cmd *cobra.Command, args []string, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		result, err := deps.Issues.Create(ctx, issues.CreateInput{
			Title:       args[0],
			Description: issueCreateDesc,
			Severity:    issueCreateSeverity,
			Intent:      issueCreateIntent,
			PartID:      issueCreatePart,
			OrderID:     issueCreateOrder,
		})
		if err != nil {
			return errs.Wrap(err, "create issue")
		}

		if result.Existing {
			fmt.Fprintf(cmd.OutOrStdout(), "open duplicate already tracked: %s\n", warnStyle.Render(result.ID))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "issue created: %s\n", okStyle.Render(result.ID))
		}
		return nil
	}),
}

var issueTransitionCmd = &cobra.Command{
	Use:   "transition [id] [status]",
	Short: "Move an issue to a new lifecycle status",
	Args:  cobra.ExactArgs(2),
	RunE: withAppArgs(func(cmd *cobra.Command, args []string, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		record, err := deps.Issues.Transition(ctx, issues.TransitionInput{
			ID:     args[0],
			Target: args[1],
			Notes:  issueTransitionNotes,
		})
		if err != nil {
			return errs.Wrap(err, "transition issue")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", record.ID, okStyle.Render(record.Status))
		return nil
	}),
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues, optionally filtered by status",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		records, err := deps.Issues.List(ctx, ports.IssueFilter{Status: issueListStatus})
		if err != nil {
			return errs.Wrap(err, "list issues")
		}

		out := cmd.OutOrStdout()
		for _, record := range records {
			fmt.Fprintf(out, "%s  sev=%d  %-12s %-16s %s\n",
				record.ID, record.Severity, record.Status, record.Intent, record.Title)
		}
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d issues", len(records))))
		return nil
	}),
}

var issueSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Issue counts by status, severity and intent",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		summary, err := deps.Issues.Summary(ctx)
		if err != nil {
			return errs.Wrap(err, "issue summary")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "total: %d\n", summary.Total)
		for _, status := range sortedKeys(summary.ByStatus) {
			fmt.Fprintf(out, "  %-12s %d\n", status, summary.ByStatus[status])
		}
		for _, intent := range sortedKeys(summary.ByIntent) {
			fmt.Fprintf(out, "  %-16s %d\n", intent, summary.ByIntent[intent])
		}
		return nil
	}),
}

var issueMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Close open duplicates that share intent, part and order",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		groups, err := deps.Issues.MergeDuplicates(ctx)
		if err != nil {
			return errs.Wrap(err, "merge duplicate issues")
		}

		out := cmd.OutOrStdout()
		closed := 0
		for _, group := range groups {
			closed += len(group.Closed)
			for _, id := range group.Closed {
				fmt.Fprintf(out, "%s closed as duplicate of %s\n", id, okStyle.Render(group.Kept))
			}
		}
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d duplicates closed", closed)))
		return nil
	}),
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.AddCommand(issueCreateCmd)
	issueCmd.AddCommand(issueTransitionCmd)
	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueSummaryCmd)
	issueCmd.AddCommand(issueMergeCmd)

	issueCreateCmd.Flags().IntVar(&issueCreateSeverity, "severity", 3, "Severity from 1 to 5")
	issueCreateCmd.Flags().StringVar(&issueCreateIntent, "intent", "", "Classified intent, e.g. QUALITY_ALERT")
	issueCreateCmd.Flags().StringVar(&issueCreatePart, "part", "", "Affected part id")
	issueCreateCmd.Flags().StringVar(&issueCreateOrder, "order", "", "Affected order id")
	issueCreateCmd.Flags().StringVar(&issueCreateDesc, "description", "", "Issue description")

	issueTransitionCmd.Flags().StringVar(&issueTransitionNotes, "notes", "", "Notes, required when resolving or closing")

	issueListCmd.Flags().StringVar(&issueListStatus, "status", "", "Filter by status")
}
