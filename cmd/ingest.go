/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/domain/triage"
	"voltway/internal/errs"
	"voltway/internal/infrastructure/inbox"
	"voltway/internal/usecase/ingest"
)

var (
	ingestDir       string
	ingestWatch     bool
	ingestSubscribe bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Classify supplier emails and apply auto-actions",
	Long:  "Processes a directory of exported supplier emails in one batch; --watch keeps following the directory, --subscribe follows the configured NATS subject instead.",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		dir := ingestDir
		if dir == "" {
			dir = deps.App.Config.Ingest.Dir
		}

		handle := func(ctx context.Context, msg triage.Message) error {
			_, err := deps.Ingest.Process(ctx, msg)
			return err
		}

		if ingestSubscribe {
			url := deps.App.Config.Ingest.NATSUrl
			if url == "" {
				return errors.New("ingest.nats_url is not configured")
			}
			return inbox.Subscribe(ctx, url, deps.App.Config.Ingest.NATSSubject, handle)
		}

		messages, err := inbox.LoadDir(ctx, dir)
		if err != nil {
			return err
		}

		batch, err := deps.Ingest.ProcessBatch(ctx, messages)
		if reportErr := reportBatch(cmd, batch); reportErr != nil {
			return reportErr
		}
		if err != nil {
			return errs.Wrap(err, "process batch")
		}

		if ingestWatch {
			return inbox.Watch(ctx, dir, handle)
		}
		return nil
	}),
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func reportBatch(cmd *cobra.Command, batch ingest.BatchResult) error {
	out := cmd.OutOrStdout()
	for _, result := range batch.Results {
		line := fmt.Sprintf("%s  %-16s risk=%d  %s", result.Filename, result.Intent, result.RiskScore, result.ActionTaken)
		if result.IssueID != "" {
			line += "  " + warnStyle.Render(result.IssueID)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return errs.Wrap(err, "write batch output")
		}
	}

	summary := okStyle.Render(fmt.Sprintf("processed %d", batch.Processed))
	if batch.Failed > 0 {
		summary += "  " + failStyle.Render(fmt.Sprintf("failed %d", batch.Failed))
	}
	if batch.Deferred > 0 {
		summary += "  " + dimStyle.Render(fmt.Sprintf("deferred %d (rate limited)", batch.Deferred))
	}
	if _, err := fmt.Fprintln(out, summary); err != nil {
		return errs.Wrap(err, "write batch summary")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "Email directory (defaults to ingest.dir from config)")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "Keep watching the directory after the initial batch")
	ingestCmd.Flags().BoolVar(&ingestSubscribe, "subscribe", false, "Consume emails from the configured NATS subject")
}
