/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/errs"
	"voltway/internal/usecase/assistant"
)

var (
	askConversation string
	askShowTools    bool
)

var answerStyle = lipgloss.NewStyle().Bold(true)
var toolStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the supply chain assistant a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: withAppArgs(func(cmd *cobra.Command, args []string, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		out, err := deps.Assistant.Ask(ctx, assistant.AskInput{
			ConversationID: askConversation,
			Question:       strings.Join(args, " "),
		})
		if err != nil {
			return errs.Wrap(err, "ask assistant")
		}

		w := cmd.OutOrStdout()
		if askShowTools {
			for _, call := range out.ToolCalls {
				status := "ok"
				if call.Failed {
					status = "failed"
				}
				fmt.Fprintln(w, toolStyle.Render(fmt.Sprintf("tool %s(%s) %s", call.Name, call.Arguments, status)))
			}
		}
		fmt.Fprintln(w, answerStyle.Render(out.Answer))
		if out.ToolLimitReached {
			fmt.Fprintln(w, toolStyle.Render("note: tool call budget exhausted, answer may be incomplete"))
		}
		fmt.Fprintln(w, toolStyle.Render("conversation: "+out.ConversationID))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askConversation, "conversation", "", "Conversation id to continue")
	askCmd.Flags().BoolVar(&askShowTools, "show-tools", false, "Print the tool calls behind the answer")
}
