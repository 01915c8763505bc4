package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/errs"
	"voltway/internal/ports"
)

const refusalAnswer = "I can't answer that reliably: the data tools did not return the figures the answer would need. Try rephrasing, or ask about stock, emails, issues, fulfillment or safety stock."

const guardCorrection = "Your previous answer stated figures that no tool output supports. Call the data tools and answer strictly from their results, or say that you cannot answer."

// Ask answers one operator question through the bounded tool loop. Every
// answer is grounded: figures must come from tool output or the question
// itself, and a model that keeps inventing them gets refused on its behalf.
func (s *Service) Ask(ctx context.Context, input AskInput) (AskOutput, error) {
	if ctx == nil {
		return AskOutput{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return AskOutput{}, errs.Wrap(err, "check context")
	}

	question := strings.TrimSpace(input.Question)
	if question == "" {
		return AskOutput{}, errors.New("question is required")
	}

	conversationID := strings.TrimSpace(input.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	ctx = logging.WithAttrs(ctx, slog.String("conversation_id", conversationID))

	history := s.loadConversation(ctx, conversationID)
	transcript := append(append([]ports.Turn{}, history...), ports.Turn{
		Role:    ports.RoleUser,
		Content: question,
	})

	var (
		invocations []ToolInvocation
		answer      string
		refused     bool
		corrected   bool
		limited     bool
	)

	// Tool steps are bounded; past the budget the catalog is withheld and the
	// model must answer in prose. The two extra steps cover one guard
	// correction and the forced final.
	maxSteps := s.opts.MaxToolIterations + 2
	for step := 0; ; step++ {
		if step >= maxSteps {
			answer = refusalAnswer
			refused = true
			break
		}
		force := step >= s.opts.MaxToolIterations
		if force {
			limited = true
		}

		resp, err := s.selector.Step(ctx, ports.StepRequest{
			System:     s.systemPrompt(),
			Transcript: transcript,
			Tools:      s.registry.specs(),
			ForceFinal: force,
		})
		if err != nil {
			return AskOutput{}, err
		}

		if resp.ToolCall != nil {
			call := *resp.ToolCall
			payload, failed := s.runTool(ctx, call)
			invocations = append(invocations, ToolInvocation{
				Name:      call.Name,
				Arguments: call.Arguments,
				Result:    payload,
				Failed:    failed,
			})
			transcript = append(transcript,
				ports.Turn{Role: ports.RoleAssistant, ToolCalls: []ports.ToolCall{call}},
				ports.Turn{Role: ports.RoleTool, Content: payload, ToolCallID: call.ID},
			)
			continue
		}

		candidate := strings.TrimSpace(resp.Final)
		if unsupportedNumbers(candidate, question, invocations) {
			if !corrected {
				corrected = true
				logging.Warn(ctx, "answer rejected by grounding guard")
				transcript = append(transcript,
					ports.Turn{Role: ports.RoleAssistant, Content: candidate},
					ports.Turn{Role: ports.RoleUser, Content: guardCorrection},
				)
				continue
			}
			answer = refusalAnswer
			refused = true
			break
		}

		answer = candidate
		break
	}

	s.saveConversation(ctx, conversationID, append(history,
		ports.Turn{Role: ports.RoleUser, Content: question},
		ports.Turn{Role: ports.RoleAssistant, Content: answer},
	))

	logging.Info(ctx, "question answered",
		slog.Int("tool_calls", len(invocations)),
		slog.Bool("refused", refused),
		slog.Bool("tool_limit_reached", limited),
	)
	return AskOutput{
		ConversationID:   conversationID,
		Answer:           answer,
		Refused:          refused,
		ToolLimitReached: limited,
		ToolCalls:        invocations,
	}, nil
}

// runTool executes one call and renders the result as the tool message
// payload. Argument mistakes go back to the model as structured errors so it
// can correct itself; infrastructure faults surface as failed invocations.
func (s *Service) runTool(ctx context.Context, call ports.ToolCall) (payload string, failed bool) {
	result, err := s.registry.dispatch(ctx, call)
	if err != nil {
		var argErr *ToolArgumentError
		if !errors.As(err, &argErr) {
			logging.Error(ctx, "tool failed", slog.String("tool", call.Name), slog.String("error", err.Error()))
		}
		return fmt.Sprintf(`{"error":%q}`, err.Error()), true
	}

	raw, err := json.Marshal(result)
	if err != nil {
		logging.Error(ctx, "encode tool result failed", slog.String("tool", call.Name), slog.String("error", err.Error()))
		return `{"error":"tool result could not be encoded"}`, true
	}
	return string(raw), false
}

func (s *Service) systemPrompt() string {
	return fmt.Sprintf(`You are the supply chain assistant for Voltway, an electric scooter manufacturer.
Today's date is %s.
Answer operator questions about stock, supplier emails, issues, order fulfillment and safety stock.
Use the provided tools for every fact and figure; never estimate inventory, risk or issue state from memory.
When a tool reports an error, adjust the arguments or tell the operator what is missing.
Keep answers short and concrete.`, s.now().UTC().Format("2006-01-02"))
}
