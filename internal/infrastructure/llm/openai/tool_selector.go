package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"voltway/internal/ports"
)

// ToolSelector implements ports.ToolSelector on the chat completions API with
// function tools.
type ToolSelector struct {
	client openai.Client
	cfg    Config
}

var _ ports.ToolSelector = (*ToolSelector)(nil)

func NewToolSelector(cfg Config) *ToolSelector {
	return &ToolSelector{
		client: newClient(cfg),
		cfg:    cfg,
	}
}

func (s *ToolSelector) Step(ctx context.Context, req ports.StepRequest) (ports.StepResponse, error) {
	if ctx == nil {
		return ports.StepResponse{}, errors.New("context is required")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Transcript)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, turn := range req.Transcript {
		msg, err := turnToMessage(turn)
		if err != nil {
			return ports.StepResponse{}, err
		}
		messages = append(messages, msg)
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.cfg.Model),
		Messages:    messages,
		Temperature: openai.Float(s.cfg.Temperature),
	}
	// Withholding the catalog forces a prose answer on the final iteration.
	if !req.ForceFinal {
		params.Tools = toolSpecsToParams(req.Tools)
	}

	var resp *openai.ChatCompletion
	err := withRetries(ctx, s.cfg, "assistant step", func(ctx context.Context) error {
		var callErr error
		resp, callErr = s.client.Chat.Completions.New(ctx, params)
		return callErr
	})
	if err != nil {
		return ports.StepResponse{}, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return ports.StepResponse{}, fmt.Errorf("%w: empty choices", ports.ErrSchemaViolation)
	}

	choice := resp.Choices[0].Message
	if len(choice.ToolCalls) > 0 {
		call := choice.ToolCalls[0]
		return ports.StepResponse{
			ToolCall: &ports.ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			},
		}, nil
	}

	return ports.StepResponse{Final: choice.Content}, nil
}

func turnToMessage(turn ports.Turn) (openai.ChatCompletionMessageParamUnion, error) {
	switch turn.Role {
	case ports.RoleUser:
		return openai.UserMessage(turn.Content), nil
	case ports.RoleTool:
		return openai.ToolMessage(turn.Content, turn.ToolCallID), nil
	case ports.RoleAssistant:
		if len(turn.ToolCalls) == 0 {
			return openai.AssistantMessage(turn.Content), nil
		}

		assistant := openai.ChatCompletionAssistantMessageParam{}
		if turn.Content != "" {
			assistant.Content.OfString = openai.String(turn.Content)
		}
		for _, call := range turn.ToolCalls {
			assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
				ID: call.ID,
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}, nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unknown turn role %q", turn.Role)
	}
}

func toolSpecsToParams(specs []ports.ToolSpec) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        spec.Name,
				Description: openai.String(spec.Description),
				Parameters:  shared.FunctionParameters(spec.Parameters),
			},
		})
	}
	return tools
}
