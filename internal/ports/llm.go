package ports

import (
	"context"
	"errors"

	"voltway/internal/domain/triage"
)

var (
	// ErrRateLimited marks a transient provider rejection; callers may retry
	// after a delay.
	ErrRateLimited = errors.New("llm provider rate limited")
	// ErrRateLimitExceeded is terminal: the retry budget is spent.
	ErrRateLimitExceeded = errors.New("llm rate limit retries exhausted")
	// ErrSchemaViolation marks a provider response that does not satisfy the
	// requested structure.
	ErrSchemaViolation = errors.New("llm response violates schema")
)

// MessageClassifier turns one supplier message into a structured
// classification. Implementations must only return structurally valid
// classifications or an error; they never invent a partial result.
type MessageClassifier interface {
	Classify(ctx context.Context, msg triage.Message) (triage.Classification, error)
}

// Turn roles for assistant conversations.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Turn is one entry of an assistant conversation transcript. Assistant turns
// may carry tool calls; tool turns carry the call id they answer.
type Turn struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolSpec describes one callable tool to the model. Parameters is a JSON
// schema object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is the model's request to invoke one tool with raw JSON arguments.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// StepRequest is one orchestration step: the system instruction, the
// transcript so far, and the catalog of tools the model may call.
// ForceFinal withholds the catalog so the model must answer in prose.
type StepRequest struct {
	System     string
	Transcript []Turn
	Tools      []ToolSpec
	ForceFinal bool
}

// StepResponse is either a tool call or a final answer, never both.
type StepResponse struct {
	ToolCall *ToolCall
	Final    string
}

// ToolSelector runs one model step of the assistant loop.
type ToolSelector interface {
	Step(ctx context.Context, req StepRequest) (StepResponse, error)
}
