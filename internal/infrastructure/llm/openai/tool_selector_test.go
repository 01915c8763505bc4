package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voltway/internal/ports"
)

func newTestSelector(t *testing.T, handler http.HandlerFunc) *ToolSelector {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewToolSelector(Config{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		Model:       "selector-test",
		MaxAttempts: 1,
		Delay:       time.Millisecond,
	})
}

func TestStepReturnsToolCall(t *testing.T) {
	var requestBody map[string]any
	selector := newTestSelector(t, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read request: %v", err)
		}
		if err := json.Unmarshal(raw, &requestBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "get_stock_status", "arguments": "{\"part_id\":\"P323\"}"}
					}]
				}
			}]
		}`))
	})

	resp, err := selector.Step(context.Background(), ports.StepRequest{
		System:     "you are a test",
		Transcript: []ports.Turn{{Role: ports.RoleUser, Content: "stock of P323?"}},
		Tools: []ports.ToolSpec{{
			Name:        "get_stock_status",
			Description: "Current stock level for one part",
			Parameters:  map[string]any{"type": "object"},
		}},
	})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if resp.ToolCall == nil || resp.Final != "" {
		t.Fatalf("Step() = %+v, want a tool call", resp)
	}
	if resp.ToolCall.ID != "call_1" || resp.ToolCall.Name != "get_stock_status" {
		t.Fatalf("Step() tool call = %+v", resp.ToolCall)
	}

	// The catalog went over the wire as function tools.
	tools, ok := requestBody["tools"].([]any)
	if !ok || len(tools) != 1 {
		t.Fatalf("request tools = %v", requestBody["tools"])
	}
	tool := tools[0].(map[string]any)
	fn, ok := tool["function"].(map[string]any)
	if !ok || fn["name"] != "get_stock_status" {
		t.Fatalf("request tool = %v", tool)
	}
}

func TestStepReplaysToolExchange(t *testing.T) {
	var requestBody map[string]any
	selector := newTestSelector(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &requestBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "P323 has 35 units."}
			}]
		}`))
	})

	resp, err := selector.Step(context.Background(), ports.StepRequest{
		Transcript: []ports.Turn{
			{Role: ports.RoleUser, Content: "stock of P323?"},
			{Role: ports.RoleAssistant, ToolCalls: []ports.ToolCall{{
				ID: "call_1", Name: "get_stock_status", Arguments: `{"part_id":"P323"}`,
			}}},
			{Role: ports.RoleTool, Content: `{"quantity":35}`, ToolCallID: "call_1"},
		},
		ForceFinal: true,
	})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if resp.Final != "P323 has 35 units." || resp.ToolCall != nil {
		t.Fatalf("Step() = %+v", resp)
	}

	// ForceFinal withholds the catalog entirely.
	if _, present := requestBody["tools"]; present {
		t.Fatalf("request carried tools despite forced final: %v", requestBody["tools"])
	}

	messages := requestBody["messages"].([]any)
	if len(messages) != 3 {
		t.Fatalf("request messages = %d, want the full transcript", len(messages))
	}
	assistant := messages[1].(map[string]any)
	calls, ok := assistant["tool_calls"].([]any)
	if !ok || len(calls) != 1 {
		t.Fatalf("assistant turn = %v", assistant)
	}
	call := calls[0].(map[string]any)
	if call["id"] != "call_1" {
		t.Fatalf("replayed tool call = %v", call)
	}
	toolTurn := messages[2].(map[string]any)
	if toolTurn["role"] != "tool" || toolTurn["tool_call_id"] != "call_1" {
		t.Fatalf("tool turn = %v", toolTurn)
	}
}

func TestTurnToMessageRejectsUnknownRole(t *testing.T) {
	if _, err := turnToMessage(ports.Turn{Role: "system"}); err == nil {
		t.Fatal("turnToMessage(system) expected error")
	}
}
