package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voltway/internal/domain/triage"
	"voltway/internal/ports"
)

// completionServer scripts one response per incoming request and counts the
// calls. A status of 0 means "reply 200 with this content as the assistant
// message".
type completionServer struct {
	t         *testing.T
	responses []scriptedResponse
	calls     int
}

type scriptedResponse struct {
	status  int
	content string
}

func (s *completionServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	i := s.calls
	s.calls++
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	if i < 0 {
		s.t.Fatal("completion server called with no scripted responses")
	}

	resp := s.responses[i]
	if resp.status != 0 && resp.status != http.StatusOK {
		http.Error(w, `{"error":{"message":"scripted failure"}}`, resp.status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": resp.content},
		}},
	})
}

func newTestClassifier(t *testing.T, server *completionServer) *Classifier {
	t.Helper()

	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)

	classifier, err := NewClassifier(Config{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		Model:       "triage-test",
		MaxAttempts: 3,
		Delay:       time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	return classifier
}

func delayContent(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(classificationPayload{
		Intent:     "DELAY",
		RiskScore:  4,
		Confidence: 0.9,
		PartID:     "P305",
		OrderID:    "MO-2025-0042",
		Reasoning:  "supplier slipped two weeks",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return string(raw)
}

func testMessage() triage.Message {
	return triage.Message{
		Filename:   "mail_010.json",
		Sender:     "orders@nordcell.example",
		Subject:    "Shipment update",
		Body:       "The battery shipment for MO-2025-0042 slips by two weeks.",
		ReceivedAt: time.Date(2025, 4, 9, 8, 0, 0, 0, time.UTC),
	}
}

func TestClassifyFallsBackOnMalformedContent(t *testing.T) {
	server := &completionServer{t: t, responses: []scriptedResponse{
		{content: "this is not json"},
	}}
	classifier := newTestClassifier(t, server)

	got, err := classifier.Classify(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Classify() error = %v, want the fallback classification", err)
	}
	if got != triage.Fallback() {
		t.Fatalf("Classify() = %+v, want OTHER/1 fallback", got)
	}
	// One structural retry before degrading.
	if server.calls != 2 {
		t.Fatalf("provider calls = %d, want 2", server.calls)
	}
}

func TestClassifyRecoversOnStructuralRetry(t *testing.T) {
	server := &completionServer{t: t, responses: []scriptedResponse{
		{content: "garbled"},
		{content: delayContent(t)},
	}}
	classifier := newTestClassifier(t, server)

	got, err := classifier.Classify(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Intent != triage.IntentDelay || got.RiskScore != 4 || got.OrderID != "MO-2025-0042" {
		t.Fatalf("Classify() = %+v", got)
	}
	if server.calls != 2 {
		t.Fatalf("provider calls = %d, want 2", server.calls)
	}
}

func TestClassifyRetriesServerErrors(t *testing.T) {
	server := &completionServer{t: t, responses: []scriptedResponse{
		{status: http.StatusInternalServerError},
		{status: http.StatusServiceUnavailable},
		{content: delayContent(t)},
	}}
	classifier := newTestClassifier(t, server)

	got, err := classifier.Classify(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Intent != triage.IntentDelay {
		t.Fatalf("Classify() = %+v", got)
	}
	if server.calls != 3 {
		t.Fatalf("provider calls = %d, want 3", server.calls)
	}
}

func TestClassifyExhaustsRetryBudget(t *testing.T) {
	server := &completionServer{t: t, responses: []scriptedResponse{
		{status: http.StatusTooManyRequests},
	}}
	classifier := newTestClassifier(t, server)

	_, err := classifier.Classify(context.Background(), testMessage())
	if !errors.Is(err, ports.ErrRateLimitExceeded) {
		t.Fatalf("Classify() error = %v", err)
	}
	if server.calls != 3 {
		t.Fatalf("provider calls = %d, want MaxAttempts", server.calls)
	}
}

func TestClassifyDoesNotRetryClientErrors(t *testing.T) {
	server := &completionServer{t: t, responses: []scriptedResponse{
		{status: http.StatusBadRequest},
	}}
	classifier := newTestClassifier(t, server)

	_, err := classifier.Classify(context.Background(), testMessage())
	if err == nil || errors.Is(err, ports.ErrRateLimitExceeded) {
		t.Fatalf("Classify() error = %v, want immediate failure", err)
	}
	if server.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", server.calls)
	}
}

func TestDecodeClassificationMarksSchemaViolations(t *testing.T) {
	if _, err := decodeClassification("not json at all"); !errors.Is(err, ports.ErrSchemaViolation) {
		t.Fatalf("decodeClassification(garbage) error = %v", err)
	}
	if _, err := decodeClassification(`{"intent":"URGENT","risk_score":4,"confidence":0.9}`); err == nil {
		t.Fatal("decodeClassification(bad intent) expected error")
	}
}
