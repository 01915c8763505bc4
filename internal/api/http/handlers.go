package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voltway/internal/domain/issue"
	"voltway/internal/ports"
	"voltway/internal/usecase/assistant"
)

type chatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Question       string `json:"question"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Question == "" {
		respondError(w, http.StatusBadRequest, "question is required")
		return
	}

	out, err := s.assistant.Ask(r.Context(), assistant.AskInput{
		ConversationID: req.ConversationID,
		Question:       req.Question,
	})
	if err != nil {
		if errors.Is(err, ports.ErrRateLimitExceeded) {
			respondError(w, http.StatusServiceUnavailable, "assistant is rate limited, retry later")
			return
		}
		respondError(w, http.StatusInternalServerError, "assistant failed")
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	filter := ports.IssueFilter{
		Status: r.URL.Query().Get("status"),
		Intent: r.URL.Query().Get("intent"),
		PartID: r.URL.Query().Get("part_id"),
	}
	records, err := s.issues.List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list issues failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"issues": records})
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	record, err := s.issues.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrIssueNotFound):
			respondError(w, http.StatusNotFound, "issue not found")
		case errors.Is(err, issue.ErrValidation):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "get issue failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleIssueSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.issues.Summary(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "issue summary failed")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListStock(w http.ResponseWriter, r *http.Request) {
	records, err := s.stock.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list stock failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"stock": records})
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	records, err := s.stock.ListBelow(r.Context(), s.lowStockThreshold)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "low stock query failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"threshold": s.lowStockThreshold,
		"parts":     records,
	})
}
