package assistant

import (
	"context"
	"encoding/json"
	"log/slog"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/ports"
)

const conversationKeyPrefix = "conversation:"

// loadConversation replays the stored prose transcript for a conversation.
// Only user questions and final answers persist; intermediate tool traffic is
// per-question scaffolding and is not replayed.
func (s *Service) loadConversation(ctx context.Context, conversationID string) []ports.Turn {
	if s.cache == nil {
		return nil
	}

	value, found, err := s.cache.Get(ctx, conversationKeyPrefix+conversationID)
	if err != nil {
		logging.Warn(ctx, "load conversation failed", slog.String("conversation_id", conversationID), slog.String("error", err.Error()))
		return nil
	}
	if !found {
		return nil
	}

	var turns []ports.Turn
	if err := json.Unmarshal([]byte(value), &turns); err != nil {
		logging.Warn(ctx, "corrupt conversation state dropped", slog.String("conversation_id", conversationID))
		return nil
	}

	if max := s.opts.HistoryTurns * 2; max > 0 && len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	return turns
}

func (s *Service) saveConversation(ctx context.Context, conversationID string, turns []ports.Turn) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(turns)
	if err != nil {
		logging.Warn(ctx, "encode conversation failed", slog.String("conversation_id", conversationID), slog.String("error", err.Error()))
		return
	}
	if err := s.cache.Set(ctx, conversationKeyPrefix+conversationID, string(raw), 0); err != nil {
		logging.Warn(ctx, "save conversation failed", slog.String("conversation_id", conversationID), slog.String("error", err.Error()))
	}
}
