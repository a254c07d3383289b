package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/souldream/backend/internal/chat"
	appErr "github.com/souldream/backend/internal/errors"
)

type ChatHandler struct {
	client *chat.Client
	logger *slog.Logger
}

func NewChatHandler(client *chat.Client, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{client: client, logger: logger}
}

// Chat proxies one message to the configured assistant upstream.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
		Model   string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, appErr.NewBadRequest("invalid payload"))
		return
	}
	if req.Message == "" {
		respondError(w, appErr.NewBadRequest("message is required"))
		return
	}

	reply, err := h.client.Complete(r.Context(), req.Message, req.Model)
	if err != nil {
		h.logger.Error("Chat upstream failed", slog.Any("error", err))
		respondError(w, appErr.NewInternal("chat upstream failed"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"response": reply})
}
