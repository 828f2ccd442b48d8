package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stroytech/stroybot/internal/api"
	"github.com/stroytech/stroybot/internal/domain"
)

type ConversationService interface {
	HandleMessage(ctx context.Context, query domain.UserQuery) (domain.BotResponse, error)
}

type ChatHandler struct {
	svc ConversationService
}

func NewChatHandler(svc ConversationService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type ChatResponse struct {
	Message            string            `json:"message"`
	QueryType          string            `json:"query_type"`
	NeedsClarification bool              `json:"needs_clarification"`
	Spec               *domain.OrderSpec `json:"spec,omitempty"`
}

// Chat handles one conversational turn.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.HandleMessage(r.Context(), domain.UserQuery{
		Message:   req.Message,
		SessionID: req.SessionID,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ChatResponse{
		Message:            resp.Message,
		QueryType:          string(resp.QueryType),
		NeedsClarification: resp.NeedsClarification,
		Spec:               resp.ExtractedSpec,
	})
}
