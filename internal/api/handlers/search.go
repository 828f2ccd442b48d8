package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stroytech/stroybot/internal/api"
	"github.com/stroytech/stroybot/internal/domain"
)

type RetrievalService interface {
	RetrieveTopK(ctx context.Context, query string, topK int) ([]domain.RetrievedPassage, error)
}

type SearchHandler struct {
	svc RetrievalService
}

func NewSearchHandler(svc RetrievalService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type SearchResponse struct {
	Results []domain.RetrievedPassage `json:"results"`
}

// Search runs a semantic query over the ingested corpus.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	passages, err := h.svc.RetrieveTopK(r.Context(), req.Query, req.TopK)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if passages == nil {
		passages = []domain.RetrievedPassage{}
	}

	api.Success(w, http.StatusOK, SearchResponse{Results: passages})
}
