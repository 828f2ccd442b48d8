package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stroytech/stroybot/internal/api"
	"github.com/stroytech/stroybot/internal/domain"
)

type MockRetrievalService struct {
	mock.Mock
}

func (m *MockRetrievalService) RetrieveTopK(ctx context.Context, query string, topK int) ([]domain.RetrievedPassage, error) {
	args := m.Called(ctx, query, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RetrievedPassage), args.Error(1)
}

func TestSearchHandler_Search(t *testing.T) {
	svc := new(MockRetrievalService)
	svc.On("RetrieveTopK", mock.Anything, "бетон м300", 0).
		Return([]domain.RetrievedPassage{
			{Text: "Бетон М300 для фундаментов", URL: "https://example.ru/beton", Score: 0.93},
		}, nil)

	handler := NewSearchHandler(svc)

	payload, _ := json.Marshal(SearchRequest{Query: "бетон м300"})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Data SearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Data.Results, 1)
	assert.Equal(t, "https://example.ru/beton", result.Data.Results[0].URL)
	assert.InDelta(t, 0.93, result.Data.Results[0].Score, 1e-6)
}

func TestSearchHandler_EmptyQuery(t *testing.T) {
	svc := new(MockRetrievalService)
	svc.On("RetrieveTopK", mock.Anything, "", 0).
		Return(nil, domain.ErrEmptyQuery)

	handler := NewSearchHandler(svc)

	payload, _ := json.Marshal(SearchRequest{})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler_EmptyIndexReturnsEmptyList(t *testing.T) {
	svc := new(MockRetrievalService)
	svc.On("RetrieveTopK", mock.Anything, "что-нибудь", 0).
		Return([]domain.RetrievedPassage{}, nil)

	handler := NewSearchHandler(svc)

	payload, _ := json.Marshal(SearchRequest{Query: "что-нибудь"})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Data SearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotNil(t, result.Data.Results)
	assert.Empty(t, result.Data.Results)
}

func TestSearchHandler_RetrievalFailure(t *testing.T) {
	svc := new(MockRetrievalService)
	svc.On("RetrieveTopK", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrRetrievalFailed)

	handler := NewSearchHandler(svc)

	payload, _ := json.Marshal(SearchRequest{Query: "бетон"})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	handler.Search(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var result api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Contains(t, result.Error, "retrieval")
}
