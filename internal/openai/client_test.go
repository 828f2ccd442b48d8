package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOpenAIAPI is a mock for the OpenAI API
type MockOpenAIAPI struct {
	mock.Mock
}

func (m *MockOpenAIAPI) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockOpenAIAPI) CreateCompletion(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	args := m.Called(ctx, system, user, jsonMode)
	return args.String(0), args.Error(1)
}

func makeEmbedding(dim int) []float32 {
	embedding := make([]float32, dim)
	for i := range embedding {
		embedding[i] = float32(i) * 0.001
	}
	return embedding
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: 1536}

	ctx := context.Background()
	text := "Бетон М300 применяется для фундаментов."
	expected := makeEmbedding(1536)

	mockAPI.On("CreateEmbeddings", ctx, []string{text}).Return([][]float32{expected}, nil)

	embedding, err := client.GenerateEmbedding(ctx, text)

	assert.NoError(t, err)
	assert.Len(t, embedding, 1536)
	assert.Equal(t, expected, embedding)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbeddings_Batch(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: 4}

	ctx := context.Background()
	texts := []string{"первый", "второй", "третий"}
	batch := [][]float32{makeEmbedding(4), makeEmbedding(4), makeEmbedding(4)}

	mockAPI.On("CreateEmbeddings", ctx, texts).Return(batch, nil)

	embeddings, err := client.GenerateEmbeddings(ctx, texts)

	require.NoError(t, err)
	assert.Len(t, embeddings, 3)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbeddings_EmptyBatch(t *testing.T) {
	client := NewClient("test-key")

	embeddings, err := client.GenerateEmbeddings(context.Background(), nil)

	assert.NoError(t, err)
	assert.Nil(t, embeddings)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	client := NewClient("")

	embedding, err := client.GenerateEmbedding(context.Background(), "")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Equal(t, ErrEmptyText, err)
}

func TestClient_GenerateEmbedding_APIError(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: 1536}

	ctx := context.Background()
	apiErr := errors.New("API rate limit exceeded")

	mockAPI.On("CreateEmbeddings", ctx, []string{"текст"}).Return(nil, apiErr)

	embedding, err := client.GenerateEmbedding(ctx, "текст")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Contains(t, err.Error(), "failed to create embeddings")
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_WrongDimensions(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: 1536}

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, []string{"текст"}).Return([][]float32{makeEmbedding(512)}, nil)

	embedding, err := client.GenerateEmbedding(ctx, "текст")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.ErrorIs(t, err, ErrWrongDimensions)
	mockAPI.AssertExpectations(t)
}

func TestClient_Complete(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: 1536}

	ctx := context.Background()
	mockAPI.On("CreateCompletion", ctx, "system prompt", "вопрос", false).Return("informational", nil)

	answer, err := client.Complete(ctx, "system prompt", "вопрос")

	assert.NoError(t, err)
	assert.Equal(t, "informational", answer)
	mockAPI.AssertExpectations(t)
}

func TestClient_CompleteJSON(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: 1536}

	ctx := context.Background()
	mockAPI.On("CreateCompletion", ctx, "system prompt", "запрос", true).Return(`{"product_type":"бетон"}`, nil)

	answer, err := client.CompleteJSON(ctx, "system prompt", "запрос")

	assert.NoError(t, err)
	assert.JSONEq(t, `{"product_type":"бетон"}`, answer)
	mockAPI.AssertExpectations(t)
}

func TestClient_Complete_EmptyMessage(t *testing.T) {
	client := NewClient("test-key")

	_, err := client.Complete(context.Background(), "system", "")

	assert.Equal(t, ErrEmptyText, err)
}

func TestNewClientFromEnv_NoAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	client, err := NewClientFromEnv()

	assert.Nil(t, client)
	assert.Equal(t, ErrNoAPIKey, err)
}

func TestNewClientFromEnv_WithAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-api-key")

	client, err := NewClientFromEnv()

	assert.NotNil(t, client)
	assert.NoError(t, err)
}
