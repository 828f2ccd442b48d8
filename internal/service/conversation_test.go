package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stroytech/stroybot/internal/domain"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, message string) domain.QueryType {
	args := m.Called(ctx, message)
	return args.Get(0).(domain.QueryType)
}

type MockSpecExtractor struct {
	mock.Mock
}

func (m *MockSpecExtractor) Extract(ctx context.Context, message string) (domain.OrderSpec, error) {
	args := m.Called(ctx, message)
	return args.Get(0).(domain.OrderSpec), args.Error(1)
}

type MockPassageRetriever struct {
	mock.Mock
}

func (m *MockPassageRetriever) Retrieve(ctx context.Context, query string) ([]domain.RetrievedPassage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RetrievedPassage), args.Error(1)
}

type MockProductCatalog struct {
	mock.Mock
}

func (m *MockProductCatalog) FindMatching(ctx context.Context, spec domain.OrderSpec) ([]domain.Product, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

type conversationFixture struct {
	classifier *MockClassifier
	extractor  *MockSpecExtractor
	retriever  *MockPassageRetriever
	catalog    *MockProductCatalog
	svc        *ConversationService
}

func newConversationFixture() *conversationFixture {
	f := &conversationFixture{
		classifier: new(MockClassifier),
		extractor:  new(MockSpecExtractor),
		retriever:  new(MockPassageRetriever),
		catalog:    new(MockProductCatalog),
	}
	f.svc = NewConversationService(f.classifier, f.extractor, f.retriever, f.catalog, NewSessionStore())
	return f
}

func TestHandleMessageValidation(t *testing.T) {
	f := newConversationFixture()

	_, err := f.svc.HandleMessage(context.Background(), domain.UserQuery{SessionID: "s1"})
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	_, err = f.svc.HandleMessage(context.Background(), domain.UserQuery{Message: "привет"})
	assert.ErrorIs(t, err, domain.ErrEmptySessionID)
}

func TestHandleInformationalQuery(t *testing.T) {
	f := newConversationFixture()
	f.classifier.On("Classify", mock.Anything, mock.Anything).
		Return(domain.QueryTypeInformational)
	f.retriever.On("Retrieve", mock.Anything, "Для чего нужен щебень?").
		Return([]domain.RetrievedPassage{
			{Text: "Щебень применяется в производстве бетона.", URL: "https://example.ru/shcheben", Score: 0.9},
		}, nil)

	resp, err := f.svc.HandleMessage(context.Background(),
		domain.UserQuery{Message: "Для чего нужен щебень?", SessionID: "s1"})

	require.NoError(t, err)
	assert.Equal(t, domain.QueryTypeInformational, resp.QueryType)
	assert.False(t, resp.NeedsClarification)
	assert.Contains(t, resp.Message, "Щебень применяется в производстве бетона.")
	assert.Contains(t, resp.Message, "https://example.ru/shcheben")
}

func TestHandleInformationalEmptyIndex(t *testing.T) {
	f := newConversationFixture()
	f.classifier.On("Classify", mock.Anything, mock.Anything).
		Return(domain.QueryTypeInformational)
	f.retriever.On("Retrieve", mock.Anything, mock.Anything).
		Return([]domain.RetrievedPassage{}, nil)

	resp, err := f.svc.HandleMessage(context.Background(),
		domain.UserQuery{Message: "что-нибудь", SessionID: "s1"})

	require.NoError(t, err)
	assert.Equal(t,
		"К сожалению, не удалось найти релевантную информацию по вашему запросу.",
		resp.Message)
}

func TestHandleInformationalRetrievalFailure(t *testing.T) {
	f := newConversationFixture()
	f.classifier.On("Classify", mock.Anything, mock.Anything).
		Return(domain.QueryTypeInformational)
	f.retriever.On("Retrieve", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	resp, err := f.svc.HandleMessage(context.Background(),
		domain.UserQuery{Message: "вопрос", SessionID: "s1"})

	require.NoError(t, err, "retrieval failure is non-fatal")
	assert.True(t, strings.HasPrefix(resp.Message, "Извините, произошла ошибка при поиске информации:"))
}

func TestHandleOrderTwoTurnScenario(t *testing.T) {
	f := newConversationFixture()
	f.classifier.On("Classify", mock.Anything, mock.Anything).
		Return(domain.QueryTypeOrder)
	f.extractor.On("Extract", mock.Anything, "Хочу заказать бетон М300").
		Return(domain.OrderSpec{
			ProductType:     domain.StringPtr("бетон"),
			Characteristics: &domain.ProductCharacteristics{Mark: domain.StringPtr("М300")},
		}, nil)
	f.extractor.On("Extract", mock.Anything, "5 кубов").
		Return(domain.OrderSpec{Quantity: domain.StringPtr("5 кубов")}, nil)
	f.catalog.On("FindMatching", mock.Anything, mock.MatchedBy(func(spec domain.OrderSpec) bool {
		return domain.StringValue(spec.ProductType) == "бетон" &&
			domain.StringValue(spec.Quantity) == "5 кубов" &&
			spec.Mark() == "М300"
	})).Return([]domain.Product{
		{Name: "Бетон М300", PricePerUnit: 4500, Unit: "м3"},
	}, nil)

	// Turn 1: incomplete spec, quantity missing.
	resp, err := f.svc.HandleMessage(context.Background(),
		domain.UserQuery{Message: "Хочу заказать бетон М300", SessionID: "s1"})

	require.NoError(t, err)
	assert.Equal(t, domain.QueryTypeOrder, resp.QueryType)
	assert.True(t, resp.NeedsClarification)
	assert.Contains(t, resp.Message, "количество")
	require.NotNil(t, resp.ExtractedSpec)
	assert.Equal(t, "М300", resp.ExtractedSpec.Mark())

	// Turn 2: quantity arrives, merged spec is complete, catalog is queried.
	resp, err = f.svc.HandleMessage(context.Background(),
		domain.UserQuery{Message: "5 кубов", SessionID: "s1"})

	require.NoError(t, err)
	assert.False(t, resp.NeedsClarification)
	assert.Contains(t, resp.Message, "Вот предложения по вашему запросу:")
	assert.Contains(t, resp.Message, "Бетон М300")
	f.catalog.AssertExpectations(t)
}

func TestHandleOrderExtractionFailureKeepsSessionState(t *testing.T) {
	f := newConversationFixture()
	f.classifier.On("Classify", mock.Anything, mock.Anything).
		Return(domain.QueryTypeOrder)
	f.extractor.On("Extract", mock.Anything, "Хочу бетон М300").
		Return(domain.OrderSpec{
			ProductType:     domain.StringPtr("бетон"),
			Characteristics: &domain.ProductCharacteristics{Mark: domain.StringPtr("М300")},
		}, nil)
	f.extractor.On("Extract", mock.Anything, "???").
		Return(domain.OrderSpec{}, domain.ErrExtractionFailed)

	_, err := f.svc.HandleMessage(context.Background(),
		domain.UserQuery{Message: "Хочу бетон М300", SessionID: "s1"})
	require.NoError(t, err)

	resp, err := f.svc.HandleMessage(context.Background(),
		domain.UserQuery{Message: "???", SessionID: "s1"})

	require.NoError(t, err, "extraction failure is non-fatal")
	assert.True(t, resp.NeedsClarification)
	require.NotNil(t, resp.ExtractedSpec)
	assert.Equal(t, "М300", resp.ExtractedSpec.Mark(), "previously merged fields survive a failed turn")
}

func TestHandleOrderSessionsAreIndependent(t *testing.T) {
	f := newConversationFixture()
	f.classifier.On("Classify", mock.Anything, mock.Anything).
		Return(domain.QueryTypeOrder)
	f.extractor.On("Extract", mock.Anything, "Хочу бетон М300").
		Return(domain.OrderSpec{
			ProductType:     domain.StringPtr("бетон"),
			Characteristics: &domain.ProductCharacteristics{Mark: domain.StringPtr("М300")},
		}, nil)
	f.extractor.On("Extract", mock.Anything, "5 кубов").
		Return(domain.OrderSpec{Quantity: domain.StringPtr("5 кубов")}, nil)

	_, err := f.svc.HandleMessage(context.Background(),
		domain.UserQuery{Message: "Хочу бетон М300", SessionID: "s1"})
	require.NoError(t, err)

	// Same quantity message in a different session starts from scratch.
	resp, err := f.svc.HandleMessage(context.Background(),
		domain.UserQuery{Message: "5 кубов", SessionID: "s2"})

	require.NoError(t, err)
	assert.True(t, resp.NeedsClarification)
	assert.Nil(t, resp.ExtractedSpec.ProductType)
}

func TestHandleOrderCatalogFailure(t *testing.T) {
	f := newConversationFixture()
	f.classifier.On("Classify", mock.Anything, mock.Anything).
		Return(domain.QueryTypeOrder)
	f.extractor.On("Extract", mock.Anything, mock.Anything).
		Return(betonSpec(), nil)
	f.catalog.On("FindMatching", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	resp, err := f.svc.HandleMessage(context.Background(),
		domain.UserQuery{Message: "Хочу заказать бетон М300, 5 кубов", SessionID: "s1"})

	require.NoError(t, err, "catalog failure is non-fatal")
	assert.Contains(t, resp.Message, "Извините")
}
