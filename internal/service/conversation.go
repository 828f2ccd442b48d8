package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/stroytech/stroybot/internal/domain"
	"github.com/stroytech/stroybot/internal/telemetry"
)

// Classifier labels a user message as informational or order-related.
type Classifier interface {
	Classify(ctx context.Context, message string) domain.QueryType
}

// SpecExtractor pulls a partial order specification from one message.
type SpecExtractor interface {
	Extract(ctx context.Context, message string) (domain.OrderSpec, error)
}

// PassageRetriever answers informational queries over the corpus.
type PassageRetriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.RetrievedPassage, error)
}

// ProductCatalog resolves a specification into concrete offers.
type ProductCatalog interface {
	FindMatching(ctx context.Context, spec domain.OrderSpec) ([]domain.Product, error)
}

// ConversationService is the per-turn state machine: classify, then either
// retrieve passages or extract, merge into session state, and clarify or
// fulfill. Routine failures degrade to user-visible apology messages; only
// invalid input surfaces as an error.
type ConversationService struct {
	classifier Classifier
	extractor  SpecExtractor
	retriever  PassageRetriever
	catalog    ProductCatalog
	sessions   *SessionStore
}

func NewConversationService(
	classifier Classifier,
	extractor SpecExtractor,
	retriever PassageRetriever,
	catalog ProductCatalog,
	sessions *SessionStore,
) *ConversationService {
	return &ConversationService{
		classifier: classifier,
		extractor:  extractor,
		retriever:  retriever,
		catalog:    catalog,
		sessions:   sessions,
	}
}

// HandleMessage processes one conversation turn.
func (s *ConversationService) HandleMessage(ctx context.Context, query domain.UserQuery) (domain.BotResponse, error) {
	if err := query.Validate(); err != nil {
		return domain.BotResponse{}, err
	}

	ctx, span := telemetry.StartSpan(ctx, "ConversationService.HandleMessage", telemetry.SpanAttributes{
		SessionID: query.SessionID,
		Operation: "chat",
	})
	defer span.End()

	queryType := s.classifier.Classify(ctx, query.Message)
	if queryType == domain.QueryTypeOrder {
		return s.handleOrder(ctx, query)
	}
	return s.handleInformational(ctx, query)
}

func (s *ConversationService) handleInformational(ctx context.Context, query domain.UserQuery) (domain.BotResponse, error) {
	resp := domain.BotResponse{QueryType: domain.QueryTypeInformational}

	passages, err := s.retriever.Retrieve(ctx, query.Message)
	if err != nil {
		log.Printf("conversation: retrieval failed for session %s: %v", query.SessionID, err)
		resp.Message = fmt.Sprintf("Извините, произошла ошибка при поиске информации: %v", err)
		return resp, nil
	}
	if len(passages) == 0 {
		resp.Message = "К сожалению, не удалось найти релевантную информацию по вашему запросу."
		return resp, nil
	}

	resp.Message = FormatPassages(passages)
	return resp, nil
}

func (s *ConversationService) handleOrder(ctx context.Context, query domain.UserQuery) (domain.BotResponse, error) {
	extracted, err := s.extractor.Extract(ctx, query.Message)
	if err != nil {
		// No new fields this turn; previously merged fields stay intact.
		log.Printf("conversation: extraction failed for session %s: %v", query.SessionID, err)
		extracted = domain.OrderSpec{}
	}

	lease := s.sessions.Acquire(query.SessionID)
	merged := domain.MergeOrderSpecs(lease.Spec(), extracted)
	lease.SetSpec(merged)
	lease.Release()

	resp := domain.BotResponse{
		QueryType:     domain.QueryTypeOrder,
		ExtractedSpec: &merged,
	}

	if !merged.IsComplete() {
		resp.NeedsClarification = true
		resp.Message = ClarificationQuestion(merged)
		return resp, nil
	}

	products, err := s.catalog.FindMatching(ctx, merged)
	if err != nil {
		log.Printf("conversation: catalog lookup failed for session %s: %v", query.SessionID, err)
		resp.Message = "Извините, произошла ошибка при подборе товаров. Попробуйте повторить запрос позже."
		return resp, nil
	}

	// The specification stays in the session after fulfillment, so the next
	// turn can refine or repeat the order.
	resp.Message = FormatProductListing(products)
	return resp, nil
}

// FormatPassages renders retrieved passages with their source URLs.
func FormatPassages(passages []domain.RetrievedPassage) string {
	var b strings.Builder
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Text)
	}

	b.WriteString("\n\nИсточники:")
	seen := make(map[string]bool, len(passages))
	for _, p := range passages {
		if p.URL == "" || seen[p.URL] {
			continue
		}
		seen[p.URL] = true
		b.WriteString("\n- " + p.URL)
	}
	return b.String()
}
