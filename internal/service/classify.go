package service

import (
	"context"
	"log"
	"strings"

	"github.com/stroytech/stroybot/internal/domain"
)

// Completer produces a plain-text chat completion.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const classifySystemPrompt = `Ты классификатор запросов для магазина строительных материалов.
Определи тип запроса пользователя и ответь ровно одним словом:
"информационный" - если пользователь задает вопрос о материалах, их свойствах или применении;
"заказ" - если пользователь хочет заказать или купить материалы, или уточняет параметры заказа.`

// orderKeywords trigger the order branch when the language model is
// unavailable or answers with something unexpected.
var orderKeywords = []string{
	"нужен",
	"нужно",
	"хочу",
	"заказать",
	"купить",
	"мне нужно",
	"требуется",
}

// ClassificationService decides whether a message is an informational
// question or an order specification. It asks the language model first and
// falls back to keyword matching, so classification always yields a result.
type ClassificationService struct {
	llm Completer
}

func NewClassificationService(llm Completer) *ClassificationService {
	return &ClassificationService{llm: llm}
}

// Classify never fails: LLM errors and unparseable answers degrade to the
// keyword heuristic.
func (s *ClassificationService) Classify(ctx context.Context, message string) domain.QueryType {
	if s.llm != nil {
		raw, err := s.llm.Complete(ctx, classifySystemPrompt, message)
		if err == nil {
			if qt, ok := parseQueryLabel(raw); ok {
				return qt
			}
			log.Printf("classify: unrecognized label %q, falling back to keywords", raw)
		} else {
			log.Printf("classify: completion failed, falling back to keywords: %v", err)
		}
	}
	return classifyByKeywords(message)
}

func parseQueryLabel(raw string) (domain.QueryType, bool) {
	label := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(label, "информацион"):
		return domain.QueryTypeInformational, true
	case strings.Contains(label, "заказ"), strings.Contains(label, "специфика"):
		return domain.QueryTypeOrder, true
	}
	return "", false
}

func classifyByKeywords(message string) domain.QueryType {
	lower := strings.ToLower(message)
	for _, kw := range orderKeywords {
		if strings.Contains(lower, kw) {
			return domain.QueryTypeOrder
		}
	}
	return domain.QueryTypeInformational
}
