package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stroytech/stroybot/internal/domain"
)

// JSONCompleter produces a chat completion constrained to a JSON object.
type JSONCompleter interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

const extractSystemPrompt = `Ты извлекаешь параметры заказа строительных материалов из сообщения пользователя.
Верни JSON-объект со следующими полями, включая только те, что явно упомянуты в сообщении:
{
  "product_type": "тип материала (бетон, песок, щебень, гравий, цемент)",
  "quantity": "количество с единицей измерения, например 5 кубов",
  "characteristics": {"mark": "марка, например М300", "fraction": "фракция, например 5-20", "sub_type": "подвид материала"},
  "delivery": {"address": "адрес доставки", "date": "дата доставки"}
}
Не придумывай значения: пропускай поля, которых нет в сообщении.`

// ExtractionService pulls a partial order specification out of a user
// message. A turn that mentions only the mark yields a spec with only the
// mark set; the caller merges it into whatever the session already holds.
type ExtractionService struct {
	llm JSONCompleter
}

func NewExtractionService(llm JSONCompleter) *ExtractionService {
	return &ExtractionService{llm: llm}
}

// Extract returns the fields found in the message. On any failure it returns
// the empty spec together with an extraction error, so callers can keep the
// conversation going with what they already have.
func (s *ExtractionService) Extract(ctx context.Context, message string) (domain.OrderSpec, error) {
	if s.llm == nil {
		return domain.OrderSpec{}, domain.ErrExtractionFailed
	}

	raw, err := s.llm.CompleteJSON(ctx, extractSystemPrompt, message)
	if err != nil {
		return domain.OrderSpec{}, domain.NewDomainErrorWithCause(domain.ErrCodeExtraction,
			fmt.Sprintf("extraction completion: %v", err), err)
	}

	spec, err := parseOrderSpec(raw)
	if err != nil {
		return domain.OrderSpec{}, domain.NewDomainErrorWithCause(domain.ErrCodeExtraction,
			fmt.Sprintf("parse extraction output: %v", err), err)
	}
	return spec, nil
}

// parseOrderSpec decodes the model output and drops empty and
// whitespace-only values, so a field the model "filled" with "" never
// overwrites real session state downstream.
func parseOrderSpec(raw string) (domain.OrderSpec, error) {
	var spec domain.OrderSpec
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return domain.OrderSpec{}, err
	}

	spec.ProductType = normalizeField(spec.ProductType)
	spec.Quantity = normalizeField(spec.Quantity)
	if spec.Characteristics != nil {
		spec.Characteristics.Mark = normalizeField(spec.Characteristics.Mark)
		spec.Characteristics.Fraction = normalizeField(spec.Characteristics.Fraction)
		spec.Characteristics.SubType = normalizeField(spec.Characteristics.SubType)
		if *spec.Characteristics == (domain.ProductCharacteristics{}) {
			spec.Characteristics = nil
		}
	}
	if spec.Delivery != nil {
		spec.Delivery.Address = normalizeField(spec.Delivery.Address)
		spec.Delivery.Date = normalizeField(spec.Delivery.Date)
		if *spec.Delivery == (domain.DeliveryInfo{}) {
			spec.Delivery = nil
		}
	}
	return spec, nil
}

func normalizeField(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}
