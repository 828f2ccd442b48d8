package service

import (
	"github.com/stroytech/stroybot/internal/domain"
)

// clarifyQuestions maps a missing specification field to the question asked
// about it. The texts are fixed so identical session state always yields the
// identical clarification.
var clarifyQuestions = map[string]string{
	domain.FieldProductType: "Какой материал вам нужен? (бетон, песок, щебень, гравий)",
	domain.FieldQuantity:    "Какое количество вам нужно? (укажите объем или вес)",
	domain.FieldMark:        "Какая марка вам нужна? (например, М300, М350, М400)",
}

// ClarificationQuestion returns the question for the first missing field of
// an incomplete specification, or "" when the specification is complete.
// MissingFields reports fields in a stable order, so for any given state the
// same question is asked.
func ClarificationQuestion(spec domain.OrderSpec) string {
	missing := spec.MissingFields()
	if len(missing) == 0 {
		return ""
	}
	return clarifyQuestions[missing[0]]
}
