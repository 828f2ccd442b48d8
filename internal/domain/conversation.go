package domain

// QueryType is the two-way classification of an incoming message.
type QueryType string

const (
	QueryTypeInformational QueryType = "informational"
	QueryTypeOrder         QueryType = "order_specification"
)

// UserQuery is a single conversational turn.
type UserQuery struct {
	Message   string
	SessionID string
}

// Validate checks the user query invariants.
func (q UserQuery) Validate() error {
	if q.Message == "" {
		return ErrEmptyMessage
	}
	if q.SessionID == "" {
		return ErrEmptySessionID
	}
	return nil
}

// BotResponse is the orchestrator's answer for one turn.
type BotResponse struct {
	Message            string
	NeedsClarification bool
	ExtractedSpec      *OrderSpec
	QueryType          QueryType
}
