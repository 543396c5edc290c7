// README: Chat quota constants, errors and the reply shape.
package chat

import "errors"

var (
	// ErrInsufficientTokens is returned when the user has no chat tokens left this month.
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrEmptyMessage       = errors.New("empty message")
	ErrMessageTooLong     = errors.New("message too long")
)

// DefaultTokens is the number of chat messages granted per month.
const DefaultTokens = 100

// MaxMessageRunes bounds a single user message.
const MaxMessageRunes = 2000

// Apology is shown when no provider could answer.
const Apology = "Sorry, may problema sa chatbot ngayon. Try ulit mamaya."

type Reply struct {
	Text       string `json:"reply"`
	Provider   string `json:"provider"`
	Degraded   bool   `json:"degraded"`
	TokensLeft int    `json:"tokens_left"`
}
