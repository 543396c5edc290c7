// README: Chat provider contract, request shape, and the pet transport system prompt.
package ai

import (
	"context"
	"errors"
)

var (
	ErrEmptyMessage       = errors.New("empty message")
	ErrMissingAPIKey      = errors.New("missing api key")
	ErrEmptyResponse      = errors.New("provider returned no text")
	ErrAllProvidersFailed = errors.New("all chat providers failed")
)

// Request is one single-turn chat exchange.
type Request struct {
	System      string
	Message     string
	Temperature float32
	MaxTokens   int
}

// Provider answers a single chat message.
type Provider interface {
	Name() string
	Reply(ctx context.Context, req Request) (string, error)
}

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
)

// PetTransportPrompt is the assistant persona for the booking site's chat widget.
const PetTransportPrompt = `You are a friendly and helpful assistant for Pet.Love.Travel, a pet transport service in the Philippines.

You help users with:
- Booking details
- Service coverage (Metro Manila, provincial, air transport)
- Fare guidance
- Requirements
- Pet safety and travel process

Guidelines:
- Answer in Taglish (mix Tagalog and English)
- Greet warmly, use emojis (🐾 🚗 🐕)
- Be brief but helpful
- Politely ignore unrelated topics
- Guide users to the "Book Now" button or contact info if needed`
