// README: Chat service. Spends a quota token, then asks the provider chain for a reply.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"petlove/internal/ai"
	"petlove/internal/observability"
)

type Quota interface {
	UseToken(ctx context.Context, uid string) (int, error)
	EnsureUser(ctx context.Context, uid string) error
	Remaining(ctx context.Context, uid string) (int, error)
}

// Responder is satisfied by *ai.Fallback.
type Responder interface {
	ReplyFrom(ctx context.Context, req ai.Request) (reply, provider string, err error)
}

type Service struct {
	quota     Quota
	responder Responder
	log       *slog.Logger
}

func NewService(quota Quota, responder Responder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{quota: quota, responder: responder, log: log}
}

// UseToken deducts one token from the user's monthly allowance. A missing row
// is created and the deduction retried once.
func (s *Service) UseToken(ctx context.Context, uid string) (int, error) {
	left, err := s.quota.UseToken(ctx, uid)
	if !errors.Is(err, ErrInsufficientTokens) {
		return left, err
	}
	if initErr := s.quota.EnsureUser(ctx, uid); initErr != nil {
		return 0, initErr
	}
	return s.quota.UseToken(ctx, uid)
}

func (s *Service) Remaining(ctx context.Context, uid string) (int, error) {
	return s.quota.Remaining(ctx, uid)
}

// Chat answers one message. Provider failures are not errors: the user gets
// the apology text and the reply is marked degraded.
func (s *Service) Chat(ctx context.Context, uid, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > MaxMessageRunes {
		return nil, ErrMessageTooLong
	}

	left, err := s.UseToken(ctx, uid)
	if err != nil {
		return nil, err
	}

	text, provider, err := s.responder.ReplyFrom(ctx, ai.Request{
		System:      ai.PetTransportPrompt,
		Message:     message,
		Temperature: ai.DefaultTemperature,
		MaxTokens:   ai.DefaultMaxTokens,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "chat providers unavailable", "user_id", uid, "error", err)
		observability.ChatRepliesTotal.WithLabelValues("none").Inc()
		return &Reply{Text: Apology, Provider: "none", Degraded: true, TokensLeft: left}, nil
	}
	observability.ChatRepliesTotal.WithLabelValues(provider).Inc()
	return &Reply{Text: text, Provider: provider, TokensLeft: left}, nil
}
