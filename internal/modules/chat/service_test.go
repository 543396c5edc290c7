package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petlove/internal/ai"
	"petlove/internal/logging"
)

type memQuota struct {
	mu   sync.Mutex
	left map[string]int
}

func newMemQuota() *memQuota { return &memQuota{left: map[string]int{}} }

func (q *memQuota) UseToken(_ context.Context, uid string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n, ok := q.left[uid]
	if !ok || n <= 0 {
		return 0, ErrInsufficientTokens
	}
	q.left[uid] = n - 1
	return n - 1, nil
}

func (q *memQuota) EnsureUser(_ context.Context, uid string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.left[uid]; !ok {
		q.left[uid] = DefaultTokens
	}
	return nil
}

func (q *memQuota) Remaining(_ context.Context, uid string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n, ok := q.left[uid]; ok {
		return n, nil
	}
	return DefaultTokens, nil
}

type stubResponder struct {
	reply    string
	provider string
	err      error
	got      ai.Request
}

func (s *stubResponder) ReplyFrom(_ context.Context, req ai.Request) (string, string, error) {
	s.got = req
	return s.reply, s.provider, s.err
}

func TestChat_Reply(t *testing.T) {
	responder := &stubResponder{reply: "Pwede po!", provider: "gemini"}
	svc := NewService(newMemQuota(), responder, logging.Discard())

	got, err := svc.Chat(context.Background(), "u1", "  Pwede ba ang aso sa motor?  ")
	require.NoError(t, err)

	assert.Equal(t, &Reply{Text: "Pwede po!", Provider: "gemini", TokensLeft: DefaultTokens - 1}, got)
	assert.Equal(t, "Pwede ba ang aso sa motor?", responder.got.Message)
	assert.Equal(t, ai.PetTransportPrompt, responder.got.System)
	assert.Equal(t, ai.DefaultMaxTokens, responder.got.MaxTokens)
}

func TestChat_AllProvidersDownReturnsApology(t *testing.T) {
	quota := newMemQuota()
	responder := &stubResponder{err: ai.ErrAllProvidersFailed}
	svc := NewService(quota, responder, logging.Discard())

	got, err := svc.Chat(context.Background(), "u1", "hello")
	require.NoError(t, err)
	assert.True(t, got.Degraded)
	assert.Equal(t, Apology, got.Text)

	// The token is still spent.
	left, _ := quota.Remaining(context.Background(), "u1")
	assert.Equal(t, DefaultTokens-1, left)
}

func TestChat_RejectsBadMessages(t *testing.T) {
	responder := &stubResponder{reply: "x", provider: "gemini"}
	svc := NewService(newMemQuota(), responder, logging.Discard())

	_, err := svc.Chat(context.Background(), "u1", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.Chat(context.Background(), "u1", strings.Repeat("a", MaxMessageRunes+1))
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestChat_QuotaExhausted(t *testing.T) {
	quota := newMemQuota()
	quota.left["u1"] = 1
	responder := &stubResponder{reply: "ok", provider: "chatgpt"}
	svc := NewService(quota, responder, logging.Discard())

	_, err := svc.Chat(context.Background(), "u1", "one")
	require.NoError(t, err)

	responder.got = ai.Request{}
	_, err = svc.Chat(context.Background(), "u1", "two")
	assert.True(t, errors.Is(err, ErrInsufficientTokens))
	assert.Empty(t, responder.got.Message, "no provider call without a token")
}
