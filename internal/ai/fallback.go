package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Fallback tries each provider in order and returns the first reply.
type Fallback struct {
	providers []Provider
	log       *slog.Logger
}

func NewFallback(log *slog.Logger, providers ...Provider) *Fallback {
	if log == nil {
		log = slog.Default()
	}
	return &Fallback{providers: providers, log: log}
}

func (f *Fallback) Name() string {
	names := make([]string, 0, len(f.providers))
	for _, p := range f.providers {
		names = append(names, p.Name())
	}
	return strings.Join(names, "+")
}

// ReplyFrom returns the reply and the name of the provider that produced it.
func (f *Fallback) ReplyFrom(ctx context.Context, req Request) (string, string, error) {
	var lastErr error
	for i, p := range f.providers {
		reply, err := p.Reply(ctx, req)
		if err == nil {
			if i > 0 {
				f.log.InfoContext(ctx, "provider fallback succeeded",
					slog.String("provider", p.Name()),
					slog.Int("attempt", i+1),
				)
			}
			return reply, p.Name(), nil
		}
		lastErr = err
		f.log.WarnContext(ctx, "provider failed, trying next",
			slog.String("provider", p.Name()),
			slog.String("error", err.Error()),
			slog.Int("attempt", i+1),
			slog.Int("remaining", len(f.providers)-i-1),
		)
	}
	if lastErr == nil {
		return "", "", ErrAllProvidersFailed
	}
	return "", "", fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
}

func (f *Fallback) Reply(ctx context.Context, req Request) (string, error) {
	reply, _, err := f.ReplyFrom(ctx, req)
	return reply, err
}
