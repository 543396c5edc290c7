// README: Session tracks one client's current identity and streams its role decisions.
package access

import (
	"context"
	"sync"
	"sync/atomic"
)

// Session follows identity changes for a single client. Decisions committed by
// the resolver for the current identity are forwarded to Updates.
type Session struct {
	resolver *Resolver

	inflight atomic.Int32

	mu       sync.Mutex
	identity *Identity
	last     *RoleDecision
	unsub    func()
	updates  chan RoleDecision
	closed   bool
}

func NewSession(resolver *Resolver) *Session {
	return &Session{
		resolver: resolver,
		updates:  make(chan RoleDecision, 1),
	}
}

// SetIdentity handles an identity change event. Switching to a different
// identity signs the previous one out. A nil identity is a sign-out.
func (s *Session) SetIdentity(ctx context.Context, identity *Identity) RoleDecision {
	s.mu.Lock()
	prev := s.identity
	if prev != nil && identity != nil && prev.ID == identity.ID {
		s.identity = identity
		s.mu.Unlock()
		return s.Current(ctx)
	}
	s.stopForwardLocked()
	s.identity = identity
	s.last = nil
	if identity != nil && !s.closed {
		s.startForwardLocked(identity.ID)
	}
	s.mu.Unlock()

	if prev != nil {
		s.resolver.SignOut(prev.ID)
	}
	if identity == nil {
		d := Anonymous()
		s.remember(d)
		s.emit(d)
		return d
	}
	return s.Current(ctx)
}

func (s *Session) Identity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Current resolves the decision for the current identity, using the cache when possible.
func (s *Session) Current(ctx context.Context) RoleDecision {
	identity := s.Identity()
	if identity == nil {
		return Anonymous()
	}
	s.inflight.Add(1)
	defer s.inflight.Add(-1)
	d := s.resolver.Resolve(ctx, identity)
	s.remember(d)
	return d
}

// Refresh forces a new profile lookup for the current identity.
func (s *Session) Refresh(ctx context.Context) RoleDecision {
	identity := s.Identity()
	if identity == nil {
		return Anonymous()
	}
	s.inflight.Add(1)
	defer s.inflight.Add(-1)
	d := s.resolver.Refresh(ctx, identity)
	s.remember(d)
	return d
}

// SignOut drops the cached decision and clears the current identity.
func (s *Session) SignOut() {
	s.SetIdentity(context.Background(), nil)
}

// Resolving reports whether a resolution for the current identity is still running.
func (s *Session) Resolving() bool {
	if s.inflight.Load() > 0 {
		return true
	}
	identity := s.Identity()
	return identity != nil && s.resolver.Resolving(identity.ID)
}

// Evaluate runs the guard against the latest known decision without blocking.
func (s *Session) Evaluate(required []Role, requireAuth bool) AccessOutcome {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	resolving := s.Resolving() || (last == nil && s.Identity() != nil)
	return EvaluateAccess(last, required, requireAuth, resolving)
}

// Updates streams role decisions. Slow readers only see the latest one.
func (s *Session) Updates() <-chan RoleDecision {
	return s.updates
}

// Close stops forwarding and closes Updates. The cached decision is kept.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopForwardLocked()
	close(s.updates)
}

func (s *Session) remember(d RoleDecision) {
	s.mu.Lock()
	s.last = &d
	s.mu.Unlock()
}

func (s *Session) startForwardLocked(identityID string) {
	ch, unsub := s.resolver.Subscribe(identityID)
	s.unsub = unsub
	go func() {
		for d := range ch {
			s.forward(identityID, d)
		}
	}()
}

func (s *Session) forward(identityID string, d RoleDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.identity == nil || s.identity.ID != identityID {
		return
	}
	if d.Source == SourceNone {
		// Signed out elsewhere.
		s.identity = nil
		s.stopForwardLocked()
	}
	s.last = &d
	s.sendLocked(d)
}

func (s *Session) stopForwardLocked() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}

func (s *Session) emit(d RoleDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLocked(d)
}

func (s *Session) sendLocked(d RoleDecision) {
	if s.closed {
		return
	}
	select {
	case s.updates <- d:
		return
	default:
	}
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- d:
	default:
	}
}
