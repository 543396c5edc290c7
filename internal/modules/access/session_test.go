package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextUpdate(t *testing.T, s *Session) RoleDecision {
	t.Helper()
	select {
	case d, ok := <-s.Updates():
		require.True(t, ok, "updates closed")
		return d
	case <-time.After(time.Second):
		t.Fatal("no update received")
		return RoleDecision{}
	}
}

func TestSession_IdentityLifecycle(t *testing.T) {
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) { return RoleUser, nil }}
	r, _ := newTestResolver(lookup, DefaultOptions())
	s := NewSession(r)
	defer s.Close()

	assert.Equal(t, Anonymous(), s.Current(context.Background()))
	assert.Equal(t, ReasonUnauthenticated, s.Evaluate(nil, true).Reason)

	d := s.SetIdentity(context.Background(), &Identity{ID: "u1"})
	assert.Equal(t, RoleUser, d.Role)
	assert.Equal(t, RoleUser, nextUpdate(t, s).Role)

	assert.Equal(t, AccessOutcome{Allowed: true, Reason: ReasonNoRolesRequired}, s.Evaluate(nil, true))
	assert.Equal(t, AccessOutcome{Allowed: false, Reason: ReasonUnauthorized}, s.Evaluate(AdminRoles, true))

	lookup.Set(func(context.Context, int) (Role, error) { return RoleAdmin, nil })
	d = s.Refresh(context.Background())
	assert.Equal(t, RoleAdmin, d.Role)
	assert.Equal(t, RoleAdmin, nextUpdate(t, s).Role)
	assert.Equal(t, AccessOutcome{Allowed: true, Reason: ReasonAuthorized}, s.Evaluate(AdminRoles, true))

	s.SignOut()
	assert.Equal(t, SourceNone, nextUpdate(t, s).Source)
	assert.Nil(t, s.Identity())
	_, cached := r.Peek("u1")
	assert.False(t, cached)
	assert.Equal(t, ReasonUnauthenticated, s.Evaluate(AdminRoles, true).Reason)
}

func TestSession_SwitchingIdentitySignsOutPrevious(t *testing.T) {
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) { return RoleUser, nil }}
	r, _ := newTestResolver(lookup, DefaultOptions())
	s := NewSession(r)
	defer s.Close()

	s.SetIdentity(context.Background(), &Identity{ID: "u1"})
	s.SetIdentity(context.Background(), &Identity{ID: "u2"})

	_, ok := r.Peek("u1")
	assert.False(t, ok)
	_, ok = r.Peek("u2")
	assert.True(t, ok)

	// Same identity again is a cache hit.
	s.SetIdentity(context.Background(), &Identity{ID: "u2"})
	assert.Equal(t, 2, lookup.Calls())
}

func TestSession_SignOutElsewhereClearsIdentity(t *testing.T) {
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) { return RoleUser, nil }}
	r, _ := newTestResolver(lookup, DefaultOptions())
	s := NewSession(r)
	defer s.Close()

	s.SetIdentity(context.Background(), &Identity{ID: "u1"})
	nextUpdate(t, s)

	r.SignOut("u1")
	d := nextUpdate(t, s)
	assert.Equal(t, SourceNone, d.Source)
	assert.Nil(t, s.Identity())
}

func TestSession_ResolvingWhileLookupInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) {
		started <- struct{}{}
		<-release
		return RoleAdmin, nil
	}}
	r, _ := newTestResolver(lookup, DefaultOptions())
	s := NewSession(r)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		s.SetIdentity(context.Background(), &Identity{ID: "u1"})
		close(done)
	}()
	<-started

	assert.True(t, s.Resolving())
	assert.Equal(t, AccessOutcome{Allowed: false, Reason: ReasonLoading}, s.Evaluate(AdminRoles, true))

	close(release)
	<-done
	assert.False(t, s.Resolving())
	assert.True(t, s.Evaluate(AdminRoles, true).Allowed)
}

func TestSession_CloseClosesUpdates(t *testing.T) {
	r, _ := newTestResolver(&stubLookup{fn: blockUntilDone}, DefaultOptions())
	s := NewSession(r)
	s.Close()
	s.Close()
	_, open := <-s.Updates()
	assert.False(t, open)
}
