package access

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petlove/internal/logging"
)

type stubLookup struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, call int) (Role, error)
}

func (s *stubLookup) LookupRole(ctx context.Context, identityID string) (Role, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	fn := s.fn
	s.mu.Unlock()
	return fn(ctx, n)
}

func (s *stubLookup) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubLookup) Set(fn func(ctx context.Context, call int) (Role, error)) {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return nil
}

func (r *sleepRecorder) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func newTestResolver(lookup ProfileLookup, opts Options) (*Resolver, *sleepRecorder) {
	rec := &sleepRecorder{}
	r := NewResolver(lookup, opts, logging.Discard())
	r.sleep = rec.sleep
	return r, rec
}

func blockUntilDone(ctx context.Context, _ int) (Role, error) {
	<-ctx.Done()
	return RoleNone, ctx.Err()
}

var errUnreachable = errors.New("connection refused")

func TestResolve_NilIdentity(t *testing.T) {
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) { return RoleAdmin, nil }}
	r, _ := newTestResolver(lookup, DefaultOptions())

	got := r.Resolve(context.Background(), nil)

	assert.Equal(t, Anonymous(), got)
	assert.False(t, got.IsAdmin())
	assert.Equal(t, 0, lookup.Calls())
}

func TestResolve_SucceedsOnSecondAttempt(t *testing.T) {
	lookup := &stubLookup{fn: func(_ context.Context, call int) (Role, error) {
		if call == 1 {
			return RoleNone, errUnreachable
		}
		return RoleAdmin, nil
	}}
	r, rec := newTestResolver(lookup, Options{Timeout: time.Second, Attempts: 3, Backoff: time.Second})

	got := r.Resolve(context.Background(), &Identity{ID: "u1"})

	assert.Equal(t, RoleAdmin, got.Role)
	assert.Equal(t, SourceProfile, got.Source)
	assert.Equal(t, "u1", got.IdentityID)
	assert.Equal(t, 2, lookup.Calls())
	assert.Equal(t, []time.Duration{time.Second}, rec.Delays())
}

func TestResolve_TimeoutFallsBackThenRefreshOverrides(t *testing.T) {
	lookup := &stubLookup{fn: blockUntilDone}
	r, rec := newTestResolver(lookup, Options{Timeout: 10 * time.Millisecond, Attempts: 3, Backoff: time.Second})
	identity := &Identity{ID: "u1", Metadata: map[string]any{"is_admin": true}}

	got := r.Resolve(context.Background(), identity)

	assert.Equal(t, SourceMetadataFallback, got.Source)
	assert.Equal(t, RoleAdmin, got.Role)
	assert.Equal(t, 3, lookup.Calls())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.Delays())

	cached, ok := r.Peek("u1")
	require.True(t, ok)
	assert.Equal(t, SourceMetadataFallback, cached.Source)

	lookup.Set(func(context.Context, int) (Role, error) { return RoleUser, nil })
	refreshed := r.Refresh(context.Background(), identity)

	assert.Equal(t, SourceProfile, refreshed.Source)
	assert.Equal(t, RoleUser, refreshed.Role)
	cached, ok = r.Peek("u1")
	require.True(t, ok)
	assert.Equal(t, SourceProfile, cached.Source)
}

func TestResolve_CachesPerIdentity(t *testing.T) {
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) { return RoleSuperAdmin, nil }}
	r, _ := newTestResolver(lookup, DefaultOptions())
	identity := &Identity{ID: "u1"}

	first := r.Resolve(context.Background(), identity)
	second := r.Resolve(context.Background(), identity)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, lookup.Calls())

	r.Resolve(context.Background(), &Identity{ID: "u2"})
	assert.Equal(t, 2, lookup.Calls())
}

func TestResolve_ProfileNotFoundIsNotRetried(t *testing.T) {
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) { return RoleNone, ErrProfileNotFound }}
	r, rec := newTestResolver(lookup, DefaultOptions())

	got := r.Resolve(context.Background(), &Identity{ID: "u1", Metadata: map[string]any{"role": "super_admin"}})

	assert.Equal(t, SourceMetadataFallback, got.Source)
	assert.Equal(t, RoleSuperAdmin, got.Role)
	assert.Equal(t, 1, lookup.Calls())
	assert.Empty(t, rec.Delays())
}

func TestResolve_EmptyProfileRoleIsUser(t *testing.T) {
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) { return RoleNone, nil }}
	r, _ := newTestResolver(lookup, DefaultOptions())

	got := r.Resolve(context.Background(), &Identity{ID: "u1", Metadata: map[string]any{"is_admin": true}})

	assert.Equal(t, RoleUser, got.Role)
	assert.Equal(t, SourceProfile, got.Source)
}

func TestResolve_ConcurrentCallersShareOneLookup(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 10)
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) {
		started <- struct{}{}
		<-release
		return RoleAdmin, nil
	}}
	r, _ := newTestResolver(lookup, DefaultOptions())
	identity := &Identity{ID: "u1"}

	const callers = 8
	results := make(chan RoleDecision, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- r.Resolve(context.Background(), identity)
		}()
	}

	<-started
	assert.True(t, r.Resolving("u1"))
	// Give the other callers time to join the in-flight lookup.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for d := range results {
		assert.Equal(t, RoleAdmin, d.Role)
		assert.Equal(t, SourceProfile, d.Source)
	}
	assert.Equal(t, 1, lookup.Calls())
	assert.False(t, r.Resolving("u1"))
}

func TestResolve_SignOutDiscardsInFlightResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) {
		started <- struct{}{}
		<-release
		return RoleAdmin, nil
	}}
	r, _ := newTestResolver(lookup, DefaultOptions())

	done := make(chan RoleDecision, 1)
	go func() { done <- r.Resolve(context.Background(), &Identity{ID: "u1"}) }()
	<-started

	r.SignOut("u1")
	close(release)
	<-done

	_, ok := r.Peek("u1")
	assert.False(t, ok, "result of a lookup started before sign-out must not be cached")

	lookup.Set(func(context.Context, int) (Role, error) { return RoleUser, nil })
	got := r.Resolve(context.Background(), &Identity{ID: "u1"})
	assert.Equal(t, RoleUser, got.Role)
	assert.Equal(t, 2, lookup.Calls())
}

func TestResolve_RefreshSupersedesSlowLookup(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	lookup := &stubLookup{fn: func(_ context.Context, call int) (Role, error) {
		if call == 1 {
			started <- struct{}{}
			<-release
			return RoleUser, nil
		}
		return RoleAdmin, nil
	}}
	r, _ := newTestResolver(lookup, DefaultOptions())
	identity := &Identity{ID: "u1"}

	slow := make(chan RoleDecision, 1)
	go func() { slow <- r.Resolve(context.Background(), identity) }()
	<-started

	fresh := r.Refresh(context.Background(), identity)
	require.Equal(t, RoleAdmin, fresh.Role)

	close(release)
	stale := <-slow

	assert.Equal(t, RoleAdmin, stale.Role, "a superseded caller gets the fresh decision")
	cached, ok := r.Peek("u1")
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, cached.Role)
}

func TestResolve_CallerCancelGetsFallbackWhileLookupCompletes(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) {
		started <- struct{}{}
		<-release
		return RoleSuperAdmin, nil
	}}
	r, _ := newTestResolver(lookup, DefaultOptions())
	identity := &Identity{ID: "u1", Metadata: map[string]any{"role": "admin"}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan RoleDecision, 1)
	go func() { done <- r.Resolve(ctx, identity) }()
	<-started
	cancel()

	got := <-done
	assert.Equal(t, SourceMetadataFallback, got.Source)
	assert.Equal(t, RoleAdmin, got.Role)

	close(release)
	require.Eventually(t, func() bool {
		d, ok := r.Peek("u1")
		return ok && d.Source == SourceProfile
	}, time.Second, 5*time.Millisecond)
}

func TestResolve_ExpiredDecisionIsLookedUpAgain(t *testing.T) {
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) { return RoleUser, nil }}
	r, _ := newTestResolver(lookup, Options{CacheTTL: time.Minute})
	clock := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }
	identity := &Identity{ID: "u1"}

	r.Resolve(context.Background(), identity)
	clock = clock.Add(59 * time.Second)
	r.Resolve(context.Background(), identity)
	assert.Equal(t, 1, lookup.Calls())

	// Promoted on another instance while this one held the old role.
	lookup.Set(func(context.Context, int) (Role, error) { return RoleAdmin, nil })
	clock = clock.Add(time.Second)
	got := r.Resolve(context.Background(), identity)

	assert.Equal(t, RoleAdmin, got.Role)
	assert.Equal(t, 2, lookup.Calls())
}

func TestResolver_PruneDropsOnlyExpired(t *testing.T) {
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) { return RoleUser, nil }}
	r, _ := newTestResolver(lookup, Options{CacheTTL: time.Minute})
	clock := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	r.Resolve(context.Background(), &Identity{ID: "old"})
	clock = clock.Add(30 * time.Second)
	r.Resolve(context.Background(), &Identity{ID: "recent"})
	clock = clock.Add(40 * time.Second)

	assert.Equal(t, 1, r.Prune())
	_, ok := r.Peek("old")
	assert.False(t, ok)
	_, ok = r.Peek("recent")
	assert.True(t, ok)
}

func TestResolver_NegativeTTLNeverExpires(t *testing.T) {
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) { return RoleUser, nil }}
	r, _ := newTestResolver(lookup, Options{CacheTTL: -1})
	clock := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	r.Resolve(context.Background(), &Identity{ID: "u1"})
	clock = clock.Add(365 * 24 * time.Hour)
	r.Resolve(context.Background(), &Identity{ID: "u1"})

	assert.Equal(t, 0, r.Prune())
	assert.Equal(t, 1, lookup.Calls())
}

func TestSubscribe_ReceivesCommitsAndSignOut(t *testing.T) {
	lookup := &stubLookup{fn: func(context.Context, int) (Role, error) { return RoleAdmin, nil }}
	r, _ := newTestResolver(lookup, DefaultOptions())

	ch, stop := r.Subscribe("u1")
	defer stop()

	r.Resolve(context.Background(), &Identity{ID: "u1"})
	d := <-ch
	assert.Equal(t, RoleAdmin, d.Role)

	r.SignOut("u1")
	d = <-ch
	assert.Equal(t, SourceNone, d.Source)
	assert.Equal(t, "u1", d.IdentityID)
	assert.False(t, d.Authenticated())
}

func TestSubscribe_StopClosesChannel(t *testing.T) {
	r, _ := newTestResolver(&stubLookup{fn: blockUntilDone}, DefaultOptions())
	ch, stop := r.Subscribe("u1")
	stop()
	stop()
	_, open := <-ch
	assert.False(t, open)
}

func TestOptions_MaxWait(t *testing.T) {
	opts := Options{Timeout: 5 * time.Second, Attempts: 3, Backoff: time.Second}
	assert.Equal(t, 15*time.Second+3*time.Second, opts.MaxWait())
	assert.Equal(t, DefaultOptions().MaxWait(), Options{}.MaxWait())
}
