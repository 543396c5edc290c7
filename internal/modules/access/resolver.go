// README: Role resolver. Per-identity cache, single in-flight lookup, retry with timeout, metadata fallback.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"petlove/internal/observability"
)

type Options struct {
	// Timeout bounds a single profile lookup attempt.
	Timeout time.Duration
	// Attempts is the total number of lookups before falling back.
	Attempts int
	// Backoff is multiplied by the attempt number between attempts.
	Backoff time.Duration
	// CacheTTL is how long a committed decision is served before the next
	// Resolve looks the profile up again. Negative disables expiry.
	CacheTTL time.Duration
}

func DefaultOptions() Options {
	return Options{Timeout: 5 * time.Second, Attempts: 3, Backoff: time.Second, CacheTTL: 10 * time.Minute}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	if o.Attempts <= 0 {
		o.Attempts = d.Attempts
	}
	if o.Backoff < 0 {
		o.Backoff = 0
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = d.CacheTTL
	}
	return o
}

// MaxWait is the longest a single resolution can take before the fallback applies.
func (o Options) MaxWait() time.Duration {
	o = o.withDefaults()
	total := time.Duration(o.Attempts) * o.Timeout
	for attempt := 1; attempt < o.Attempts; attempt++ {
		total += o.Backoff * time.Duration(attempt)
	}
	return total
}

type entry struct {
	generation uint64
	decision   *RoleDecision
}

type outcome struct {
	decision  RoleDecision
	committed bool
}

// Resolver owns the role cache for every identity seen by this process.
// Entries are tagged with a generation; Invalidate and SignOut drop the entry
// so any lookup still running for the old generation is discarded on arrival.
type Resolver struct {
	lookup ProfileLookup
	opts   Options
	log    *slog.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error

	group singleflight.Group

	mu         sync.Mutex
	generation uint64
	entries    map[string]*entry
	subs       map[string]map[chan RoleDecision]struct{}
}

func NewResolver(lookup ProfileLookup, opts Options, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		lookup:  lookup,
		opts:    opts.withDefaults(),
		log:     log,
		now:     time.Now,
		sleep:   sleepContext,
		entries: make(map[string]*entry),
		subs:    make(map[string]map[chan RoleDecision]struct{}),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Resolve returns the role decision for the identity. A nil identity resolves
// to the anonymous decision without touching the profile store. Concurrent
// callers for the same identity share one lookup.
func (r *Resolver) Resolve(ctx context.Context, identity *Identity) RoleDecision {
	if identity == nil || identity.ID == "" {
		return Anonymous()
	}

	r.mu.Lock()
	e, ok := r.entries[identity.ID]
	if ok && r.expiredLocked(e) {
		delete(r.entries, identity.ID)
		observability.RoleCacheExpiredTotal.Inc()
		ok = false
	}
	if !ok {
		r.generation++
		e = &entry{generation: r.generation}
		r.entries[identity.ID] = e
	}
	if e.decision != nil {
		d := *e.decision
		r.mu.Unlock()
		observability.RoleCacheHitsTotal.Inc()
		return d
	}
	gen := e.generation
	r.mu.Unlock()

	id := *identity
	key := id.ID + "#" + strconv.FormatUint(gen, 10)
	ch := r.group.DoChan(key, func() (interface{}, error) {
		// The shared lookup outlives any single caller.
		return r.resolve(context.WithoutCancel(ctx), id, gen), nil
	})

	select {
	case <-ctx.Done():
		r.log.WarnContext(ctx, "role resolution abandoned by caller, using metadata fallback",
			"identity_id", id.ID, "error", ctx.Err())
		return r.fallbackDecision(id)
	case res := <-ch:
		out := res.Val.(outcome)
		if out.committed {
			return out.decision
		}
		if fresh, ok := r.Peek(id.ID); ok {
			return fresh
		}
		return out.decision
	}
}

// Refresh drops the cached decision for the identity and resolves it again.
func (r *Resolver) Refresh(ctx context.Context, identity *Identity) RoleDecision {
	if identity == nil || identity.ID == "" {
		return Anonymous()
	}
	r.Invalidate(identity.ID)
	return r.Resolve(ctx, identity)
}

// Invalidate drops the cached decision. Lookups already in flight for the
// identity will not be committed.
func (r *Resolver) Invalidate(identityID string) {
	r.mu.Lock()
	delete(r.entries, identityID)
	r.mu.Unlock()
}

// SignOut invalidates the identity and tells its subscribers it is anonymous.
func (r *Resolver) SignOut(identityID string) {
	r.mu.Lock()
	delete(r.entries, identityID)
	d := Anonymous()
	d.IdentityID = identityID
	r.publishLocked(identityID, d)
	r.mu.Unlock()
	r.log.Info("identity signed out", "identity_id", identityID)
}

// Peek returns the cached decision without resolving.
func (r *Resolver) Peek(identityID string) (RoleDecision, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[identityID]
	if !ok || e.decision == nil {
		return RoleDecision{}, false
	}
	return *e.decision, true
}

// Prune drops committed decisions older than CacheTTL and reports how many
// were removed. Lookups in flight are left alone.
func (r *Resolver) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.entries {
		if r.expiredLocked(e) {
			delete(r.entries, id)
			n++
		}
	}
	if n > 0 {
		observability.RoleCacheExpiredTotal.Add(float64(n))
	}
	return n
}

// RunPruner calls Prune every interval until ctx is done.
func (r *Resolver) RunPruner(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Prune(); n > 0 {
				r.log.DebugContext(ctx, "pruned expired role decisions", "count", n)
			}
		}
	}
}

func (r *Resolver) expiredLocked(e *entry) bool {
	if e.decision == nil || r.opts.CacheTTL < 0 {
		return false
	}
	return r.now().Sub(e.decision.ResolvedAt) >= r.opts.CacheTTL
}

// Resolving reports whether a lookup for the identity's current generation is in flight.
func (r *Resolver) Resolving(identityID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[identityID]
	return ok && e.decision == nil
}

// Subscribe streams decisions committed for the identity, plus the anonymous
// decision on sign-out. Slow readers only see the latest decision. Call the
// returned func to stop; it closes the channel.
func (r *Resolver) Subscribe(identityID string) (<-chan RoleDecision, func()) {
	ch := make(chan RoleDecision, 1)
	r.mu.Lock()
	set, ok := r.subs[identityID]
	if !ok {
		set = make(map[chan RoleDecision]struct{})
		r.subs[identityID] = set
	}
	set[ch] = struct{}{}
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subs[identityID], ch)
			if len(r.subs[identityID]) == 0 {
				delete(r.subs, identityID)
			}
			close(ch)
		})
	}
}

func (r *Resolver) publishLocked(identityID string, d RoleDecision) {
	for ch := range r.subs[identityID] {
		select {
		case ch <- d:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- d:
		default:
		}
	}
}

func (r *Resolver) resolve(ctx context.Context, id Identity, gen uint64) outcome {
	var decision RoleDecision
	role, err := r.lookupWithRetry(ctx, id.ID)
	switch {
	case err == nil:
		if role == RoleNone {
			role = RoleUser
		}
		decision = RoleDecision{IdentityID: id.ID, Role: role, Source: SourceProfile, ResolvedAt: r.now()}
	case errors.Is(err, ErrProfileNotFound):
		r.log.InfoContext(ctx, "no profile for identity, using metadata fallback", "identity_id", id.ID)
		decision = r.fallbackDecision(id)
	default:
		r.log.WarnContext(ctx, "profile store unavailable, using metadata fallback",
			"identity_id", id.ID, "error", err)
		decision = r.fallbackDecision(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id.ID]
	if !ok || e.generation != gen {
		observability.StaleResolutionsTotal.Inc()
		r.log.DebugContext(ctx, "discarding superseded role lookup", "identity_id", id.ID, "generation", gen)
		return outcome{decision: decision}
	}
	e.decision = &decision
	observability.RoleResolutionsTotal.WithLabelValues(string(decision.Source)).Inc()
	r.publishLocked(id.ID, decision)
	return outcome{decision: decision, committed: true}
}

func (r *Resolver) fallbackDecision(id Identity) RoleDecision {
	return RoleDecision{
		IdentityID: id.ID,
		Role:       FallbackRole(id.Metadata),
		Source:     SourceMetadataFallback,
		ResolvedAt: r.now(),
	}
}

// lookupWithRetry runs attempts sequentially. A missing profile is final.
func (r *Resolver) lookupWithRetry(ctx context.Context, identityID string) (Role, error) {
	var lastErr error
	for attempt := 1; attempt <= r.opts.Attempts; attempt++ {
		role, err := r.attempt(ctx, identityID)
		if err == nil {
			observability.ProfileLookupAttemptsTotal.WithLabelValues("ok").Inc()
			return role, nil
		}
		if errors.Is(err, ErrProfileNotFound) {
			observability.ProfileLookupAttemptsTotal.WithLabelValues("not_found").Inc()
			return RoleNone, err
		}
		if errors.Is(err, ErrLookupTimeout) {
			observability.ProfileLookupAttemptsTotal.WithLabelValues("timeout").Inc()
		} else {
			observability.ProfileLookupAttemptsTotal.WithLabelValues("error").Inc()
		}
		lastErr = err
		r.log.DebugContext(ctx, "profile lookup attempt failed",
			"identity_id", identityID, "attempt", attempt, "error", err)

		if attempt < r.opts.Attempts {
			if err := r.sleep(ctx, r.opts.Backoff*time.Duration(attempt)); err != nil {
				lastErr = err
				break
			}
		}
	}
	return RoleNone, fmt.Errorf("%w: %w", ErrLookupFailed, lastErr)
}

// attempt races one lookup against the per-attempt timeout.
func (r *Resolver) attempt(ctx context.Context, identityID string) (Role, error) {
	actx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	type result struct {
		role Role
		err  error
	}
	done := make(chan result, 1)
	go func() {
		role, err := r.lookup.LookupRole(actx, identityID)
		done <- result{role: role, err: err}
	}()

	select {
	case <-actx.Done():
		return RoleNone, fmt.Errorf("%w: %w", ErrLookupTimeout, actx.Err())
	case res := <-done:
		return res.role, res.err
	}
}
