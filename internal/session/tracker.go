// Package session keeps the process-wide view of who is signed in. Handlers
// ask the Tracker for the current user instead of resolving tokens themselves.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nfrund/kaashub/internal/domain"
	"github.com/nfrund/kaashub/internal/pubsub"
)

const defaultCacheTTL = 30 * time.Second

// Source resolves an access token to a live session.
type Source interface {
	GetSession(ctx context.Context, token string) (*domain.AuthSession, error)
}

type entry struct {
	user    *domain.User
	expires time.Time
}

// Tracker caches token to user resolution and drops entries when auth state
// events report a sign-out or a changed user.
type Tracker struct {
	source Source
	sub    pubsub.Subscriber
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
	cancel  context.CancelFunc

	// Evictions that land while a lookup is in flight are remembered so the
	// lookup cannot cache what was just dropped. seq orders evictions; the
	// tombstones are cleared once no lookup needs them.
	seq         uint64
	inflight    map[string]int
	pending     int
	evictedIDs  map[string]uint64
	evictedUser map[string]uint64
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithCacheTTL bounds how long a resolved session is reused.
func WithCacheTTL(ttl time.Duration) Option {
	return func(t *Tracker) { t.ttl = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(source Source, sub pubsub.Subscriber, opts ...Option) *Tracker {
	t := &Tracker{
		source:      source,
		sub:         sub,
		ttl:         defaultCacheTTL,
		now:         time.Now,
		entries:     make(map[string]entry),
		inflight:    make(map[string]int),
		evictedIDs:  make(map[string]uint64),
		evictedUser: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start subscribes to auth state changes. Calling Start twice is a no-op.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return nil
	}

	subCtx, cancel := context.WithCancel(ctx)
	if err := pubsub.AuthState.Subscribe(subCtx, t.sub, t.handle); err != nil {
		cancel()
		return err
	}
	t.cancel = cancel
	return nil
}

// Stop unsubscribes and empties the cache.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.seq++
	t.entries = make(map[string]entry)
}

// Current returns the user signed in with token, or domain.ErrNoSession.
func (t *Tracker) Current(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrNoSession
	}
	id := domain.SessionIDFromToken(token)
	now := t.now()

	t.mu.RLock()
	e, ok := t.entries[id]
	t.mu.RUnlock()
	if ok && now.Before(e.expires) {
		return e.user, nil
	}

	start := t.beginLookup(id)
	session, err := t.source.GetSession(ctx, token)

	t.mu.Lock()
	defer t.mu.Unlock()
	signedOut := t.evictedIDs[id] > start
	userChanged := session != nil && session.User != nil && t.evictedUser[session.User.ID] > start
	t.endLookup(id)
	if err != nil {
		return nil, err
	}
	if session == nil || signedOut {
		delete(t.entries, id)
		return nil, domain.ErrNoSession
	}
	if userChanged {
		// The user changed during the lookup; answer but do not cache.
		return session.User, nil
	}

	expires := now.Add(t.ttl)
	if session.ExpiresAt.Before(expires) {
		expires = session.ExpiresAt
	}
	t.entries[id] = entry{user: session.User, expires: expires}
	return session.User, nil
}

func (t *Tracker) beginLookup(id string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight[id]++
	t.pending++
	return t.seq
}

// endLookup must be called with t.mu held.
func (t *Tracker) endLookup(id string) {
	t.inflight[id]--
	if t.inflight[id] <= 0 {
		delete(t.inflight, id)
		delete(t.evictedIDs, id)
	}
	t.pending--
	if t.pending <= 0 {
		t.pending = 0
		clear(t.evictedUser)
	}
}

// Forget drops the cached entry for token.
func (t *Tracker) Forget(token string) {
	t.evict(domain.SessionIDFromToken(token))
}

func (t *Tracker) evict(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	delete(t.entries, id)
	if t.inflight[id] > 0 {
		t.evictedIDs[id] = t.seq
	}
}

func (t *Tracker) handle(ctx context.Context, ev domain.AuthStateChanged) error {
	switch ev.Type {
	case domain.AuthSignedOut:
		t.evict(ev.SessionID)
	case domain.AuthUserUpdated:
		t.mu.Lock()
		t.seq++
		for id, e := range t.entries {
			if e.user != nil && e.user.ID == ev.UserID {
				delete(t.entries, id)
			}
		}
		if t.pending > 0 {
			t.evictedUser[ev.UserID] = t.seq
		}
		t.mu.Unlock()
	default:
		return nil
	}
	slog.DebugContext(ctx, "Session cache updated", "event", ev.Type, "user_id", ev.UserID)
	return nil
}

// Len returns the number of cached sessions.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
