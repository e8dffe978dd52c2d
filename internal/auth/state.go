package auth

import (
	"sync"
	"time"
)

const oauthStateTTL = 10 * time.Minute

type pendingOAuth struct {
	provider   string
	redirectTo string
	expiresAt  time.Time
}

// stateStore keeps the one-time state values of OAuth flows in progress.
// Expired entries are pruned whenever a new flow starts.
type stateStore struct {
	mu      sync.Mutex
	pending map[string]pendingOAuth
}

func newStateStore() *stateStore {
	return &stateStore{pending: make(map[string]pendingOAuth)}
}

func (s *stateStore) put(state string, p pendingOAuth, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.pending {
		if now.After(v.expiresAt) {
			delete(s.pending, k)
		}
	}
	s.pending[state] = p
}

// take removes and returns the entry for state if it is live and belongs to provider.
func (s *stateStore) take(state, provider string, now time.Time) (pendingOAuth, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[state]
	if !ok {
		return pendingOAuth{}, false
	}
	delete(s.pending, state)
	if p.provider != provider || now.After(p.expiresAt) {
		return pendingOAuth{}, false
	}
	return p, true
}
