package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gigamart/commerce-engine/internal/domain/checkout"
)

// session pairs a checkout flow with its last-touched time for expiry.
type session struct {
	flow    *checkout.Flow
	touched time.Time
}

// sessionRegistry holds live checkout flows keyed by session ID. Abandoned
// sessions simply expire; discarding the flow discards all transient
// checkout state, including the raw payment instrument.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

func newSessionRegistry(ttl time.Duration) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// replace registers a flow as the only live session and returns its new
// session ID. All flows front the same shared cart, so two live sessions
// could each confirm the same items and place the order twice; beginning a
// checkout supersedes any session opened before it.
func (r *sessionRegistry) replace(flow *checkout.Flow) string {
	id := uuid.New().String()
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.sessions)
	r.sessions[id] = &session{flow: flow, touched: r.now()}
	return id
}

// get returns the flow for id, refreshing its expiry.
func (r *sessionRegistry) get(id string) (*checkout.Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	if r.now().Sub(s.touched) > r.ttl {
		delete(r.sessions, id)
		return nil, false
	}
	s.touched = r.now()
	return s.flow, true
}

// remove drops a finished session.
func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// startCleanup launches a goroutine that drops expired sessions until ctx
// is cancelled.
func (r *sessionRegistry) startCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.expire()
			}
		}
	}()
}

func (r *sessionRegistry) expire() {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.ttl)
	for id, s := range r.sessions {
		if s.touched.Before(cutoff) {
			delete(r.sessions, id)
		}
	}
}

// StartSessionCleanup begins background expiry of abandoned checkout
// sessions. It stops when ctx is cancelled.
func (h *Handler) StartSessionCleanup(ctx context.Context) {
	h.sessions.startCleanup(ctx, h.sessions.ttl)
}
