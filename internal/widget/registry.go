package widget

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Registry holds the live widget sessions of the process. Sessions are never
// restored; an evicted or unknown id means a new session.
type Registry struct {
	ctx  context.Context
	opts Options
	ttl  time.Duration
	now  func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates sessions whose driver calls run on ctx.
func NewRegistry(ctx context.Context, opts Options, ttl time.Duration) *Registry {
	return &Registry{
		ctx:      ctx,
		opts:     opts,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Create() *Session {
	s := NewSession(r.ctx, uuid.NewString(), r.opts)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	log.Printf("[widget] session=%s created", s.ID())
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many.
// Busy sessions are kept regardless of age.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		if !s.Busy() && s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Printf("[widget] evicted %d idle sessions", n)
			}
		}
	}
}

// Wait blocks until every session's pending driver calls have returned.
func (r *Registry) Wait() {
	r.mu.RLock()
	sessions := lo.Values(r.sessions)
	r.mu.RUnlock()

	for _, s := range sessions {
		s.Wait()
	}
}
