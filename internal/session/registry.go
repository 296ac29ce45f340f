package session

import (
	"sync"
	"time"

	"github.com/localnerve/jurados-presence/internal/prefs"
	"github.com/localnerve/jurados-presence/internal/recordstore"
	"go.uber.org/zap"
)

// DefaultIdleTimeout is how long an unused session is kept
const DefaultIdleTimeout = 30 * time.Minute

// PrefsProvider scopes durable prefs to a user
type PrefsProvider interface {
	For(userID string) prefs.Store
}

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Registry keeps one Session per signed-in user. Sessions idle for longer
// than the idle timeout are dropped; the next request builds a fresh one,
// which fetches the identity record again.
type Registry struct {
	store recordstore.Store
	prefs PrefsProvider
	log   *zap.Logger
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	sessions  map[string]*entry
	lastSweep time.Time
}

func NewRegistry(store recordstore.Store, p PrefsProvider, log *zap.Logger, idle time.Duration) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Registry{
		store:    store,
		prefs:    p,
		log:      log,
		idle:     idle,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// For returns the user's session, creating it on first use
func (r *Registry) For(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	if e, ok := r.sessions[userID]; ok {
		e.lastUsed = now
		return e.session
	}
	s := New(r.store, r.prefs.For(userID), r.log.With(zap.String("user_id", userID)))
	r.sessions[userID] = &entry{session: s, lastUsed: now}
	return s
}

// Len reports the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// sweep drops idle sessions, at most once per minute or idle period
func (r *Registry) sweep(now time.Time) {
	interval := r.idle
	if interval > time.Minute {
		interval = time.Minute
	}
	if now.Sub(r.lastSweep) < interval {
		return
	}
	r.lastSweep = now

	for userID, e := range r.sessions {
		if now.Sub(e.lastUsed) > r.idle {
			delete(r.sessions, userID)
		}
	}
	r.log.Debug("swept idle sessions", zap.Int("live", len(r.sessions)))
}
