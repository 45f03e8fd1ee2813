package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type entry struct {
	sess     *Session
	lastSeen time.Time
}

// Store is a thread-safe in-memory session store with idle eviction.
// Every Get refreshes the session's idle clock. Eviction cancels the
// session context, which kills its delivery queue, and runs onEvict
// (event stream teardown).
type Store struct {
	mu      sync.RWMutex
	items   map[string]*entry
	ttl     time.Duration
	onEvict func(*Session)
	logger  *zap.Logger
	stop    chan struct{}
}

// NewStore creates a store and starts its background sweeper.
func NewStore(ttl time.Duration, onEvict func(*Session), logger *zap.Logger) *Store {
	s := &Store{
		items:   make(map[string]*entry),
		ttl:     ttl,
		onEvict: onEvict,
		logger:  logger,
		stop:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Put registers a session.
func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sess.ID] = &entry{sess: sess, lastSeen: time.Now()}
}

// Get returns the session and refreshes its idle clock.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.sess, true
}

// Delete removes and closes a session immediately.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	e, ok := s.items[id]
	if ok {
		delete(s.items, id)
	}
	s.mu.Unlock()

	if ok {
		s.evict(e.sess)
	}
}

// Close stops the sweeper and evicts everything.
func (s *Store) Close() {
	close(s.stop)

	s.mu.Lock()
	evicted := make([]*Session, 0, len(s.items))
	for id, e := range s.items {
		evicted = append(evicted, e.sess)
		delete(s.items, id)
	}
	s.mu.Unlock()

	for _, sess := range evicted {
		s.evict(sess)
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) evict(sess *Session) {
	sess.Close()
	if s.onEvict != nil {
		s.onEvict(sess)
	}
}

// sweep periodically evicts idle sessions.
func (s *Store) sweep() {
	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := time.Now()

			s.mu.Lock()
			var expired []*Session
			for id, e := range s.items {
				if now.Sub(e.lastSeen) > s.ttl {
					expired = append(expired, e.sess)
					delete(s.items, id)
				}
			}
			s.mu.Unlock()

			for _, sess := range expired {
				s.logger.Info("session evicted for inactivity",
					zap.String("session_id", sess.ID),
				)
				s.evict(sess)
			}
		}
	}
}
