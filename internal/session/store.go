// Package session keeps one application session per browser. A session owns
// the alert hub and board its pages publish to and render from.
package session

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	shardedcache "github.com/simp-lee/cache"

	"github.com/simp-lee/partsweb/internal/notify"
)

const (
	defaultTTL             = 24 * time.Hour
	defaultCleanupInterval = 5 * time.Minute
	defaultMaxSessions     = 10000

	// sessionsPerShard is the smallest shard the store splits sessions into.
	sessionsPerShard = 256
	maxShards        = 32
)

// Session is the state shared by every request from one browser.
type Session struct {
	ID    string
	Hub   *notify.Hub
	Board *notify.Board

	closed atomic.Bool
}

func (s *Session) close() {
	if s.closed.CompareAndSwap(false, true) {
		s.Board.Close()
	}
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// TTL is how long a session survives without requests.
	TTL             time.Duration
	CleanupInterval time.Duration
	// MaxSessions caps the live sessions. Creating one more ends the
	// least recently used session of its shard.
	MaxSessions int
	Logger      *slog.Logger
}

// Store holds live sessions in a sharded cache. Sessions idle for longer
// than TTL expire, and the store never holds more than MaxSessions.
type Store struct {
	cache     shardedcache.CacheInterface
	ttl       time.Duration
	logger    *slog.Logger
	evicted   atomic.Int64
	closeOnce sync.Once
}

// NewStore creates a store. The cache runs its own expiry sweep every
// CleanupInterval.
func NewStore(opts StoreOptions) *Store {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	shards := shardCount(opts.MaxSessions)
	s := &Store{
		cache: shardedcache.NewCache(shardedcache.Options{
			MaxSize:           opts.MaxSessions / shards,
			DefaultExpiration: opts.TTL,
			CleanupInterval:   opts.CleanupInterval,
			ShardCount:        shards,
		}),
		ttl:    opts.TTL,
		logger: opts.Logger,
	}
	// Runs under the shard lock: it must not call back into the cache.
	s.cache.OnEvicted(func(_ string, value any) {
		if sess, ok := value.(*Session); ok {
			sess.close()
			s.evicted.Add(1)
		}
	})
	return s
}

// shardCount picks a power of two so every shard holds at least
// sessionsPerShard sessions and the shards together hold at most limit.
func shardCount(limit int) int {
	n := 1
	for n < maxShards && n*2*sessionsPerShard <= limit {
		n *= 2
	}
	return n
}

// Create starts a new session with a fresh hub and board.
func (s *Store) Create() *Session {
	hub := notify.NewHub(s.logger)
	sess := &Session{
		ID:    uuid.NewString(),
		Hub:   hub,
		Board: notify.NewBoard(hub),
	}
	s.cache.SetWithExpiration(sess.ID, sess, s.ttl)
	return sess
}

// Get returns the live session with the given id and restarts its idle
// timer.
func (s *Store) Get(id string) (*Session, bool) {
	sess, ok := shardedcache.GetTyped[*Session](s.cache, id)
	if !ok {
		return nil, false
	}
	s.cache.SetWithExpiration(id, sess, s.ttl)
	// Lost a race with eviction between the read and the refresh.
	if sess.closed.Load() {
		s.cache.Delete(id)
		return nil, false
	}
	return sess, true
}

// Delete ends a session and releases its board.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Count()
}

// Evicted returns how many sessions ended through expiry, the size cap or
// Delete.
func (s *Store) Evicted() int64 {
	return s.evicted.Load()
}

// Close ends every session and stops the expiry sweep.
// Safe to call multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		n := s.cache.Count()
		s.cache.Clear()
		s.cache.Close()
		if n > 0 {
			s.logger.Debug("sessions closed", slog.Int("count", n))
		}
	})
	return nil
}
