package imports

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session is one staged, validated-but-uncommitted import. Payload is
// the kind-specific parsed payload, marshalled so the session survives
// a trip through a shared store.
type Session struct {
	Token     string           `json:"token"`
	Kind      string           `json:"kind"`
	Payload   json.RawMessage  `json:"payload"`
	Result    ValidationResult `json:"result"`
	CreatedAt time.Time        `json:"createdAt"`
}

func NewSession(kind string, payload any, result *ValidationResult) (*Session, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     uuid.NewString(),
		Kind:      kind,
		Payload:   raw,
		Result:    *result,
		CreatedAt: time.Now(),
	}, nil
}

// SessionStore stages imports between preview and confirm.
//
// Take is the single-use semantic: lookup and removal are one
// indivisible operation, so of two concurrent confirms on the same
// token exactly one gets the session and the other gets
// ErrorSessionNotFound.
type SessionStore interface {
	Put(ctx context.Context, session *Session) error
	Take(ctx context.Context, token string) (*Session, error)
	Sweep(ctx context.Context, now time.Time) error
}

// MemorySessionStore is the single-instance default.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		sessions: map[string]*Session{},
	}
}

func (s *MemorySessionStore) Put(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *MemorySessionStore) Take(ctx context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, utils.ErrorSessionNotFound
	}
	delete(s.sessions, token)
	if time.Since(session.CreatedAt) > s.ttl {
		// Expired and consumed look identical to callers.
		return nil, utils.ErrorSessionNotFound
	}
	return session, nil
}

func (s *MemorySessionStore) Sweep(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.CreatedAt.Add(s.ttl).Before(now) {
			delete(s.sessions, token)
		}
	}
	return nil
}

// RedisSessionStore shares sessions across instances. Expiry is
// delegated to redis key TTLs, which makes Sweep a no-op.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

const redisSessionPrefix = "import-session:"

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Put(ctx context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisSessionPrefix+session.Token, raw, s.ttl).Err()
}

func (s *RedisSessionStore) Take(ctx context.Context, token string) (*Session, error) {
	// GETDEL keeps the take atomic on the shared store too.
	raw, err := s.client.GetDel(ctx, redisSessionPrefix+token).Result()
	if err == redis.Nil {
		return nil, utils.ErrorSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStore) Sweep(ctx context.Context, now time.Time) error {
	return nil
}
