package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"ginutri/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore guarda las sesiones transitorias con expiracion.
type SessionStore interface {
	Get(ctx context.Context, id string) (domain.Session, error)
	Save(ctx context.Context, session domain.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session   domain.Session
	expiresAt time.Time
}

// sweepInterval es cada cuanto Save purga las sesiones vencidas.
const sweepInterval = time.Minute

type MemorySessionStore struct {
	mu        sync.Mutex
	items     map[string]memoryEntry
	now       func() time.Time
	nextSweep time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		items: make(map[string]memoryEntry),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[id]
	if !ok {
		return domain.Session{}, ErrSessionNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.items, id)
		return domain.Session{}, ErrSessionNotFound
	}
	return cloneSession(entry.session)
}

func (s *MemorySessionStore) Save(_ context.Context, session domain.Session, ttl time.Duration) error {
	if strings.TrimSpace(session.ID) == "" {
		return errors.New("session id is required")
	}
	copied, err := cloneSession(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	s.items[session.ID] = memoryEntry{session: copied, expiresAt: now.Add(ttl)}
	return nil
}

// sweepLocked borra las entradas vencidas; se llama con mu tomado.
func (s *MemorySessionStore) sweepLocked(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	for id, entry := range s.items {
		if now.After(entry.expiresAt) {
			delete(s.items, id)
		}
	}
	s.nextSweep = now.Add(sweepInterval)
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// cloneSession hace una copia profunda para que el llamador no comparta slices con el store.
func cloneSession(s domain.Session) (domain.Session, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return domain.Session{}, fmt.Errorf("marshal session: %w", err)
	}
	var out domain.Session
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return out, nil
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisSessionStore struct {
	client  redisKV
	prefix  string
	timeout time.Duration
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	if client == nil {
		return nil
	}
	return &RedisSessionStore{
		client:  client,
		prefix:  "ginutri:session:",
		timeout: 500 * time.Millisecond,
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (domain.Session, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Session{}, ErrSessionNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("redis get session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session domain.Session, ttl time.Duration) error {
	if strings.TrimSpace(session.ID) == "" {
		return errors.New("session id is required")
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Set(ctx, s.prefix+session.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+id).Err()
}
