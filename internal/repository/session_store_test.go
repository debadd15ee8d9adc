package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"ginutri/internal/domain"
	"ginutri/internal/navigation"
)

func TestMemorySessionStore_SaveGetExpire(t *testing.T) {
	store := NewMemorySessionStore()
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	session := domain.Session{
		ID:         "s1",
		Navigation: navigation.Initial(),
		Diary:      []domain.MealEntry{{ID: "m1", Name: "Almoço"}},
	}
	if err := store.Save(context.Background(), session, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Diary[0].Name = "changed"
	again, _ := store.Get(context.Background(), "s1")
	if again.Diary[0].Name != "Almoço" {
		t.Fatalf("expected stored session to be isolated from caller mutations")
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(context.Background(), "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}

func TestMemorySessionStore_SweepsExpiredOnSave(t *testing.T) {
	store := NewMemorySessionStore()
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		if err := store.Save(context.Background(), domain.Session{ID: fmt.Sprintf("s%d", i)}, time.Minute); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if len(store.items) != 1000 {
		t.Fatalf("expected 1000 sessions, got %d", len(store.items))
	}

	now = now.Add(24 * time.Hour)
	if err := store.Save(context.Background(), domain.Session{ID: "fresh"}, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(store.items) != 1 {
		t.Fatalf("expected only the fresh session after sweep, got %d", len(store.items))
	}
	if _, err := store.Get(context.Background(), "fresh"); err != nil {
		t.Fatalf("expected fresh session, got %v", err)
	}
}

func TestMemorySessionStore_Delete(t *testing.T) {
	store := NewMemorySessionStore()
	_ = store.Save(context.Background(), domain.Session{ID: "s1"}, time.Hour)
	if err := store.Delete(context.Background(), "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(context.Background(), "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := store.Save(context.Background(), domain.Session{}, time.Hour); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

type fakeRedisKV struct {
	data    map[string][]byte
	lastTTL time.Duration
	err     error
}

func newFakeRedisKV() *fakeRedisKV {
	return &fakeRedisKV{data: make(map[string][]byte)}
}

func (f *fakeRedisKV) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	raw, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(raw))
	return cmd
}

func (f *fakeRedisKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.data[key] = value.([]byte)
	f.lastTTL = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedisKV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	for _, k := range keys {
		delete(f.data, k)
	}
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestRedisSessionStore_RoundTrip(t *testing.T) {
	kv := newFakeRedisKV()
	store := &RedisSessionStore{client: kv, prefix: "ginutri:session:", timeout: time.Second}

	session := domain.Session{ID: "abc", Water: domain.Water{IntakeMl: 500, GoalMl: 2000}}
	if err := store.Save(context.Background(), session, 4*time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := kv.data["ginutri:session:abc"]; !ok {
		t.Fatalf("expected prefixed key, got %v", kv.data)
	}
	if kv.lastTTL != 4*time.Hour {
		t.Fatalf("expected ttl 4h, got %v", kv.lastTTL)
	}

	got, err := store.Get(context.Background(), "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Water.IntakeMl != 500 {
		t.Fatalf("unexpected water intake: %d", got.Water.IntakeMl)
	}

	if err := store.Delete(context.Background(), "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(context.Background(), "abc"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestRedisSessionStore_PropagatesErrors(t *testing.T) {
	kv := newFakeRedisKV()
	kv.err = errors.New("redis down")
	store := &RedisSessionStore{client: kv, prefix: "ginutri:session:", timeout: time.Second}

	if _, err := store.Get(context.Background(), "abc"); err == nil || errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected wrapped redis error, got %v", err)
	}
	if err := store.Save(context.Background(), domain.Session{ID: "abc"}, time.Minute); err == nil {
		t.Fatalf("expected save error")
	}
}
