package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryStore struct {
	values map[string]string
	stores int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) StoreCartSession(ctx context.Context, token, sessionID string, ttl time.Duration) error {
	m.values[token] = sessionID
	m.stores++
	return nil
}

func (m *memoryStore) GetCartSession(ctx context.Context, token string) (string, error) {
	sessionID, ok := m.values[token]
	if !ok {
		return "", redis.Nil
	}
	return sessionID, nil
}

func (m *memoryStore) RevokeCartSession(ctx context.Context, token string) error {
	delete(m.values, token)
	return nil
}

func TestIssueAndResolve(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	mgr, err := NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	ctx := context.Background()

	token, sessionID, err := mgr.Issue(ctx)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" || sessionID == "" {
		t.Fatal("token and session id must be non-empty")
	}

	resolved, err := mgr.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != sessionID {
		t.Fatalf("resolved %s, want %s", resolved, sessionID)
	}
	if store.stores != 2 {
		t.Fatalf("resolve should slide expiry, %d stores", store.stores)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	t.Parallel()

	mgr, err := NewManager(newMemoryStore(), time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	_, err = mgr.Resolve(context.Background(), "missing")
	if !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected unknown token, got %v", err)
	}
	_, err = mgr.Resolve(context.Background(), "")
	if !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected unknown token for empty input, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	mgr, err := NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	ctx := context.Background()

	token, _, err := mgr.Issue(ctx)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := mgr.Revoke(ctx, token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := mgr.Resolve(ctx, token); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected token to be gone, got %v", err)
	}
}
