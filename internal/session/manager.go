package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/countryharvest/storefront-backend/pkg/errors"
)

// ErrUnknownToken is returned when a token has expired or was never issued.
var ErrUnknownToken = errors.New("unknown cart session token")

const tokenBytes = 32

// Store is the subset of the redis client the manager needs.
type Store interface {
	StoreCartSession(ctx context.Context, token, sessionID string, ttl time.Duration) error
	GetCartSession(ctx context.Context, token string) (string, error)
	RevokeCartSession(ctx context.Context, token string) error
}

// Manager issues opaque tokens that bind an anonymous visitor to a cart
// session id. The token travels in a cookie; the session id is what the
// cart table keys on, so rotating a token never orphans a cart.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager wires the session manager.
func NewManager(store Store, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session store required")
	}
	if ttl <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session ttl must be positive")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// Issue mints a fresh token bound to a new session id.
func (m *Manager) Issue(ctx context.Context) (token, sessionID string, err error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate session token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(buf)
	sessionID = uuid.NewString()

	if err := m.store.StoreCartSession(ctx, token, sessionID, m.ttl); err != nil {
		return "", "", fmt.Errorf("store session token: %w", err)
	}
	return token, sessionID, nil
}

// Resolve looks up the session id behind a token and slides its expiry.
func (m *Manager) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnknownToken
	}
	sessionID, err := m.store.GetCartSession(ctx, token)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrUnknownToken
		}
		return "", fmt.Errorf("resolve session token: %w", err)
	}
	if err := m.store.StoreCartSession(ctx, token, sessionID, m.ttl); err != nil {
		return "", fmt.Errorf("refresh session token: %w", err)
	}
	return sessionID, nil
}

// Revoke drops a token binding, typically after a login merge.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.RevokeCartSession(ctx, token)
}
