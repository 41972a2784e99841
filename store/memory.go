// Package store provides credential storage backends for the
// storefront client.
package store

import (
	"context"
	"sync"

	"storefront_cli/domain"
)

// InMemoryStore is a thread-safe in-memory domain.CredentialStore.
// Credentials live only for the process; mainly useful in tests and for
// one-shot sessions.
type InMemoryStore struct {
	mu    sync.RWMutex
	creds domain.Credentials
}

// NewInMemoryStore constructs a new InMemoryStore
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// compile-time assertion that InMemoryStore implements domain.CredentialStore
var _ domain.CredentialStore = (*InMemoryStore)(nil)

func (s *InMemoryStore) Load(ctx context.Context) (domain.Credentials, error) {
	select {
	case <-ctx.Done():
		return domain.Credentials{}, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, nil
}

func (s *InMemoryStore) Save(ctx context.Context, creds domain.Credentials) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	return nil
}

func (s *InMemoryStore) Clear(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = domain.Credentials{}
	return nil
}
