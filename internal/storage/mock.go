package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/nakamago/pilgrimage/pkg/catalog"
	"github.com/nakamago/pilgrimage/pkg/state"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*state.Session
	catalog   *catalog.Catalog
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID]*state.Session),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on session saves
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// SetCatalog installs the catalog returned by GetCatalog
func (m *MockStorage) SetCatalog(cat *catalog.Catalog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog = cat
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveSession mocks saving a session
func (m *MockStorage) SaveSession(ctx context.Context, id uuid.UUID, s *state.Session) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[id] = s
	return nil
}

// LoadSession mocks loading a session
func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, exists := m.sessions[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return s, nil
}

// DeleteSession mocks deleting a session
func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// GetCatalog mocks catalog retrieval
func (m *MockStorage) GetCatalog(ctx context.Context) (*catalog.Catalog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.catalog == nil {
		return nil, errors.New("no catalog configured")
	}
	return m.catalog, nil
}
