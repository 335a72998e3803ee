package profile

import (
	"errors"
	"sync"
)

// Keys used by the roller in durable profile storage
const (
	// KeyUserName stores the display name the user typed last
	KeyUserName = "user_name"

	// KeyUserID stores the identifier issued for this profile
	KeyUserID = "user_id"

	// KeyRollHistory stores the serialized local roll history
	KeyRollHistory = "roll_history"
)

// ErrNotFound is returned when a key has never been set
var ErrNotFound = errors.New("profile key not found")

// Store is durable key-value storage scoped to one client profile
type Store interface {
	// Get returns the value for key or ErrNotFound
	Get(key string) (string, error)

	// Set writes a single key
	Set(key, value string) error

	// SetMany writes several keys in one operation
	SetMany(values map[string]string) error
}

// memoryStore keeps values in a map; used for ephemeral profiles and tests
type memoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an in-memory profile store
func NewMemory() *memoryStore {
	return &memoryStore{
		values: make(map[string]string),
	}
}

// Get returns the value stored for key
func (m *memoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key
func (m *memoryStore) Set(key, value string) error {
	return m.SetMany(map[string]string{key: value})
}

// SetMany stores every entry of values
func (m *memoryStore) SetMany(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, value := range values {
		m.values[key] = value
	}
	return nil
}
