// Package credstore persists the session credential: the access token and
// the snapshot of the authenticated user. Both are always written and
// cleared together.
package credstore

import (
	"sync"
	"time"

	"github.com/felixgeelhaar/boss/internal/api"
)

// Record is one persisted session credential
type Record struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	ExpiresIn   int       `json:"expires_in,omitempty"`
	User        *api.User `json:"user,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

// Valid reports whether the record carries a token
func (r Record) Valid() bool {
	return r.AccessToken != ""
}

// Store is where the credential lives between runs.
//
// Get never fails: an unreadable or corrupt medium reads as absent.
type Store interface {
	Get() (*Record, bool)
	Set(rec Record) error
	Clear() error
}

// MemoryStore keeps the credential in memory only
type MemoryStore struct {
	mu  sync.RWMutex
	rec *Record
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored record
func (m *MemoryStore) Get() (*Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rec == nil || !m.rec.Valid() {
		return nil, false
	}
	rec := *m.rec
	return &rec, true
}

// Set replaces the stored record
func (m *MemoryStore) Set(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now().UTC()
	}
	m.rec = &rec
	return nil
}

// Clear removes the stored record
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = nil
	return nil
}

// TokenSource adapts a Store to api.TokenSource
func TokenSource(s Store) api.TokenSource {
	return storeTokens{store: s}
}

type storeTokens struct {
	store Store
}

func (t storeTokens) Token() string {
	if rec, ok := t.store.Get(); ok {
		return rec.AccessToken
	}
	return ""
}
