package app

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"

	"github.com/google/uuid"
)

// ErrKeyNotFound is returned for unknown key IDs.
var ErrKeyNotFound = errors.New("key not found")

// KeyEntry is a key held by the registry.
type KeyEntry struct {
	ID              string
	PairID          string
	Key             *cryptoDomain.Key
	DateTimeCreated time.Time
}

// KeyRegistry keeps key handles in memory under generated IDs so callers of
// a stateless surface can refer to them across requests.
type KeyRegistry struct {
	mu      sync.RWMutex
	entries map[string]*KeyEntry
}

// NewKeyRegistry creates an empty registry
func NewKeyRegistry() *KeyRegistry {
	return &KeyRegistry{entries: make(map[string]*KeyEntry)}
}

// Add stores key and returns its entry.
func (r *KeyRegistry) Add(key *cryptoDomain.Key) (*KeyEntry, error) {
	if key == nil {
		return nil, fmt.Errorf("key cannot be nil")
	}

	entry := &KeyEntry{
		ID:              uuid.NewString(),
		Key:             key,
		DateTimeCreated: time.Now().UTC(),
	}

	r.mu.Lock()
	r.entries[entry.ID] = entry
	r.mu.Unlock()
	return entry, nil
}

// AddPair stores a private key together with its public half under a shared pair ID.
func (r *KeyRegistry) AddPair(private *cryptoDomain.Key) ([]*KeyEntry, error) {
	public, err := private.PublicKey()
	if err != nil {
		return nil, err
	}

	pairID := uuid.NewString()
	now := time.Now().UTC()
	entries := []*KeyEntry{
		{ID: uuid.NewString(), PairID: pairID, Key: private, DateTimeCreated: now},
		{ID: uuid.NewString(), PairID: pairID, Key: public, DateTimeCreated: now},
	}

	r.mu.Lock()
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	r.mu.Unlock()
	return entries, nil
}

// Get returns the entry stored under id.
func (r *KeyRegistry) Get(id string) (*KeyEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, id)
	}
	return entry, nil
}

// List returns all entries, oldest first.
func (r *KeyRegistry) List() []*KeyEntry {
	r.mu.RLock()
	entries := make([]*KeyEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DateTimeCreated.Equal(entries[j].DateTimeCreated) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].DateTimeCreated.Before(entries[j].DateTimeCreated)
	})
	return entries
}

// Delete removes the entry stored under id.
func (r *KeyRegistry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, id)
	}
	delete(r.entries, id)
	return nil
}
