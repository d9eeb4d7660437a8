package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	ai "github.com/spetersoncode/maildraft"
)

// ErrMissingUser is returned when a store operation names no user.
var ErrMissingUser = errors.New("store: missing user id")

// MemoryHistory provides thread-safe in-memory draft history.
type MemoryHistory struct {
	mu        sync.RWMutex
	entries   map[string][]ai.HistoryEntry
	ids       map[string]struct{}
	retention int
}

// NewMemoryHistory creates an in-memory history store. A positive
// retention keeps at most that many entries per user, dropping the oldest.
func NewMemoryHistory(retention int) *MemoryHistory {
	return &MemoryHistory{
		entries:   make(map[string][]ai.HistoryEntry),
		ids:       make(map[string]struct{}),
		retention: retention,
	}
}

// Append stores r for userID. A request id seen before is ignored.
func (m *MemoryHistory) Append(_ context.Context, userID string, r ai.DraftResult) error {
	if userID == "" {
		return ErrMissingUser
	}
	entry := ai.NewHistoryEntry(userID, r)
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, seen := m.ids[entry.ID]; seen {
		return nil
	}
	m.ids[entry.ID] = struct{}{}

	list := append(m.entries[userID], entry)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	if m.retention > 0 && len(list) > m.retention {
		for _, dropped := range list[m.retention:] {
			delete(m.ids, dropped.ID)
		}
		list = list[:m.retention]
	}
	m.entries[userID] = list
	return nil
}

// List returns up to limit entries for userID, most recent first. A
// non-positive limit returns every entry.
func (m *MemoryHistory) List(_ context.Context, userID string, limit int) ([]ai.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.entries[userID]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]ai.HistoryEntry, len(list))
	copy(out, list)
	return out, nil
}

// Len returns the number of entries stored for userID.
func (m *MemoryHistory) Len(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries[userID])
}

// MemoryProfiles provides thread-safe in-memory sender profiles.
type MemoryProfiles struct {
	mu       sync.RWMutex
	profiles map[string]ai.Profile
}

// NewMemoryProfiles creates an empty in-memory profile store.
func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{profiles: make(map[string]ai.Profile)}
}

// Get returns the profile of userID, or an empty profile.
func (m *MemoryProfiles) Get(_ context.Context, userID string) (ai.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return ai.Profile{UserID: userID}, nil
	}
	return p, nil
}

// Update applies u to the profile of userID and returns the result.
func (m *MemoryProfiles) Update(_ context.Context, userID string, u ai.ProfileUpdate) (ai.Profile, error) {
	if userID == "" {
		return ai.Profile{}, ErrMissingUser
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[userID].Apply(u)
	p.UserID = userID
	m.profiles[userID] = p
	return p, nil
}
