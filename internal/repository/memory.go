package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

// MemorySessionStore keeps sessions in process memory. Used when no
// database is configured.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]SessionRecord
	now      func() time.Time
}

// NewMemorySessionStore creates an empty store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]SessionRecord{}, now: time.Now}
}

// Save inserts or replaces a session
func (s *MemorySessionStore) Save(ctx context.Context, rec *SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	created := now
	if prev, ok := s.sessions[rec.ID]; ok {
		created = prev.CreatedAt
	}
	rec.CreatedAt, rec.UpdatedAt = created, now

	stored := *rec
	stored.State.Context = rec.State.Context.Clone()
	s.sessions[rec.ID] = stored
	return nil
}

// Get returns a copy of a session
func (s *MemorySessionStore) Get(ctx context.Context, id string) (*SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[id]
	if !ok {
		return nil, errors.NotFound("session")
	}
	rec.State.Context = rec.State.Context.Clone()
	return &rec, nil
}

// Delete removes a session
func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return errors.NotFound("session")
	}
	delete(s.sessions, id)
	return nil
}

// DeleteIdle removes sessions last updated before the given time
func (s *MemorySessionStore) DeleteIdle(ctx context.Context, before time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, rec := range s.sessions {
		if rec.UpdatedAt.Before(before) {
			ids = append(ids, id)
			delete(s.sessions, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// MemoryAuditStore keeps audit entries in process memory
type MemoryAuditStore struct {
	mu      sync.RWMutex
	nextID  int64
	entries map[string][]AuditEntry
	now     func() time.Time
}

// NewMemoryAuditStore creates an empty store
func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{entries: map[string][]AuditEntry{}, now: time.Now}
}

// Append records an entry and fills its id and timestamp
func (s *MemoryAuditStore) Append(ctx context.Context, entry *AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry.ID = s.nextID
	entry.PerformedAt = s.now()
	s.entries[entry.SessionID] = append(s.entries[entry.SessionID], *entry)
	return nil
}

// ListBySession returns the trail of a session ordered oldest-first
func (s *MemoryAuditStore) ListBySession(ctx context.Context, sessionID string) ([]*AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.entries[sessionID]
	out := make([]*AuditEntry, 0, len(stored))
	for i := range stored {
		e := stored[i]
		out = append(out, &e)
	}
	return out, nil
}
