// Package store owns the authoritative local collection of event records.
// The collection is mutated only by a full refresh or by a commit made after
// the remote service confirmed the corresponding mutation; it is never
// speculatively updated ahead of confirmation.
package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/eventhub/event-gateway/internal/models"
)

// Lister fetches the full remote collection.
type Lister interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
}

// EventStore maps event ids to records while preserving the server-provided
// order. Readers always observe either the pre- or post-commit state; the
// lock makes every commit atomic from their perspective.
type EventStore struct {
	mu     sync.RWMutex
	events []models.Event
	index  map[string]int

	lister Lister
	logger *zap.Logger
}

func New(lister Lister, logger *zap.Logger) *EventStore {
	return &EventStore{
		index:  make(map[string]int),
		lister: lister,
		logger: logger,
	}
}

// Load replaces the whole collection with the remote list. On failure the
// previous collection is left untouched and the error is recoverable: the
// caller reports it and the user may retry.
func (s *EventStore) Load(ctx context.Context) error {
	events, err := s.lister.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}

	index := make(map[string]int, len(events))
	for i, ev := range events {
		index[ev.ID] = i
	}

	s.mu.Lock()
	s.events = events
	s.index = index
	s.mu.Unlock()

	s.logger.Info("Event collection refreshed", zap.Int("count", len(events)))
	return nil
}

// CommitCreate appends a record the remote service confirmed. If the id is
// already present (a reconciliation load raced the confirmation) the record
// is replaced in place to keep ids unique.
func (s *EventStore) CommitCreate(ev models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[ev.ID]; ok {
		s.logger.Warn("Create commit for known id, replacing", zap.String("event_id", ev.ID))
		s.events[i] = ev
		return
	}
	s.index[ev.ID] = len(s.events)
	s.events = append(s.events, ev)
}

// CommitUpdate merges a confirmed patch into the matching record. A missing
// id means the local view is stale; the caller should refresh.
func (s *EventStore) CommitUpdate(id string, patch models.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return &models.NotFoundError{ID: id}
	}
	s.events[i] = patch.Apply(s.events[i])
	return nil
}

// CommitDelete removes the matching record. Deleting an absent id reports
// NotFoundError and leaves the collection unchanged, so repeated deletes are
// idempotent at the store level.
func (s *EventStore) CommitDelete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return &models.NotFoundError{ID: id}
	}
	s.events = append(s.events[:i], s.events[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.events); j++ {
		s.index[s.events[j].ID] = j
	}
	return nil
}

// Snapshot returns a copy of the collection in server order for the
// presentation layer to read.
func (s *EventStore) Snapshot() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Get looks up a single record by id.
func (s *EventStore) Get(id string) (models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return models.Event{}, false
	}
	return s.events[i], true
}

// Len returns the collection size.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
