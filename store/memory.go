package store

import (
	"context"
	"sync"

	tb "github.com/transitcore/tripbased"
	"github.com/transitcore/tripbased/transfer"
)

// Memory is the reference TransferStore: an in-memory map keyed by service
// day, sufficient for tests and single-process deployments that rebuild
// their transfers on every start.
type Memory struct {
	mu   sync.RWMutex
	days map[tb.ServiceDay]*transfer.Map
}

func NewMemory() *Memory {
	return &Memory{days: map[tb.ServiceDay]*transfer.Map{}}
}

// Get returns an empty map, not an error, for a service day with no prepared
// transfers (spec.md §4.3): ErrNotFound is reserved for actual backend
// failures, which Memory never has.
func (s *Memory) Get(_ context.Context, day tb.ServiceDay) (*transfer.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.days[day]
	if !ok {
		return transfer.FromAll(nil), nil
	}
	return m, nil
}

func (s *Memory) Put(_ context.Context, day tb.ServiceDay, m *transfer.Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[day] = m
	return nil
}
