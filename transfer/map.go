// Package transfer implements TransferBuilder: the offline, deterministic
// computation of a per-service-day TransferMap from a ScheduleIndex plus a
// graph of explicit and interpolated walking connections.
package transfer

import (
	"sync"

	tb "github.com/transitcore/tripbased"
)

// Map is one service day's TransferMap: StoppingEvent -> the onward
// StoppingEvents reachable from it. Built once by Builder.Build, read-only
// thereafter — the router shares it across a query without locking.
type Map struct {
	mu sync.Mutex // held only while Build is populating m
	m  map[tb.StoppingEvent][]tb.StoppingEvent
}

func newMap() *Map {
	return &Map{m: map[tb.StoppingEvent][]tb.StoppingEvent{}}
}

func (m *Map) insert(origin, dest tb.StoppingEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[origin] = append(m.m[origin], dest)
}

// Get returns the onward stopping events reachable from e. A stopping event
// with no recorded transfers (including one never registered, e.g. because
// it's the last stop of its trip) returns nil.
func (m *Map) Get(e tb.StoppingEvent) []tb.StoppingEvent {
	return m.m[e]
}

// Len reports how many origin stopping events carry at least one transfer.
func (m *Map) Len() int { return len(m.m) }

// All exposes the full relation, for TransferStore.Put.
func (m *Map) All() map[tb.StoppingEvent][]tb.StoppingEvent { return m.m }

// FromAll wraps a previously-built or previously-persisted relation as a
// Map, e.g. one loaded back from a TransferStore.
func FromAll(entries map[tb.StoppingEvent][]tb.StoppingEvent) *Map {
	if entries == nil {
		entries = map[tb.StoppingEvent][]tb.StoppingEvent{}
	}
	return &Map{m: entries}
}
