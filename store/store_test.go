package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tb "github.com/transitcore/tripbased"
	"github.com/transitcore/tripbased/store"
	"github.com/transitcore/tripbased/transfer"
)

func sampleMap() *transfer.Map {
	origin := tb.StoppingEvent{Feed: "f", Trip: tb.TripDescriptor{TripId: "X"}, StopSequence: 1}
	dest := tb.StoppingEvent{Feed: "f", Trip: tb.TripDescriptor{TripId: "Y"}, StopSequence: 0}
	return transfer.FromAll(map[tb.StoppingEvent][]tb.StoppingEvent{origin: {dest}})
}

func TestMemoryGetMissingReturnsEmptyMap(t *testing.T) {
	s := store.NewMemory()
	m, err := s.Get(context.Background(), tb.ServiceDay{Year: 2026, Month: 7, Day: 30})
	require.NoError(t, err)
	assert.Empty(t, m.All())
}

func TestMemoryPutThenGetRoundTrips(t *testing.T) {
	s := store.NewMemory()
	day := tb.ServiceDay{Year: 2026, Month: 7, Day: 30}
	m := sampleMap()

	require.NoError(t, s.Put(context.Background(), day, m))
	got, err := s.Get(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, m.All(), got.All())
}

func TestSQLitePutThenGetRoundTrips(t *testing.T) {
	s, err := store.NewSQLite()
	require.NoError(t, err)
	defer s.Close()

	day := tb.ServiceDay{Year: 2026, Month: 7, Day: 30}
	m := sampleMap()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Put(ctx, day, m))
	got, err := s.Get(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, m.All(), got.All())
}

func TestSQLiteGetMissingReturnsEmptyMap(t *testing.T) {
	s, err := store.NewSQLite()
	require.NoError(t, err)
	defer s.Close()

	m, err := s.Get(context.Background(), tb.ServiceDay{Year: 2026, Month: 1, Day: 1})
	require.NoError(t, err)
	assert.Empty(t, m.All())
}
