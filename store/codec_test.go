package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tb "github.com/transitcore/tripbased"
	"github.com/transitcore/tripbased/transfer"
)

func TestStoppingEventRoundTrip(t *testing.T) {
	se := tb.StoppingEvent{
		Feed:         tb.FeedId("feed-1"),
		Trip:         tb.TripDescriptor{TripId: "T1", HasStartTime: true, StartTime: 3600, RouteId: "R1"},
		StopSequence: 4,
	}
	var buf bytes.Buffer
	require.NoError(t, encodeStoppingEvent(&buf, se))
	got, err := decodeStoppingEvent(&buf)
	require.NoError(t, err)
	assert.Equal(t, se, got)
}

func TestTransferMapRoundTrip(t *testing.T) {
	origin := tb.StoppingEvent{Feed: "f", Trip: tb.TripDescriptor{TripId: "X"}, StopSequence: 1}
	dest1 := tb.StoppingEvent{Feed: "f", Trip: tb.TripDescriptor{TripId: "Y"}, StopSequence: 0}
	dest2 := tb.StoppingEvent{Feed: "f", Trip: tb.TripDescriptor{TripId: "Z"}, StopSequence: 0}
	m := transfer.FromAll(map[tb.StoppingEvent][]tb.StoppingEvent{
		origin: {dest1, dest2},
	})

	var buf bytes.Buffer
	require.NoError(t, encodeMap(&buf, m))
	got, err := decodeMap(&buf)
	require.NoError(t, err)
	assert.ElementsMatch(t, m.Get(origin), got.Get(origin))
}

func TestEmptyMapRoundTrip(t *testing.T) {
	m := transfer.FromAll(nil)
	var buf bytes.Buffer
	require.NoError(t, encodeMap(&buf, m))
	got, err := decodeMap(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}
