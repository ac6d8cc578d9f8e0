package transfer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitcore/tripbased/schedule"
	"github.com/transitcore/tripbased/transfer"

	tb "github.com/transitcore/tripbased"
)

const feed = tb.FeedId("f")

func stop(code string) tb.StopId { return tb.StopId{Feed: feed, Code: code} }

func addSimpleTrip(t *testing.T, b *schedule.Builder, id string, stops []string, times []int) tb.TripDescriptor {
	t.Helper()
	trip := tb.TripDescriptor{TripId: id}
	stopTimes := make([]tb.StopTime, len(stops))
	for i, s := range stops {
		stopTimes[i] = tb.StopTime{StopSequence: i, Stop: stop(s), ArrivalSeconds: times[i], DepartureSeconds: times[i]}
	}
	require.NoError(t, b.AddTrip(feed, trip, stopTimes, tb.TripMetadata{}, tb.AlwaysActive))
	return trip
}

func seconds(h, m int) int { return h*3600 + m*60 }

var day = tb.ServiceDay{Year: 2026, Month: 7, Day: 30}

// S2 — one transfer: trip X: A 08:05 -> B 08:15; trip Y: B 08:20 -> C 08:40,
// reached by a same-stop transfer from (X, B) to (Y, B).
func TestSameStopTransfer(t *testing.T) {
	b := schedule.NewBuilder()
	x := addSimpleTrip(t, b, "X", []string{"A", "B"}, []int{seconds(8, 5), seconds(8, 15)})
	y := addSimpleTrip(t, b, "Y", []string{"B", "C"}, []int{seconds(8, 20), seconds(8, 40)})
	ix, err := b.Build()
	require.NoError(t, err)

	tbuilder := transfer.NewBuilder(ix, nil, nil, transfer.DefaultConfig())
	m, err := tbuilder.Build(day, ix.AllTrips())
	require.NoError(t, err)

	origin := tb.StoppingEvent{Feed: feed, Trip: x, StopSequence: 1}
	dests := m.Get(origin)
	require.Len(t, dests, 1)
	assert.Equal(t, tb.StoppingEvent{Feed: feed, Trip: y, StopSequence: 0}, dests[0])
}

// Exceeding MAXIMUM_TRANSFER_DURATION skips the whole pattern.
func TestMaxTransferDurationCapSkipsPattern(t *testing.T) {
	b := schedule.NewBuilder()
	x := addSimpleTrip(t, b, "X", []string{"A", "B"}, []int{seconds(8, 5), seconds(8, 15)})
	addSimpleTrip(t, b, "Y", []string{"B", "C"}, []int{seconds(8, 35), seconds(8, 50)}) // 20 min wait > 900s cap
	ix, err := b.Build()
	require.NoError(t, err)

	tbuilder := transfer.NewBuilder(ix, nil, nil, transfer.DefaultConfig())
	m, err := tbuilder.Build(day, ix.AllTrips())
	require.NoError(t, err)

	origin := tb.StoppingEvent{Feed: feed, Trip: x, StopSequence: 1}
	assert.Empty(t, m.Get(origin))
}

// Interpolated transfers connect nearby stops with a fixed walking cost.
func TestInterpolatedTransfer(t *testing.T) {
	b := schedule.NewBuilder()
	x := addSimpleTrip(t, b, "X", []string{"A", "B"}, []int{seconds(8, 5), seconds(8, 15)})
	y := addSimpleTrip(t, b, "Y", []string{"D", "C"}, []int{seconds(8, 25), seconds(8, 40)})
	ix, err := b.Build()
	require.NoError(t, err)

	interpolated := []tb.InterpolatedTransfer{{From: stop("B"), To: stop("D"), WalkSeconds: 300}}
	tbuilder := transfer.NewBuilder(ix, nil, interpolated, transfer.DefaultConfig())
	m, err := tbuilder.Build(day, ix.AllTrips())
	require.NoError(t, err)

	origin := tb.StoppingEvent{Feed: feed, Trip: x, StopSequence: 1}
	dests := m.Get(origin)
	require.Len(t, dests, 1)
	assert.Equal(t, tb.StoppingEvent{Feed: feed, Trip: y, StopSequence: 0}, dests[0])
}

// S5 — overnight: trip N: X 23:50 -> Y 24:10 (87000s relative to the
// origin's service day); a connecting trip's calendar is only active the
// following day.
func TestOvernightWrap(t *testing.T) {
	b := schedule.NewBuilder()
	n := addSimpleTrip(t, b, "N", []string{"X", "Y"}, []int{seconds(23, 50), seconds(24, 10)})

	// Z departs Y at 00:15 the next calendar day, 5 minutes after N arrives
	// there at 00:10, and is active only on day.Next().
	zStopTimes := []tb.StopTime{
		{StopSequence: 0, Stop: stop("Y"), ArrivalSeconds: seconds(0, 15), DepartureSeconds: seconds(0, 15)},
		{StopSequence: 1, Stop: stop("W"), ArrivalSeconds: seconds(0, 35), DepartureSeconds: seconds(0, 35)},
	}
	nextDayOnly := tb.ServiceCalendarFunc(func(d tb.ServiceDay) bool { return d == day.Next() })
	require.NoError(t, b.AddTrip(feed, tb.TripDescriptor{TripId: "Z"}, zStopTimes, tb.TripMetadata{}, nextDayOnly))

	ix, err := b.Build()
	require.NoError(t, err)

	tbuilder := transfer.NewBuilder(ix, nil, nil, transfer.DefaultConfig())
	m, err := tbuilder.Build(day, ix.AllTrips())
	require.NoError(t, err)

	origin := tb.StoppingEvent{Feed: feed, Trip: n, StopSequence: 1}
	dests := m.Get(origin)
	require.Len(t, dests, 1)
	assert.Equal(t, "Z", dests[0].Trip.TripId)
}

// The MAXIMUM_TRANSFER_DURATION cap is measured from the alighting arrival,
// not from arrival-plus-walk: a transfer whose total wait (including the
// walk) exceeds the cap must be skipped even though the wait measured after
// the walk alone would be comfortably under it.
func TestMaxTransferDurationCapMeasuredFromArrivalNotAfterWalk(t *testing.T) {
	b := schedule.NewBuilder()
	x := addSimpleTrip(t, b, "X", []string{"A", "B"}, []int{0, 0})
	addSimpleTrip(t, b, "Y", []string{"D", "E"}, []int{950, 1000})
	ix, err := b.Build()
	require.NoError(t, err)

	interpolated := []tb.InterpolatedTransfer{{From: stop("B"), To: stop("D"), WalkSeconds: 500}}
	tbuilder := transfer.NewBuilder(ix, nil, interpolated, transfer.DefaultConfig())
	m, err := tbuilder.Build(day, ix.AllTrips())
	require.NoError(t, err)

	origin := tb.StoppingEvent{Feed: feed, Trip: x, StopSequence: 1}
	// Wait from the arrival (0) to Y's departure (950) is 950s, over the
	// 900s cap, even though wait after the 500s walk (450s) is not.
	assert.Empty(t, m.Get(origin))
}

// Two distinct patterns boarding at the same candidate stop, whose selected
// boardings reach a shared downstream stop at the same tied arrival time,
// must resolve deterministically regardless of the map iteration order
// BoardingsByPattern happens to return: whichever pattern "wins" the tie
// must be the same pattern every time the map is built.
func TestTransferBuildDeterministicAcrossPatterns(t *testing.T) {
	b := schedule.NewBuilder()
	x := addSimpleTrip(t, b, "X", []string{"A", "B"}, []int{seconds(8, 0), seconds(8, 10)})
	addSimpleTrip(t, b, "Y1", []string{"B", "Z"}, []int{seconds(8, 20), seconds(8, 40)})
	addSimpleTrip(t, b, "Y2", []string{"B", "W", "Z"}, []int{seconds(8, 20), seconds(8, 30), seconds(8, 40)})
	ix, err := b.Build()
	require.NoError(t, err)

	tbuilder := transfer.NewBuilder(ix, nil, nil, transfer.DefaultConfig())
	origin := tb.StoppingEvent{Feed: feed, Trip: x, StopSequence: 1}

	var first []tb.StoppingEvent
	for i := 0; i < 20; i++ {
		m, err := tbuilder.Build(day, ix.AllTrips())
		require.NoError(t, err)
		dests := m.Get(origin)
		require.Len(t, dests, 1)
		if i == 0 {
			first = dests
		} else {
			assert.Equal(t, first, dests, "retained transfer must not vary across builds (run %d)", i)
		}
	}
}

// A dominance test: a later-departing boarding from the same origin that
// reaches its downstream stops no earlier than an already-retained transfer
// is not retained.
func TestDominanceRejectsNonImprovingTransfer(t *testing.T) {
	b := schedule.NewBuilder()
	x := addSimpleTrip(t, b, "X", []string{"A", "B"}, []int{seconds(8, 5), seconds(8, 15)})
	// same pattern as Y1, but departs later and arrives no earlier anywhere.
	addSimpleTrip(t, b, "Y1", []string{"B", "C"}, []int{seconds(8, 20), seconds(8, 40)})
	addSimpleTrip(t, b, "Y2", []string{"B", "C"}, []int{seconds(8, 25), seconds(8, 45)})
	ix, err := b.Build()
	require.NoError(t, err)

	tbuilder := transfer.NewBuilder(ix, nil, nil, transfer.DefaultConfig())
	m, err := tbuilder.Build(day, ix.AllTrips())
	require.NoError(t, err)

	origin := tb.StoppingEvent{Feed: feed, Trip: x, StopSequence: 1}
	dests := m.Get(origin)
	// Only the earliest-useful boarding per pattern is retained: Y1 is found
	// first (sort.Search locates the earliest departure >= earliestDeparture)
	// and no later boarding in the same pattern improves on it.
	require.Len(t, dests, 1)
	assert.Equal(t, "Y1", dests[0].Trip.TripId)
}
