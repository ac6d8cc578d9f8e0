package schedule

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	tb "github.com/transitcore/tripbased"
)

// Builder accumulates trips and derives an Index from them. Not safe for
// concurrent use — callers load one feed's worth of trips on a single
// goroutine, then call Build.
type Builder struct {
	stopTimes map[tripKey][]tb.StopTime
	meta      map[tripKey]tb.TripMetadata
	calendars map[tripKey]tb.ServiceCalendar
	feeds     map[tb.FeedId]bool
}

func NewBuilder() *Builder {
	return &Builder{
		stopTimes: map[tripKey][]tb.StopTime{},
		meta:      map[tripKey]tb.TripMetadata{},
		calendars: map[tripKey]tb.ServiceCalendar{},
		feeds:     map[tb.FeedId]bool{},
	}
}

// AddTrip registers one scheduled trip. stopTimes must be sorted ascending
// by StopSequence and satisfy arrival[i] <= departure[i] <= arrival[i+1];
// a violation returns ErrInconsistentSchedule, fatal to the build per
// spec.md §4.2's policy.
func (b *Builder) AddTrip(feed tb.FeedId, trip tb.TripDescriptor, stopTimes []tb.StopTime, meta tb.TripMetadata, calendar tb.ServiceCalendar) error {
	if len(stopTimes) < 2 {
		return fmt.Errorf("%w: trip %s has fewer than 2 stop times", tb.ErrInconsistentSchedule, trip.TripId)
	}
	if err := validateMonotonic(trip, stopTimes); err != nil {
		return err
	}
	key := tripKey{feed, trip}
	cp := append([]tb.StopTime(nil), stopTimes...)
	b.stopTimes[key] = cp
	b.meta[key] = meta
	b.calendars[key] = calendar
	b.feeds[feed] = true
	return nil
}

// AddFrequencyTrip expands a GTFS frequencies.txt entry into distinct
// TripDescriptors at startSeconds, startSeconds+headwaySeconds, ... up to
// but excluding endSeconds (spec.md §4.1's frequency-expansion rule).
// template describes one cycle with offsets relative to the trip's own
// first departure (i.e. its first entry's DepartureSeconds is 0).
func (b *Builder) AddFrequencyTrip(feed tb.FeedId, tripId, routeId string, template []tb.StopTime, meta tb.TripMetadata, calendar tb.ServiceCalendar, startSeconds, endSeconds, headwaySeconds int) error {
	if headwaySeconds <= 0 {
		return fmt.Errorf("tripbased: non-positive headway for frequency trip %s", tripId)
	}
	for start := startSeconds; start < endSeconds; start += headwaySeconds {
		shifted := make([]tb.StopTime, len(template))
		for i, st := range template {
			shifted[i] = st
			shifted[i].ArrivalSeconds += start
			shifted[i].DepartureSeconds += start
		}
		desc := tb.TripDescriptor{TripId: tripId, HasStartTime: true, StartTime: start, RouteId: routeId}
		if err := b.AddTrip(feed, desc, shifted, meta, calendar); err != nil {
			return err
		}
	}
	return nil
}

func validateMonotonic(trip tb.TripDescriptor, stopTimes []tb.StopTime) error {
	for i, st := range stopTimes {
		if st.ArrivalSeconds > st.DepartureSeconds {
			return fmt.Errorf("%w: trip %s stop sequence %d arrives after it departs", tb.ErrInconsistentSchedule, trip.TripId, st.StopSequence)
		}
		if i > 0 {
			prev := stopTimes[i-1]
			if st.StopSequence <= prev.StopSequence {
				return fmt.Errorf("%w: trip %s stop sequence %d is not strictly increasing", tb.ErrInconsistentSchedule, trip.TripId, st.StopSequence)
			}
			if prev.DepartureSeconds > st.ArrivalSeconds {
				return fmt.Errorf("%w: trip %s departs sequence %d after it arrives at %d", tb.ErrInconsistentSchedule, trip.TripId, prev.StopSequence, st.StopSequence)
			}
		}
	}
	return nil
}

type patternKey struct {
	feed tb.FeedId
	hash uint64
}

func patternHashOf(stopTimes []tb.StopTime) uint64 {
	h := xxhash.New()
	for _, st := range stopTimes {
		fmt.Fprintf(h, "%s:%s|%d:%d|", st.Stop.Feed, st.Stop.Code, st.PickupType, st.DropoffType)
	}
	return h.Sum64()
}

type patternBuild struct {
	id    tb.PatternId
	feed  tb.FeedId
	stops []tb.StopId
	trips []tb.TripDescriptor
}

// Build derives patterns by grouping trips with identical
// (stop-id sequence, pickup/dropoff-type sequence), orders each pattern's
// trips by first-stop departure, and prepares the boardingsByPattern index.
func (b *Builder) Build() (*Index, error) {
	tripPattern := make(map[tripKey]tb.PatternId, len(b.stopTimes))
	groups := map[patternKey]*patternBuild{}

	for key, stopTimes := range b.stopTimes {
		pk := patternKey{feed: key.feed, hash: patternHashOf(stopTimes)}
		g, ok := groups[pk]
		if !ok {
			stops := make([]tb.StopId, len(stopTimes))
			for i, st := range stopTimes {
				stops[i] = st.Stop
			}
			g = &patternBuild{
				id:    tb.PatternId(fmt.Sprintf("%s:%016x", key.feed, pk.hash)),
				feed:  key.feed,
				stops: stops,
			}
			groups[pk] = g
		}
		g.trips = append(g.trips, key.trip)
		tripPattern[key] = g.id
	}

	patterns := make(map[tb.PatternId]*patternInfo, len(groups))
	for _, g := range groups {
		trips := g.trips
		sort.Slice(trips, func(i, j int) bool {
			di := b.stopTimes[tripKey{g.feed, trips[i]}][0].DepartureSeconds
			dj := b.stopTimes[tripKey{g.feed, trips[j]}][0].DepartureSeconds
			if di != dj {
				return di < dj
			}
			return trips[i].TripId < trips[j].TripId
		})
		tripIndex := make(map[tb.TripDescriptor]int, len(trips))
		for i, t := range trips {
			tripIndex[t] = i
		}
		patterns[g.id] = &patternInfo{
			pattern:   tb.Pattern{Id: g.id, Feed: g.feed, Stops: g.stops},
			trips:     trips,
			tripIndex: tripIndex,
		}
	}

	rawBoardings := map[tb.StopId][]rawBoarding{}
	for key, stopTimes := range b.stopTimes {
		pid := tripPattern[key]
		// Every stop but the last is a boarding; the last stop of a trip is
		// alighting-only (the "not the last of its trip" invariant).
		for i := 0; i < len(stopTimes)-1; i++ {
			st := stopTimes[i]
			rawBoardings[st.Stop] = append(rawBoardings[st.Stop], rawBoarding{
				pattern:   pid,
				trip:      key.trip,
				seq:       i,
				departure: st.DepartureSeconds,
			})
		}
	}

	feeds := make([]tb.FeedId, 0, len(b.feeds))
	for f := range b.feeds {
		feeds = append(feeds, f)
	}
	sort.Slice(feeds, func(i, j int) bool { return feeds[i] < feeds[j] })

	return &Index{
		stopTimes:    b.stopTimes,
		meta:         b.meta,
		tripPattern:  tripPattern,
		calendars:    b.calendars,
		patterns:     patterns,
		rawBoardings: rawBoardings,
		feeds:        feeds,
	}, nil
}
