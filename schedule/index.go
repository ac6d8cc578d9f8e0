// Package schedule implements ScheduleIndex: the immutable, in-memory
// representation of one or more GTFS feeds, organised for O(1)/O(log n)
// lookup of stop-times by (feed, trip), patterns, service calendars, and
// per-stop sorted boarding lists.
package schedule

import (
	"fmt"
	"sort"
	"sync"

	tb "github.com/transitcore/tripbased"
)

type tripKey struct {
	feed tb.FeedId
	trip tb.TripDescriptor
}

type patternInfo struct {
	pattern   tb.Pattern
	trips     []tb.TripDescriptor // sorted ascending by first-stop departure
	tripIndex map[tb.TripDescriptor]int
}

type rawBoarding struct {
	pattern   tb.PatternId
	trip      tb.TripDescriptor
	seq       int
	departure int
}

type boardingEntry struct {
	once sync.Once
	val  map[tb.PatternId][]tb.StoppingEvent
}

// Index is the immutable ScheduleIndex. The zero value is not usable;
// construct one via Builder.Build.
type Index struct {
	stopTimes    map[tripKey][]tb.StopTime
	meta         map[tripKey]tb.TripMetadata
	tripPattern  map[tripKey]tb.PatternId
	calendars    map[tripKey]tb.ServiceCalendar
	patterns     map[tb.PatternId]*patternInfo
	rawBoardings map[tb.StopId][]rawBoarding

	// boardingsCache holds *boardingEntry per stop; sync.Once on the entry
	// guarantees at-most-once population even under concurrent callers.
	boardingsCache sync.Map
	feeds          []tb.FeedId
}

// StopTimes returns a trip's ordered stop-times.
func (ix *Index) StopTimes(feed tb.FeedId, trip tb.TripDescriptor) ([]tb.StopTime, error) {
	st, ok := ix.stopTimes[tripKey{feed, trip}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", tb.ErrUnknownTrip, feed, trip.TripId)
	}
	return st, nil
}

// StopTimeAt resolves the StopTime a StoppingEvent refers to.
func (ix *Index) StopTimeAt(se tb.StoppingEvent) (tb.StopTime, error) {
	st, err := ix.StopTimes(se.Feed, se.Trip)
	if err != nil {
		return tb.StopTime{}, err
	}
	if se.StopSequence < 0 || se.StopSequence >= len(st) {
		return tb.StopTime{}, fmt.Errorf("%w: stop sequence %d out of range for trip %s", tb.ErrUnknownTrip, se.StopSequence, se.Trip.TripId)
	}
	return st[se.StopSequence], nil
}

// PatternOf returns the pattern a trip belongs to.
func (ix *Index) PatternOf(feed tb.FeedId, trip tb.TripDescriptor) (tb.PatternId, error) {
	p, ok := ix.tripPattern[tripKey{feed, trip}]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", tb.ErrUnknownTrip, feed, trip.TripId)
	}
	return p, nil
}

// ServiceActive reports whether a trip's service runs on the given day.
func (ix *Index) ServiceActive(feed tb.FeedId, trip tb.TripDescriptor, day tb.ServiceDay) (bool, error) {
	cal, ok := ix.calendars[tripKey{feed, trip}]
	if !ok {
		return false, fmt.Errorf("%w: %s/%s", tb.ErrUnknownTrip, feed, trip.TripId)
	}
	return cal.ActiveOn(day), nil
}

// TripMeta returns a trip's route/agency/block metadata.
func (ix *Index) TripMeta(feed tb.FeedId, trip tb.TripDescriptor) (tb.TripMetadata, error) {
	m, ok := ix.meta[tripKey{feed, trip}]
	if !ok {
		return tb.TripMetadata{}, fmt.Errorf("%w: %s/%s", tb.ErrUnknownTrip, feed, trip.TripId)
	}
	return m, nil
}

// Feeds enumerates every feed loaded into the index.
func (ix *Index) Feeds() []tb.FeedId {
	return append([]tb.FeedId(nil), ix.feeds...)
}

// AllTrips enumerates every (feed, trip) pair registered in the index, the
// unit TransferBuilder iterates over per service day.
func (ix *Index) AllTrips() []tb.TripRef {
	refs := make([]tb.TripRef, 0, len(ix.stopTimes))
	for key := range ix.stopTimes {
		refs = append(refs, tb.TripRef{Feed: key.feed, Trip: key.trip})
	}
	return refs
}

// PatternStops returns a pattern's stop-id sequence.
func (ix *Index) PatternStops(id tb.PatternId) ([]tb.StopId, error) {
	p, ok := ix.patterns[id]
	if !ok {
		return nil, fmt.Errorf("%w: pattern %s", tb.ErrUnknownTrip, id)
	}
	return p.pattern.Stops, nil
}

// TripsFromIndex returns every trip in trip's pattern at or after trip's
// position in the pattern's departure-time ordering. This is the set the
// router's enqueue operation marks "done" in one shot (spec.md §4.4): an
// earlier trip in a pattern dominates every later one from the same stop
// sequence onward.
func (ix *Index) TripsFromIndex(patternId tb.PatternId, trip tb.TripDescriptor) ([]tb.TripDescriptor, error) {
	p, ok := ix.patterns[patternId]
	if !ok {
		return nil, fmt.Errorf("%w: pattern %s", tb.ErrUnknownTrip, patternId)
	}
	idx, ok := p.tripIndex[trip]
	if !ok {
		return nil, fmt.Errorf("%w: trip %s not in pattern %s", tb.ErrUnknownTrip, trip.TripId, patternId)
	}
	return p.trips[idx:], nil
}

// BoardingsByPattern returns, for a stop, a map from pattern to the list of
// boardings at that stop sorted ascending by departure time. The result is
// computed at most once per stop — concurrent callers either observe the
// finished map or block on the single in-flight computation.
func (ix *Index) BoardingsByPattern(stop tb.StopId) map[tb.PatternId][]tb.StoppingEvent {
	v, _ := ix.boardingsCache.LoadOrStore(stop, &boardingEntry{})
	entry := v.(*boardingEntry)
	entry.once.Do(func() {
		raw := ix.rawBoardings[stop]
		byPattern := make(map[tb.PatternId][]rawBoarding, len(raw))
		for _, rb := range raw {
			byPattern[rb.pattern] = append(byPattern[rb.pattern], rb)
		}
		result := make(map[tb.PatternId][]tb.StoppingEvent, len(byPattern))
		for pid, boardings := range byPattern {
			sort.Slice(boardings, func(i, j int) bool { return boardings[i].departure < boardings[j].departure })
			events := make([]tb.StoppingEvent, len(boardings))
			for i, b := range boardings {
				events[i] = tb.StoppingEvent{Feed: stop.Feed, Trip: b.trip, StopSequence: b.seq}
			}
			result[pid] = events
		}
		entry.val = result
	})
	return entry.val
}
