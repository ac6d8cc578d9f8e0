// Package journey turns the raw ride segments a router walks off its
// parent-pointer search tree into traveller-visible Journeys: ordered legs
// plus a block_id-aware transfer count.
package journey

import tb "github.com/transitcore/tripbased"

// RideSegment is one trip ridden between a boarding and an alighting,
// exactly as the router reconstructs it by walking an EnqueuedTripSegment's
// parent chain back to the access stop.
type RideSegment struct {
	Feed                  tb.FeedId
	Trip                  tb.TripDescriptor
	BoardStop, AlightStop tb.StopId
	BoardTime, AlightTime int
	RouteId               string
	BlockId               string
}

// Leg is the traveller-visible view of a RideSegment: §6's output shape
// (boardStop, boardTime, alightStop, alightTime, tripId, routeId).
type Leg struct {
	BoardStop  tb.StopId
	BoardTime  int
	AlightStop tb.StopId
	AlightTime int
	TripId     string
	RouteId    string
}

// Journey is one complete, Pareto-optimal itinerary: an access walk, zero or
// more rides, and an egress walk.
type Journey struct {
	AccessStop        tb.StopId
	AccessWalkSeconds int
	EgressStop        tb.StopId
	EgressWalkSeconds int
	DepartureSeconds  int
	ArrivalSeconds    int
	Transfers         int
	Legs              []Leg
}

// Reconstruct builds a Journey from an ordered (boarding-to-egress) chain of
// ride segments. Two consecutive segments are a "real" transfer unless both
// carry the same non-empty block_id (a GTFS through-run on the same
// physical vehicle), per §4.5.
func Reconstruct(accessStop tb.StopId, accessWalkSeconds int, egressStop tb.StopId, egressWalkSeconds int, segments []RideSegment) Journey {
	legs := make([]Leg, len(segments))
	transfers := 0
	for i, s := range segments {
		legs[i] = Leg{
			BoardStop:  s.BoardStop,
			BoardTime:  s.BoardTime,
			AlightStop: s.AlightStop,
			AlightTime: s.AlightTime,
			TripId:     s.Trip.TripId,
			RouteId:    s.RouteId,
		}
		if i > 0 && !throughRun(segments[i-1], s) {
			transfers++
		}
	}

	var departure, arrival int
	if len(segments) > 0 {
		departure = segments[0].BoardTime
		arrival = segments[len(segments)-1].AlightTime + egressWalkSeconds
	}

	return Journey{
		AccessStop:        accessStop,
		AccessWalkSeconds: accessWalkSeconds,
		EgressStop:        egressStop,
		EgressWalkSeconds: egressWalkSeconds,
		DepartureSeconds:  departure,
		ArrivalSeconds:    arrival,
		Transfers:         transfers,
		Legs:              legs,
	}
}

// throughRun reports whether b continues the same physical vehicle as a,
// per GTFS block_id semantics: a shared, non-empty block_id means the
// passenger never actually left the vehicle.
func throughRun(a, b RideSegment) bool {
	return a.BlockId != "" && a.BlockId == b.BlockId
}

// Dominates reports whether j is at least as good as other in every
// dimension of (arrival, transfers, -departure) and strictly better in at
// least one — the Pareto relation of §4.4/§8.
func (j Journey) Dominates(other Journey) bool {
	notWorse := j.ArrivalSeconds <= other.ArrivalSeconds &&
		j.Transfers <= other.Transfers &&
		j.DepartureSeconds >= other.DepartureSeconds
	strictlyBetter := j.ArrivalSeconds < other.ArrivalSeconds ||
		j.Transfers < other.Transfers ||
		j.DepartureSeconds > other.DepartureSeconds
	return notWorse && strictlyBetter
}

// Equal reports whether j and other occupy the same point in (arrival,
// transfers, departure) and end at the same egress stop, regardless of the
// legs taken to get there.
func (j Journey) Equal(other Journey) bool {
	return j.ArrivalSeconds == other.ArrivalSeconds &&
		j.Transfers == other.Transfers &&
		j.DepartureSeconds == other.DepartureSeconds &&
		j.EgressStop == other.EgressStop
}

// MergeInto inserts candidate into results under Pareto dominance: any
// existing entry dominated by candidate is dropped; candidate is discarded
// if an existing entry already dominates it or occupies the same point.
func MergeInto(results []Journey, candidate Journey) []Journey {
	for _, existing := range results {
		if existing.Dominates(candidate) || existing.Equal(candidate) {
			return results
		}
	}
	kept := results[:0]
	for _, existing := range results {
		if !candidate.Dominates(existing) {
			kept = append(kept, existing)
		}
	}
	return append(kept, candidate)
}
