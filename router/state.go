package router

import (
	"math"
	"sort"

	"github.com/transitcore/tripbased/journey"
	"github.com/transitcore/tripbased/schedule"
	"github.com/transitcore/tripbased/transfer"

	tb "github.com/transitcore/tripbased"
)

// infSeq marks an EnqueuedTripSegment as having no upper bound on the stop
// sequences still to scan — every segment this router creates uses it;
// tripDoneFromIndex, not toStopSequenceExclusive, does the real pruning
// (§9's Design Notes).
const infSeq = math.MaxInt32

// segment is one arena-resident EnqueuedTripSegment. Parent is an index
// into the same arena, never a pointer, so the whole search tree for one
// query is a single pre-sized-on-append slice, freed in one shot when the
// query returns — the teacher's flat-slice-over-heap-nodes preference
// (mod.go's RoundSegment bookkeeping), generalised to TB's parent-chain
// shape.
type segment struct {
	event          tb.StoppingEvent
	toSeqExclusive int
	transferOrigin *tb.StoppingEvent
	parent         int
	accessStop     *AccessStop
}

// queryState is the mutable state of one in-flight query (§5: "global
// mutable state... keep them on the query's owned state object, not
// globally").
type queryState struct {
	index     *schedule.Index
	transfers *transfer.Map
	day       tb.ServiceDay
	egress    []EgressStop

	earliestArrival int
	tripDone        map[tb.TripDescriptor]int
	arena           []segment
	results         []journey.Journey
}

func newQueryState(index *schedule.Index, transfers *transfer.Map, day tb.ServiceDay, egress []EgressStop) *queryState {
	return &queryState{
		index:           index,
		transfers:       transfers,
		day:             day,
		egress:          egress,
		earliestArrival: math.MaxInt,
		tripDone:        map[tb.TripDescriptor]int{},
	}
}

func (st *queryState) appendArena(s segment) int {
	st.arena = append(st.arena, s)
	return len(st.arena) - 1
}

// seed implements round 0: for each access stop, the first qualifying
// boarding per pattern, sorted by departure time.
func (st *queryState) seed(q Query) ([]int, error) {
	filter := q.filter()
	var queue []int
	for i := range q.Access {
		a := q.Access[i]
		earliestDeparture := q.InitialSeconds + a.WalkSeconds
		for _, boardings := range st.index.BoardingsByPattern(a.Stop) {
			se, ok, err := st.firstQualifyingSeed(boardings, earliestDeparture, filter)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			idx := st.appendArena(segment{event: se, toSeqExclusive: infSeq, parent: -1, accessStop: &a})
			queue = append(queue, idx)
		}
	}

	sort.Slice(queue, func(i, j int) bool {
		di, _ := st.index.StopTimeAt(st.arena[queue[i]].event)
		dj, _ := st.index.StopTimeAt(st.arena[queue[j]].event)
		return di.DepartureSeconds < dj.DepartureSeconds
	})
	return queue, nil
}

func (st *queryState) firstQualifyingSeed(boardings []tb.StoppingEvent, minDeparture int, filter TripFilter) (tb.StoppingEvent, bool, error) {
	var searchErr error
	idx := sort.Search(len(boardings), func(i int) bool {
		s, err := st.index.StopTimeAt(boardings[i])
		if err != nil {
			searchErr = err
			return true
		}
		return s.DepartureSeconds >= minDeparture
	})
	if searchErr != nil {
		return tb.StoppingEvent{}, false, searchErr
	}

	for i := idx; i < len(boardings); i++ {
		se := boardings[i]
		active, err := st.index.ServiceActive(se.Feed, se.Trip, st.day)
		if err != nil {
			return tb.StoppingEvent{}, false, err
		}
		if !active {
			continue
		}
		meta, err := st.index.TripMeta(se.Feed, se.Trip)
		if err != nil {
			return tb.StoppingEvent{}, false, err
		}
		if !filter(meta) {
			continue
		}
		return se, true, nil
	}
	return tb.StoppingEvent{}, false, nil
}

// processRound runs Pass 1 (egress-hit detection, mutating earliestArrival
// and results) to completion, then Pass 2 (transfer enqueueing) — strictly
// in that order, per §5's ordering requirement.
func (st *queryState) processRound(queue []int) ([]int, error) {
	if err := st.pass1(queue); err != nil {
		return nil, err
	}
	return st.pass2(queue)
}

func (st *queryState) pass1(queue []int) error {
	for _, idx := range queue {
		seg := st.arena[idx]
		stopTimes, err := st.index.StopTimes(seg.event.Feed, seg.event.Trip)
		if err != nil {
			return err
		}
		to := seg.toSeqExclusive
		if to > len(stopTimes) {
			to = len(stopTimes)
		}

		for i := seg.event.StopSequence + 1; i < to; i++ {
			st_i := stopTimes[i]
			if st_i.ArrivalSeconds >= st.earliestArrival {
				break
			}
			for _, eg := range st.egress {
				if eg.Stop != st_i.Stop {
					continue
				}
				arrival := st_i.ArrivalSeconds + eg.WalkSeconds
				if arrival >= st.earliestArrival {
					continue
				}
				st.earliestArrival = arrival
				segs, access, err := st.chainSegments(idx, i)
				if err != nil {
					return err
				}
				j := journey.Reconstruct(access.Stop, access.WalkSeconds, eg.Stop, eg.WalkSeconds, segs)
				st.results = journey.MergeInto(st.results, j)
			}
		}
	}
	return nil
}

func (st *queryState) pass2(queue []int) ([]int, error) {
	if st.transfers == nil {
		// ServiceDayNotPrepared: not an error, just no transfer expansion.
		return nil, nil
	}

	var next []int
	for _, idx := range queue {
		seg := st.arena[idx]
		stopTimes, err := st.index.StopTimes(seg.event.Feed, seg.event.Trip)
		if err != nil {
			return nil, err
		}
		to := seg.toSeqExclusive
		if to > len(stopTimes) {
			to = len(stopTimes)
		}

		for i := seg.event.StopSequence + 1; i < to; i++ {
			e := tb.StoppingEvent{Feed: seg.event.Feed, Trip: seg.event.Trip, StopSequence: i}
			for _, d := range st.transfers.Get(e) {
				if newIdx, enqueued := st.enqueue(d, e, idx); enqueued {
					next = append(next, newIdx)
				}
			}
		}
	}
	return next, nil
}

// enqueue implements the trip-done-from-index pruning of §4.4: d is
// enqueued only if it isn't already dominated by an earlier enqueue into
// the same or an earlier trip in its pattern, and doing so marks every trip
// from d's pattern position onward as done from d's stop sequence.
func (st *queryState) enqueue(d tb.StoppingEvent, origin tb.StoppingEvent, parentIdx int) (int, bool) {
	if doneFrom, ok := st.tripDone[d.Trip]; ok && d.StopSequence >= doneFrom {
		return 0, false
	}

	idx := st.appendArena(segment{event: d, toSeqExclusive: infSeq, transferOrigin: &origin, parent: parentIdx})

	if patternId, err := st.index.PatternOf(d.Feed, d.Trip); err == nil {
		if laterTrips, err := st.index.TripsFromIndex(patternId, d.Trip); err == nil {
			for _, t := range laterTrips {
				st.tripDone[t] = d.StopSequence
			}
		}
	}
	return idx, true
}

// chainSegments walks idx's parent chain back to the access stop, returning
// the ride segments in boarding order and the access stop that started the
// chain. alightSeq is the stop sequence on idx's trip where this
// particular egress hit alighted.
func (st *queryState) chainSegments(idx int, alightSeq int) ([]journey.RideSegment, AccessStop, error) {
	var segs []journey.RideSegment
	var access AccessStop
	seq := alightSeq

	for idx != -1 {
		seg := st.arena[idx]
		stopTimes, err := st.index.StopTimes(seg.event.Feed, seg.event.Trip)
		if err != nil {
			return nil, AccessStop{}, err
		}
		meta, err := st.index.TripMeta(seg.event.Feed, seg.event.Trip)
		if err != nil {
			return nil, AccessStop{}, err
		}
		boardSt := stopTimes[seg.event.StopSequence]
		alightSt := stopTimes[seq]

		segs = append(segs, journey.RideSegment{
			Feed:       seg.event.Feed,
			Trip:       seg.event.Trip,
			BoardStop:  boardSt.Stop,
			AlightStop: alightSt.Stop,
			BoardTime:  boardSt.DepartureSeconds,
			AlightTime: alightSt.ArrivalSeconds,
			RouteId:    meta.RouteId,
			BlockId:    meta.BlockId,
		})

		if seg.parent == -1 {
			access = *seg.accessStop
		} else if seg.transferOrigin != nil {
			seq = seg.transferOrigin.StopSequence
		}
		idx = seg.parent
	}

	for l, r := 0, len(segs)-1; l < r; l, r = l+1, r-1 {
		segs[l], segs[r] = segs[r], segs[l]
	}
	return segs, access, nil
}
