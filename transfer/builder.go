package transfer

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/transitcore/tripbased/internal/iter"
	"github.com/transitcore/tripbased/schedule"

	tb "github.com/transitcore/tripbased"
)

// Config mirrors spec.md §6's builder parameters.
type Config struct {
	// MaxTransferDurationSeconds is the MAXIMUM_TRANSFER_DURATION cap: a
	// pattern is skipped entirely once its first reachable boarding departs
	// this many seconds or more after the alighting arrival. Default 900.
	MaxTransferDurationSeconds int
	// Threads is the work-pool size the builder fans a service day's trips
	// out across. Default runtime.GOMAXPROCS(0).
	Threads int
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{MaxTransferDurationSeconds: 900, Threads: runtime.GOMAXPROCS(0)}
}

// Builder deterministically produces a TransferMap for one service day at a
// time. A Builder is reusable across days (the index and connection graph it
// wraps don't change); it holds no per-day state of its own.
type Builder struct {
	index        *schedule.Index
	explicit     map[tb.StopId][]tb.ExplicitStopTransfer
	interpolated map[tb.StopId][]tb.InterpolatedTransfer
	cfg          Config
}

func NewBuilder(index *schedule.Index, explicit []tb.ExplicitStopTransfer, interpolated []tb.InterpolatedTransfer, cfg Config) *Builder {
	if cfg.MaxTransferDurationSeconds <= 0 {
		cfg.MaxTransferDurationSeconds = DefaultConfig().MaxTransferDurationSeconds
	}
	if cfg.Threads <= 0 {
		cfg.Threads = DefaultConfig().Threads
	}
	b := &Builder{index: index, cfg: cfg}
	b.explicit = map[tb.StopId][]tb.ExplicitStopTransfer{}
	for _, r := range explicit {
		b.explicit[r.From] = append(b.explicit[r.From], r)
	}
	b.interpolated = map[tb.StopId][]tb.InterpolatedTransfer{}
	for _, r := range interpolated {
		b.interpolated[r.From] = append(b.interpolated[r.From], r)
	}
	return b
}

// Build runs the backward-walk algorithm of spec.md §4.2 over every trip in
// trips, in parallel across b.cfg.Threads workers — grounded on
// patrickbr-gtfstidy's chunked-goroutine processor pattern
// (processors/shapeduplicateremover.go): the trip slice is split into
// contiguous chunks, one goroutine per chunk, each chunk's work is read-only
// against the ScheduleIndex, and results land in the shared Map through its
// mutex-guarded insert. Any per-trip error aborts the whole build, per
// spec.md §4.2's "all [errors] are fatal to the build" policy.
func (b *Builder) Build(day tb.ServiceDay, trips []tb.TripRef) (*Map, error) {
	result := newMap()
	if len(trips) == 0 {
		return result, nil
	}

	chunks := b.cfg.Threads
	if chunks > len(trips) {
		chunks = len(trips)
	}
	workload := int(math.Ceil(float64(len(trips)) / float64(chunks)))
	errs := make(chan error, chunks)

	for c := 0; c < chunks; c++ {
		go func(c int) {
			start := c * workload
			end := start + workload
			if end > len(trips) {
				end = len(trips)
			}
			for i := start; i < end; i++ {
				if err := b.buildTrip(day, trips[i], result); err != nil {
					errs <- fmt.Errorf("building transfers for trip %s: %w", trips[i].Trip.TripId, err)
					return
				}
			}
			errs <- nil
		}(c)
	}

	var firstErr error
	for c := 0; c < chunks; c++ {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

func (b *Builder) buildTrip(day tb.ServiceDay, ref tb.TripRef, result *Map) error {
	active, err := b.index.ServiceActive(ref.Feed, ref.Trip, day)
	if err != nil {
		return err
	}
	if !active {
		return nil
	}

	stopTimes, err := b.index.StopTimes(ref.Feed, ref.Trip)
	if err != nil {
		return err
	}
	n := len(stopTimes)

	// earliestArrival is local to this trip's backward walk: the best
	// (smallest) arrival time found so far, at each stop, across every
	// candidate transfer considered from any stop sequence of this trip.
	earliestArrival := map[tb.StopId]int{}

	// The walk covers every stop sequence, including the last: alighting at
	// a trip's final stop to transfer onward (S2: alight at the last stop of
	// X, transfer to Y) is the most common transfer point in practice. Only
	// the *destination* of a transfer is restricted to non-last sequences —
	// a destination must be a boarding, and boardingsByPattern already only
	// ever contains non-last stop sequences (see schedule.Builder.Build).
	for i := n - 1; i >= 0; i-- {
		st := stopTimes[i]
		origin := tb.StoppingEvent{Feed: ref.Feed, Trip: ref.Trip, StopSequence: i}

		for _, cand := range b.candidatesAt(st.Stop) {
			if err := b.tryCandidate(day, origin, st.ArrivalSeconds, cand, ref.Trip, earliestArrival, result); err != nil {
				return err
			}
		}

		// Fold the raw walking cost of every interpolated transfer from this
		// stop into earliestArrival, so stop sequences processed later in
		// this backward walk (i.e. earlier along the trip) see the bound.
		for _, it := range b.interpolated[st.Stop] {
			bound := st.ArrivalSeconds + it.WalkSeconds
			if cur, ok := earliestArrival[it.To]; !ok || bound < cur {
				earliestArrival[it.To] = bound
			}
		}
	}
	return nil
}

type candidate struct {
	stop tb.StopId
	walk int
}

func (b *Builder) candidatesAt(stop tb.StopId) []candidate {
	cands := make([]candidate, 0, 1+len(b.explicit[stop])+len(b.interpolated[stop]))
	cands = append(cands, candidate{stop: stop, walk: 0})
	for _, ex := range b.explicit[stop] {
		cands = append(cands, candidate{stop: ex.To, walk: ex.Walk()})
	}
	for _, it := range b.interpolated[stop] {
		cands = append(cands, candidate{stop: it.To, walk: it.WalkSeconds})
	}
	return cands
}

func (b *Builder) tryCandidate(day tb.ServiceDay, origin tb.StoppingEvent, arrival int, cand candidate, originTrip tb.TripDescriptor, earliestArrival map[tb.StopId]int, result *Map) error {
	earliestDeparture := arrival + cand.walk
	byPattern := b.index.BoardingsByPattern(cand.stop)

	// earliestArrival accumulates across every pattern processed for this
	// origin, so the order patterns are visited in can change which later
	// boardings still "improve" and get retained. Patterns are therefore
	// visited in a fixed order (by pattern id) rather than Go's unordered
	// map iteration, so the result is deterministic modulo insertion order.
	patternIds := make([]tb.PatternId, 0, len(byPattern))
	for pid := range byPattern {
		patternIds = append(patternIds, pid)
	}
	sort.Slice(patternIds, func(i, j int) bool { return patternIds[i] < patternIds[j] })

	for _, pid := range patternIds {
		boardings := byPattern[pid]
		dest, wrapped, found, err := firstQualifyingBoarding(b.index, boardings, earliestDeparture, day, originTrip)
		if err != nil {
			return err
		}
		if !found {
			continue
		}

		destStopTime, err := b.index.StopTimeAt(dest)
		if err != nil {
			return err
		}
		// Measured from the alighting arrival a, not from a + cand.walk, per
		// spec.md §4.2's "first reachable boarding departs >= 15 minutes
		// after arrival a" — a nonzero walk must not inflate the cap.
		wait := destStopTime.DepartureSeconds - arrival
		if wrapped {
			wait += 86400
		}
		if wait >= b.cfg.MaxTransferDurationSeconds {
			// MAXIMUM_TRANSFER_DURATION cap: the first reachable boarding on
			// this pattern is already too far out — skip the whole pattern.
			continue
		}

		improved, err := simulateForward(b.index, dest, wrapped, earliestArrival)
		if err != nil {
			return err
		}
		if improved {
			result.insert(origin, dest)
		}
	}
	return nil
}

// firstQualifyingBoarding finds the earliest boarding in a pattern's sorted
// boarding list departing at or after minDeparture, active on day, and not
// on the same trip as the one being walked backward.
//
// The source this spec was distilled from carries a "FIXME: overnight stop
// bug" comment at this exact point. We resolve it by first searching day's
// own calendar; if nothing qualifies (the list is exhausted, or every
// candidate's service is inactive that day), we retry at the wall-clock
// equivalent time-of-day (minDeparture mod 86400) against day+1's calendar,
// and report the wrap to the caller so downstream arrivals get the +86400
// offset spec.md §4.2 calls for. We never silently guess across calendar
// boundaries without this explicit two-step search.
func firstQualifyingBoarding(ix *schedule.Index, boardings []tb.StoppingEvent, minDeparture int, day tb.ServiceDay, excludeTrip tb.TripDescriptor) (tb.StoppingEvent, bool, bool, error) {
	se, ok, err := searchBoardings(ix, boardings, minDeparture, day, excludeTrip)
	if err != nil {
		return tb.StoppingEvent{}, false, false, err
	}
	if ok {
		return se, false, true, nil
	}

	wrappedDeparture := minDeparture % 86400
	se, ok, err = searchBoardings(ix, boardings, wrappedDeparture, day.Next(), excludeTrip)
	if err != nil {
		return tb.StoppingEvent{}, false, false, err
	}
	if ok {
		return se, true, true, nil
	}
	return tb.StoppingEvent{}, false, false, nil
}

func searchBoardings(ix *schedule.Index, boardings []tb.StoppingEvent, minDeparture int, day tb.ServiceDay, excludeTrip tb.TripDescriptor) (tb.StoppingEvent, bool, error) {
	var searchErr error
	idx := sort.Search(len(boardings), func(i int) bool {
		st, err := ix.StopTimeAt(boardings[i])
		if err != nil {
			searchErr = err
			return true
		}
		return st.DepartureSeconds >= minDeparture
	})
	if searchErr != nil {
		return tb.StoppingEvent{}, false, searchErr
	}

	for i := idx; i < len(boardings); i++ {
		se := boardings[i]
		if se.Trip == excludeTrip {
			continue
		}
		active, err := ix.ServiceActive(se.Feed, se.Trip, day)
		if err != nil {
			return tb.StoppingEvent{}, false, err
		}
		if active {
			return se, true, nil
		}
	}
	return tb.StoppingEvent{}, false, nil
}

// simulateForward walks boarding's trip from its boarding sequence onward,
// reporting whether any downstream stop's arrival strictly improves on the
// best arrival recorded so far in the current trip's backward walk, and
// folding every downstream arrival into earliestArrival regardless (spec.md
// §4.2: "in any case update earliestArrival along T'").
func simulateForward(ix *schedule.Index, boarding tb.StoppingEvent, wrapped bool, earliestArrival map[tb.StopId]int) (bool, error) {
	stopTimes, err := ix.StopTimes(boarding.Feed, boarding.Trip)
	if err != nil {
		return false, err
	}
	offset := 0
	if wrapped {
		offset = 86400
	}
	improved := false
	downstream := iter.New(stopTimes[boarding.StopSequence+1:], false)
	for downstream.HasNext() {
		st := downstream.Next()
		arrival := st.ArrivalSeconds + offset
		if cur, ok := earliestArrival[st.Stop]; !ok || arrival < cur {
			improved = true
			earliestArrival[st.Stop] = arrival
		}
	}
	return improved, nil
}
