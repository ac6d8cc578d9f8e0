package tripbased

// Pattern is the identity of a stop sequence shared by multiple trips within
// one feed. All trips in a pattern share an identical (stopId, pickup-type,
// dropoff-type) sequence. Within a pattern, trips are ordered so that for any
// two trips A, B, A precedes B iff A.departure[i] <= B.departure[i] for
// every shared stop index i — feeds that violate this are still accepted
// (sorted by first-stop departure instead); pruning in transfer building
// simply becomes less effective, never incorrect.
type Pattern struct {
	Id    PatternId
	Feed  FeedId
	Stops []StopId
}
