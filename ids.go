package tripbased

// FeedId opaquely identifies one GTFS feed. Immutable.
type FeedId string

// StopId is (feedId, stopCode). Two stops are equal iff both components
// match, which Go's struct equality gives us for free.
type StopId struct {
	Feed FeedId
	Code string
}

// PatternId identifies the equivalence class of trips sharing a stop-id
// sequence and pickup/dropoff-type sequence, scoped to one feed.
type PatternId string
