package tripbased

// StoppingEvent is the fundamental unit of the search: "trip T visits its
// stop-sequence s". Comparable by value, so it's used directly as a Go map
// key — by transfer.Map and everywhere else that needs an origin-or-
// destination key — with no separate hash step.
type StoppingEvent struct {
	Feed         FeedId
	Trip         TripDescriptor
	StopSequence int
}

// Transfer is a directed connection from an origin StoppingEvent (where a
// traveller alights mid-trip) to a destination StoppingEvent (an onward
// boarding), as produced by the transfer builder. StreetTime is the walking
// time in seconds; MinTransferTimeSeconds, when set, overrides it (GTFS
// transfers.txt's min_transfer_time).
type Transfer struct {
	Origin                 StoppingEvent
	Destination            StoppingEvent
	StreetTimeSeconds      int
	MinTransferTimeSeconds *int
}

// Walk returns the effective walking cost of the transfer: the explicit
// override if present, otherwise the street time.
func (t Transfer) Walk() int {
	if t.MinTransferTimeSeconds != nil {
		return *t.MinTransferTimeSeconds
	}
	return t.StreetTimeSeconds
}

// InterpolatedTransfer is a precomputed short walk between two stops with a
// fixed walking time, independent of any trip.
type InterpolatedTransfer struct {
	From        StopId
	To          StopId
	WalkSeconds int
}

// ExplicitStopTransfer is a stop-to-stop connection sourced from GTFS
// transfers.txt: like InterpolatedTransfer, but may carry an explicit
// min_transfer_time override distinct from the raw street walking time.
type ExplicitStopTransfer struct {
	From                   StopId
	To                     StopId
	StreetTimeSeconds      int
	MinTransferTimeSeconds *int
}

// Walk returns the effective cost to apply when evaluating this rule.
func (t ExplicitStopTransfer) Walk() int {
	if t.MinTransferTimeSeconds != nil {
		return *t.MinTransferTimeSeconds
	}
	return t.StreetTimeSeconds
}
