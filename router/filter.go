package router

import tb "github.com/transitcore/tripbased"

// TripFilter is the polymorphic trip-acceptance capability of Design Note
// 4: a single predicate over trip metadata, evaluated only at round-0
// boarding selection (transfers, once precomputed, are followed
// unconditionally — the filter cannot retroactively exclude a trip the
// TransferBuilder already selected).
type TripFilter func(tb.TripMetadata) bool

// AcceptAll admits every trip.
func AcceptAll(tb.TripMetadata) bool { return true }

// ByRouteType admits trips whose RouteType is one of the given GTFS
// route_type values (0 = tram, 1 = subway, 2 = rail, 3 = bus, ...).
func ByRouteType(types ...int) TripFilter {
	allowed := make(map[int]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return func(m tb.TripMetadata) bool {
		_, ok := allowed[m.RouteType]
		return ok
	}
}

// ByAgencyAllowList admits trips operated by one of the given agency IDs.
func ByAgencyAllowList(agencyIds ...string) TripFilter {
	allowed := make(map[string]struct{}, len(agencyIds))
	for _, a := range agencyIds {
		allowed[a] = struct{}{}
	}
	return func(m tb.TripMetadata) bool {
		_, ok := allowed[m.AgencyId]
		return ok
	}
}
