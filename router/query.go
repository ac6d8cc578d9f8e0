package router

import (
	"fmt"
	"time"

	tb "github.com/transitcore/tripbased"
)

// AccessStop is one way a traveller can enter the transit network: stand at
// Stop, having already spent WalkSeconds getting there. Zone is the IANA
// time zone the stop's own feed defines its service day in (spec.md §6's
// zoneId); it's optional, and only consulted when Query.Instant is set — see
// Query.validateServiceDays.
type AccessStop struct {
	Stop        tb.StopId
	WalkSeconds int
	Zone        *time.Location
}

// EgressStop is one way a traveller can leave the transit network, walking
// WalkSeconds from Stop to their final destination.
type EgressStop struct {
	Stop        tb.StopId
	WalkSeconds int
}

// Config holds the router's tunable parameters (§6).
type Config struct {
	// MaxRounds caps the number of transfer rounds. Default 3.
	MaxRounds int
}

// DefaultConfig returns the spec's documented default.
func DefaultConfig() Config { return Config{MaxRounds: 3} }

// Query is a single route request.
type Query struct {
	Access []AccessStop
	Egress []EgressStop

	// Day is the service day the query runs against, and InitialSeconds is
	// the query instant expressed as seconds-of-that-day, both already
	// resolved from the access stops' time zone by the caller — ServiceDayAt
	// and SecondsOfDay in the root package do this resolution.
	Day            tb.ServiceDay
	InitialSeconds int

	// Instant is the wall-clock instant the query was issued at. It's
	// optional and used for exactly one purpose: when set, and at least one
	// AccessStop carries a Zone, every zoned access stop's service day is
	// independently recomputed from Instant (via tb.ServiceDayAt) and
	// checked against the others for consistency before routing begins —
	// spec.md §9's requirement to "reject queries whose access stops span
	// incompatible service-day definitions... unless an explicit policy is
	// provided." Leave it zero to skip the check entirely (e.g. when the
	// caller has already resolved Day/InitialSeconds itself and knows all
	// access stops share one feed/zone).
	Instant time.Time

	// AllowMixedServiceDays opts out of the rejection above — the "explicit
	// policy" spec.md §9 allows for.
	AllowMixedServiceDays bool

	// Filter restricts which trips may be boarded at round 0. Nil means
	// AcceptAll.
	Filter TripFilter

	// Abort, if non-nil, is checked at the top of every round; a closed or
	// readable channel aborts the query and returns the partial result
	// found so far alongside ErrAborted.
	Abort <-chan struct{}
}

func (q Query) filter() TripFilter {
	if q.Filter == nil {
		return AcceptAll
	}
	return q.Filter
}

func (q Query) aborted() bool {
	if q.Abort == nil {
		return false
	}
	select {
	case <-q.Abort:
		return true
	default:
		return false
	}
}

// validateServiceDays implements spec.md §9's rejection rule. It's a no-op
// unless q.Instant is set: callers that have already resolved Day and
// InitialSeconds themselves (e.g. a single-feed deployment with one zone)
// never pay for or trigger this check.
func (q Query) validateServiceDays() error {
	if q.Instant.IsZero() || q.AllowMixedServiceDays {
		return nil
	}

	var first tb.ServiceDay
	haveFirst := false
	for _, a := range q.Access {
		if a.Zone == nil {
			continue
		}
		day := tb.ServiceDayAt(q.Instant, a.Zone)
		if !haveFirst {
			first = day
			haveFirst = true
			continue
		}
		if day != first {
			return fmt.Errorf("%w: access stop %s resolves to %s, others resolve to %s", tb.ErrIncompatibleServiceDays, a.Stop.Code, day, first)
		}
	}
	return nil
}
