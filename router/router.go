// Package router implements TripBasedRouter: the multi-round scan that
// turns access boardings, a precomputed TransferMap, and a ScheduleIndex
// into Pareto-optimal journeys.
package router

import (
	"github.com/transitcore/tripbased/journey"
	"github.com/transitcore/tripbased/schedule"
	"github.com/transitcore/tripbased/transfer"

	tb "github.com/transitcore/tripbased"
)

// Router is reusable across queries and days; it holds no per-query state.
// A nil transfers map is accepted and treated as "no service day prepared"
// (§7's ServiceDayNotPrepared): the router still returns direct-ride
// results, just without transfer expansion.
type Router struct {
	index     *schedule.Index
	transfers *transfer.Map
	cfg       Config
}

func New(index *schedule.Index, transfers *transfer.Map, cfg Config) *Router {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultConfig().MaxRounds
	}
	return &Router{index: index, transfers: transfers, cfg: cfg}
}

// Route executes one query: no input feed, no access stops, or no egress
// stops all yield an empty (not erroneous) result, per §4.4's failure
// modes.
func (r *Router) Route(q Query) ([]journey.Journey, error) {
	if len(q.Access) == 0 || len(q.Egress) == 0 {
		return nil, nil
	}
	if err := q.validateServiceDays(); err != nil {
		return nil, err
	}

	st := newQueryState(r.index, r.transfers, q.Day, q.Egress)
	queue, err := st.seed(q)
	if err != nil {
		return nil, err
	}

	for round := 0; round < r.cfg.MaxRounds && len(queue) > 0; round++ {
		if q.aborted() {
			return st.results, tb.ErrAborted
		}
		next, err := st.processRound(queue)
		if err != nil {
			return nil, err
		}
		queue = next
	}
	return st.results, nil
}

// RouteNaiveProfile runs Route once per minute over
// [startSeconds, startSeconds+lengthSeconds], latest departure first, and
// accumulates every result into one Pareto-dominated set — §4.4's simpler
// stand-in for range-RAPTOR.
func (r *Router) RouteNaiveProfile(q Query, startSeconds, lengthSeconds int) ([]journey.Journey, error) {
	var merged []journey.Journey
	for t := startSeconds + lengthSeconds; t >= startSeconds; t -= 60 {
		iq := q
		iq.InitialSeconds = t

		results, err := r.Route(iq)
		if err != nil && err != tb.ErrAborted {
			return nil, err
		}
		for _, j := range results {
			merged = journey.MergeInto(merged, j)
		}
		if err == tb.ErrAborted {
			break
		}
	}
	return merged, nil
}
