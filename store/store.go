// Package store implements TransferStore: the external, durable home for a
// TransferMap, keyed by service day. Every backend here is an adapter around
// an ordinary database driver or cache client — none of them touch GTFS feed
// files directly, which remains out of scope.
package store

import (
	"context"

	tb "github.com/transitcore/tripbased"
	"github.com/transitcore/tripbased/transfer"
)

// TransferStore is the contract a TransferBuilder's output is persisted
// through and a router's startup path reads it back from. Implementations
// must make a Put for one day visible to Get atomically: a reader never
// observes half of a day's transfers. A day with no prepared transfers is
// not an error condition — spec.md §4.3 requires Get to return an empty
// *transfer.Map and a nil error in that case, the same "service day not
// prepared, proceed with direct rides only" contract router.Router already
// gives a nil map. ErrNotFound is reserved for genuine backend failures.
type TransferStore interface {
	Get(ctx context.Context, day tb.ServiceDay) (*transfer.Map, error)
	Put(ctx context.Context, day tb.ServiceDay, m *transfer.Map) error
}

// ErrNotFound signals a backend failure distinct from "no data for this
// day" — none of the backends in this package currently produce it, since
// an absent row is a normal, successful outcome (empty map, nil error), not
// a failure. It's kept for backends that may need to distinguish "missing"
// from "corrupt"/"unreachable" in the future.
var ErrNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "store: no transfer map for that service day" }
