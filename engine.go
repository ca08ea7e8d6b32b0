package scrollwindow

import "context"

// Result is a single delivery from a query engine's result stream: the
// matching items, or an error for this delivery (recorded into
// VisibleSet.Error; mode and window are left unchanged).
type Result[V Entity] struct {
	Items []V
	Err   error
}

// Engine is the reactive query engine interface the core consumes. Run
// issues a Selection and returns a channel of subsequent result sets
// for it. Implementers MUST provide monotonic-replacement semantics:
// once a new Selection is run, the previously returned channel must
// stop receiving values for the old predicate — partial results for a
// superseded selection must not be delivered after the new one starts.
// The core relies entirely on this assumption; it never cancels a
// channel itself, it only discards results that arrive on stale ones.
type Engine[V Entity] interface {
	Run(ctx context.Context, selection Selection) (<-chan Result[V], error)
}
