package scrollwindow

import (
	"cmp"
	"slices"
)

// Intersection is the anchor chosen when a window changes, so the
// renderer can keep that item at the same pixel Y. Direction records
// which side of the viewport the anchor came from.
type Intersection struct {
	EntityID  EntityID
	Index     int
	Direction ScrollMode // Backward or Forward
}

// VisibleSet is the published output of a ScrollManager: the items to
// render, in ascending-timestamp order, plus enough metadata for the
// platform to render edges, anchor scroll position, and decide whether
// to force-scroll to the bottom.
type VisibleSet[V Entity] struct {
	Items              []V
	Intersection       *Intersection
	HasMorePreceding   bool
	HasMoreFollowing   bool
	ShouldAutoScroll   bool
	Error              string
}

// evaluateWindow implements the window evaluator (§4.3): sort
// ascending, detect boundaries, anchor an intersection against the
// previous VisibleSet, apply the Forward -> Live transition, and
// compute the auto-scroll flag. It mutates m.mode, m.newestEverTS,
// m.oldestEverTS, m.windowSize, and m.indexByID as a side effect, and
// must only be called while m.mu is held.
func (m *ScrollManager[V]) evaluateWindow(items []V) VisibleSet[V] {
	mode := m.pendingMode
	limit := m.selection.Limit

	sorted := append([]V(nil), items...)
	slices.SortFunc(sorted, func(a, b V) int {
		return cmp.Compare(a.Timestamp(), b.Timestamp())
	})

	var hasMorePreceding, hasMoreFollowing bool
	switch mode {
	case Backward:
		hasMorePreceding = len(sorted) >= limit
		hasMoreFollowing = true // not tracked while paging backward; see DESIGN.md
	case Forward:
		hasMorePreceding = true // not tracked while paging forward
		hasMoreFollowing = len(sorted) >= limit
	default: // Live
		hasMorePreceding = len(sorted) >= limit
		hasMoreFollowing = false
	}

	if mode == Live && len(sorted) > 0 {
		ts := sorted[len(sorted)-1].Timestamp()
		m.newestEverTS = &ts
	}
	if !hasMorePreceding && len(sorted) > 0 {
		ts := sorted[0].Timestamp()
		m.oldestEverTS = &ts
	}

	previous := m.visible
	var intersection *Intersection
	switch mode {
	case Backward:
		intersection = findAnchor(previous.Items, sorted, Backward)
	case Forward:
		intersection = findAnchor(previous.Items, sorted, Forward)
	}

	anchorLost := intersection == nil && mode != Live && len(previous.Items) > 0

	resultMode := m.mode
	if mode == Forward && !hasMoreFollowing && len(sorted) > 0 &&
		m.newestEverTS != nil && sorted[len(sorted)-1].Timestamp() == *m.newestEverTS {
		resultMode = Live
		m.mode = Live
		m.windowSize = m.sizes.LiveWindow
		intersection = nil
	}

	shouldAutoScroll := resultMode == Live && intersection == nil

	idx := make(map[EntityID]int, len(sorted))
	for i, it := range sorted {
		idx[it.EntityID()] = i
	}
	m.indexByID = idx

	vs := VisibleSet[V]{
		Items:            sorted,
		Intersection:     intersection,
		HasMorePreceding: hasMorePreceding,
		HasMoreFollowing: hasMoreFollowing,
		ShouldAutoScroll: shouldAutoScroll,
	}
	if anchorLost {
		vs.Error = ErrAnchorLost.Error()
		if m.logger != nil {
			m.logger.Printf("scrollwindow: %v", ErrAnchorLost)
		}
	}
	return vs
}

// findAnchor looks for an item common to prev and next, by EntityID.
// For Backward it scans prev from the newest end (the newest item in
// prev that also appears in next); for Forward it scans from the
// oldest end. Both prev and next are assumed sorted ascending.
func findAnchor[V Entity](prev, next []V, direction ScrollMode) *Intersection {
	if len(prev) == 0 || len(next) == 0 {
		return nil
	}

	nextIndex := make(map[EntityID]int, len(next))
	for i, it := range next {
		nextIndex[it.EntityID()] = i
	}

	if direction == Backward {
		for i := len(prev) - 1; i >= 0; i-- {
			id := prev[i].EntityID()
			if idx, ok := nextIndex[id]; ok {
				return &Intersection{EntityID: id, Index: idx, Direction: Backward}
			}
		}
		return nil
	}

	for i := 0; i < len(prev); i++ {
		id := prev[i].EntityID()
		if idx, ok := nextIndex[id]; ok {
			return &Intersection{EntityID: id, Index: idx, Direction: Forward}
		}
	}
	return nil
}
