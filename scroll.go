package scrollwindow

// OnScroll reports the currently-visible first/last items and the
// direction of travel. It looks up both in the current VisibleSet,
// evaluates the backward/forward triggers, and — if one fires — issues
// a new Selection with the next generation number as a side effect.
// It never suspends and never blocks on the result; stale results from
// a superseded selection are discarded when they arrive (see apply).
//
// Because the two trigger conditions are gated on opposite values of
// scrollingBackward, they cannot both fire from a single call; the
// direction of travel inherently wins the tie the spec calls out.
func (m *ScrollManager[V]) OnScroll(firstVisible, lastVisible EntityID, scrollingBackward bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.visible
	if len(cur.Items) == 0 {
		return
	}
	firstIdx, ok := m.indexByID[firstVisible]
	if !ok {
		return
	}
	lastIdx, ok := m.indexByID[lastVisible]
	if !ok {
		return
	}

	itemsAbove := firstIdx
	itemsBelow := len(cur.Items) - 1 - lastIdx

	backwardFires := scrollingBackward && cur.HasMorePreceding && itemsAbove <= m.sizes.Threshold
	forwardFires := !scrollingBackward && cur.HasMoreFollowing && itemsBelow <= m.sizes.Threshold

	switch m.mode {
	case Live:
		if backwardFires {
			m.triggerBackward(cur, firstIdx)
		}
		// forwardFires is impossible in Live: HasMoreFollowing is always false there.
	case Backward:
		if backwardFires {
			m.triggerBackward(cur, firstIdx)
		} else if forwardFires {
			m.triggerForward(cur, lastIdx)
		}
	case Forward:
		if forwardFires {
			m.triggerForward(cur, lastIdx)
		}
		// A backward trigger while in Forward has no transition edge (§4.4) and is ignored.
	}
}

// triggerBackward grows the window, moves (or stays in) Backward mode,
// and issues the continuation selection. The cursor is the timestamp of
// the item `buffer` positions after firstVisible — inside the current
// window, toward newer items — clamped to the newest item itself when
// fewer than `buffer` items remain on that side (see DESIGN.md, Open
// Question 2), so the next window overlaps the current one up to that
// cursor item; lastVisible falls inside the overlap whenever it is at
// most `buffer` positions after firstVisible.
func (m *ScrollManager[V]) triggerBackward(cur VisibleSet[V], firstIdx int) {
	idx := firstIdx + m.sizes.Buffer
	if idx > len(cur.Items)-1 {
		idx = len(cur.Items) - 1
	}
	cursor := cur.Items[idx].Timestamp()

	m.growWindow()
	m.mode = Backward
	m.issueSelection(Backward, &cursor)
}

// triggerForward mirrors triggerBackward on the other side. The cursor
// is the timestamp of the item `buffer` positions before lastVisible,
// clamped to the oldest item when fewer than `buffer` items remain —
// except when that oldest item is already the feed's absolute oldest
// (HasMorePreceding is false), in which case the cursor is the literal
// sentinel 0 so the continuation query can never miss an item (§4.2).
func (m *ScrollManager[V]) triggerForward(cur VisibleSet[V], lastIdx int) {
	idx := lastIdx - m.sizes.Buffer
	var cursor int64
	switch {
	case idx >= 0:
		cursor = cur.Items[idx].Timestamp()
	case !cur.HasMorePreceding:
		cursor = 0
	default:
		cursor = cur.Items[0].Timestamp()
	}

	m.growWindow()
	m.mode = Forward
	m.issueSelection(Forward, &cursor)
}

func (m *ScrollManager[V]) growWindow() {
	m.windowSize += m.sizes.Threshold
	if capacity := m.sizes.WindowCap(); m.windowSize > capacity {
		m.windowSize = capacity
	}
}
