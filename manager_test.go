package scrollwindow

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

type mItem struct {
	id string
	ts int64
}

func (i mItem) EntityID() EntityID { return EntityID(i.id) }
func (i mItem) Timestamp() int64   { return i.ts }

func seededRange(fromTS, toTS int64) []mItem {
	out := make([]mItem, 0, toTS-fromTS+1)
	for ts := fromTS; ts <= toTS; ts++ {
		out = append(out, mItem{id: fmt.Sprintf("%d", ts), ts: ts})
	}
	return out
}

// fakeEngine is a synchronous, non-reactive Engine[V]: each Run call
// evaluates the selection once against a fixed dataset and returns a
// single-value channel. It exists so manager tests can drive
// OnScroll/apply through exactly the same path Start uses, without
// pulling in package queryengine (which itself depends on this
// package, and would be a cyclic import from here).
type fakeEngine[V Entity] struct {
	mu    sync.Mutex
	items []V
}

func newFakeEngine[V Entity](items []V) *fakeEngine[V] {
	return &fakeEngine[V]{items: items}
}

func (e *fakeEngine[V]) Run(ctx context.Context, sel Selection) (<-chan Result[V], error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	matched := make([]V, 0, len(e.items))
	for _, it := range e.items {
		ts := it.Timestamp()
		if sel.Cursor != nil {
			switch sel.CursorOp {
			case "<=":
				if ts > *sel.Cursor {
					continue
				}
			case ">=":
				if ts < *sel.Cursor {
					continue
				}
			}
		}
		matched = append(matched, it)
	}

	desc := sel.Order == Desc
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return matched[i].Timestamp() > matched[j].Timestamp()
		}
		return matched[i].Timestamp() < matched[j].Timestamp()
	})
	if sel.Limit > 0 && len(matched) > sel.Limit {
		matched = matched[:sel.Limit]
	}

	ch := make(chan Result[V], 1)
	ch <- Result[V]{Items: matched}
	return ch, nil
}

// harness wires a ScrollManager to a fakeEngine and a buffered sink of
// every VisibleSet it publishes, so a test can issue one scroll event
// and then block for exactly the VisibleSet it produced.
type harness struct {
	m    *ScrollManager[mItem]
	sink chan VisibleSet[mItem]
}

func newHarness(t *testing.T, cfg Config, data []mItem) *harness {
	t.Helper()
	m, err := NewScrollManager[mItem](cfg, newFakeEngine(data), nil)
	if err != nil {
		t.Fatalf("NewScrollManager: %v", err)
	}
	h := &harness{m: m, sink: make(chan VisibleSet[mItem], 16)}
	m.Subscribe(func(vs VisibleSet[mItem]) { h.sink <- vs })
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return h
}

func (h *harness) await(t *testing.T) VisibleSet[mItem] {
	t.Helper()
	select {
	case vs := <-h.sink:
		return vs
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a published VisibleSet")
		return VisibleSet[mItem]{}
	}
}

func (h *harness) assertNoPublish(t *testing.T) {
	t.Helper()
	select {
	case vs := <-h.sink:
		t.Fatalf("expected no publish, got %+v", vs)
	case <-time.After(50 * time.Millisecond):
	}
}

func stdConfig() Config {
	return Config{ViewportHeight: 1000, MinRowHeight: 100} // screenItems=10 buffer=20 threshold=10 liveWindow=30 cap=50
}

// scenario: initial Live load over a 60-item dataset (ts 1000..1059).
func TestManagerInitialLive(t *testing.T) {
	h := newHarness(t, stdConfig(), seededRange(1000, 1059))
	vs := h.await(t)

	if len(vs.Items) != 30 {
		t.Fatalf("want 30 items, got %d", len(vs.Items))
	}
	if vs.Items[0].Timestamp() != 1030 || vs.Items[29].Timestamp() != 1059 {
		t.Fatalf("want window [1030,1059], got [%d,%d]", vs.Items[0].Timestamp(), vs.Items[len(vs.Items)-1].Timestamp())
	}
	if !vs.HasMorePreceding {
		t.Error("want HasMorePreceding true")
	}
	if vs.HasMoreFollowing {
		t.Error("want HasMoreFollowing false")
	}
	if !vs.ShouldAutoScroll {
		t.Error("want ShouldAutoScroll true")
	}
	if vs.Intersection != nil {
		t.Errorf("want nil intersection, got %+v", vs.Intersection)
	}
	if h.m.Mode() != Live {
		t.Errorf("want mode Live, got %v", h.m.Mode())
	}
	want := `TRUE ORDER BY timestamp DESC LIMIT 30`
	if got := h.m.CurrentSelection(); got != want {
		t.Errorf("CurrentSelection() = %q, want %q", got, want)
	}
}

// scenario: the backward trigger fires near the top edge of a Live
// window and pages into Backward mode, anchored on a shared item.
func TestManagerBackwardTrigger(t *testing.T) {
	h := newHarness(t, stdConfig(), seededRange(1000, 1059))
	initial := h.await(t)

	first := initial.Items[0].EntityID()  // ts 1030
	last := initial.Items[29].EntityID()  // ts 1059
	h.m.OnScroll(first, last, true)

	vs := h.await(t)
	if h.m.Mode() != Backward {
		t.Fatalf("want mode Backward, got %v", h.m.Mode())
	}
	if len(vs.Items) != 40 {
		t.Fatalf("want 40 items, got %d", len(vs.Items))
	}
	if vs.Items[0].Timestamp() != 1011 || vs.Items[39].Timestamp() != 1050 {
		t.Fatalf("want window [1011,1050], got [%d,%d]", vs.Items[0].Timestamp(), vs.Items[len(vs.Items)-1].Timestamp())
	}
	if !vs.HasMorePreceding {
		t.Error("want HasMorePreceding true")
	}
	if !vs.HasMoreFollowing {
		t.Error("want HasMoreFollowing true in Backward mode")
	}
	if vs.ShouldAutoScroll {
		t.Error("want ShouldAutoScroll false once paging backward")
	}
	if vs.Intersection == nil {
		t.Fatal("want a non-nil intersection")
	}
	if vs.Intersection.EntityID != EntityID("1050") {
		t.Errorf("anchor = %v, want 1050", vs.Intersection.EntityID)
	}
	if vs.Intersection.Direction != Backward {
		t.Errorf("anchor direction = %v, want Backward", vs.Intersection.Direction)
	}
}

// scenario: repeated backward triggers page all the way to the oldest
// item in the dataset; HasMorePreceding flips to false.
func TestManagerReachesOldestEdge(t *testing.T) {
	h := newHarness(t, stdConfig(), seededRange(1000, 1059))
	initial := h.await(t)

	h.m.OnScroll(initial.Items[0].EntityID(), initial.Items[29].EntityID(), true)
	afterFirst := h.await(t) // window [1011,1050], 40 items

	h.m.OnScroll(afterFirst.Items[0].EntityID(), afterFirst.Items[39].EntityID(), true)
	vs := h.await(t)

	if vs.Items[0].Timestamp() != 1000 {
		t.Fatalf("want oldest item ts 1000 in window, got %d", vs.Items[0].Timestamp())
	}
	if vs.HasMorePreceding {
		t.Error("want HasMorePreceding false at the dataset's oldest edge")
	}
	if !vs.HasMoreFollowing {
		t.Error("want HasMoreFollowing true, still paging Backward")
	}
	if h.m.Mode() != Backward {
		t.Fatalf("want mode Backward, got %v", h.m.Mode())
	}
}

// scenario: paging Forward from deep in Backward mode eventually
// reaches the live edge and the manager snaps back to Live.
func TestManagerForwardTriggerReturnsToLive(t *testing.T) {
	h := newHarness(t, stdConfig(), seededRange(1000, 1059))
	initial := h.await(t)

	h.m.OnScroll(initial.Items[0].EntityID(), initial.Items[29].EntityID(), true)
	afterFirst := h.await(t) // window [1011,1050]

	h.m.OnScroll(afterFirst.Items[0].EntityID(), afterFirst.Items[39].EntityID(), true)
	afterOldest := h.await(t) // window [1000,1031]

	lastIdx := len(afterOldest.Items) - 1
	h.m.OnScroll(afterOldest.Items[0].EntityID(), afterOldest.Items[lastIdx].EntityID(), false)

	vs := h.await(t)
	if h.m.Mode() != Live {
		t.Fatalf("want mode Live after reaching the live edge, got %v", h.m.Mode())
	}
	if vs.Items[len(vs.Items)-1].Timestamp() != 1059 {
		t.Fatalf("want newest item ts 1059 in window, got %d", vs.Items[len(vs.Items)-1].Timestamp())
	}
	if vs.HasMoreFollowing {
		t.Error("want HasMoreFollowing false back in Live")
	}
	if !vs.ShouldAutoScroll {
		t.Error("want ShouldAutoScroll true back in Live")
	}
	if vs.Intersection != nil {
		t.Errorf("want nil intersection after returning to Live, got %+v", vs.Intersection)
	}
	want := fmt.Sprintf(`TRUE ORDER BY timestamp DESC LIMIT %d`, stdConfigSizes(t).LiveWindow)
	if got := h.m.CurrentSelection(); got != want {
		t.Errorf("CurrentSelection() = %q, want %q", got, want)
	}
}

func stdConfigSizes(t *testing.T) Sizes {
	t.Helper()
	sizes, err := DeriveSizes(stdConfig())
	if err != nil {
		t.Fatal(err)
	}
	return sizes
}

// scenario: a dataset smaller than a full window never reports more
// preceding or following content, regardless of window size.
func TestManagerSmallDataset(t *testing.T) {
	h := newHarness(t, stdConfig(), seededRange(2000, 2004)) // 5 items, liveWindow wants 30
	vs := h.await(t)

	if len(vs.Items) != 5 {
		t.Fatalf("want all 5 items, got %d", len(vs.Items))
	}
	if vs.HasMorePreceding {
		t.Error("want HasMorePreceding false for an exhausted small dataset")
	}
	if vs.HasMoreFollowing {
		t.Error("want HasMoreFollowing false in Live")
	}
	if !vs.ShouldAutoScroll {
		t.Error("want ShouldAutoScroll true")
	}
}

// scenario: scroll events that stay well clear of both thresholds
// never fire a trigger, never change mode, and never publish again —
// rapid alternating scrolling inside the dead zone is a no-op.
func TestManagerNoTriggerInsideDeadZone(t *testing.T) {
	h := newHarness(t, stdConfig(), seededRange(1000, 1059))
	initial := h.await(t)

	mid := len(initial.Items) / 2
	first := initial.Items[mid-2].EntityID()
	last := initial.Items[mid+2].EntityID()

	h.m.OnScroll(first, last, true)
	h.m.OnScroll(first, last, false)
	h.m.OnScroll(first, last, true)

	h.assertNoPublish(t)
	if h.m.Mode() != Live {
		t.Fatalf("want mode unchanged at Live, got %v", h.m.Mode())
	}
}

// scenario: an engine error surfaces on VisibleSet.Error without
// disturbing the mode or the previously published items.
func TestManagerQueryErrorSurfacesWithoutChangingMode(t *testing.T) {
	h := newHarness(t, stdConfig(), seededRange(1000, 1059))
	h.await(t)

	h.m.apply(h.m.generation, Result[mItem]{Err: fmt.Errorf("backend unavailable")})
	vs := h.await(t)

	if vs.Error == "" {
		t.Fatal("want a non-empty Error")
	}
	if h.m.Mode() != Live {
		t.Fatalf("want mode unchanged at Live, got %v", h.m.Mode())
	}
}

// scenario: a stale delivery tagged with an old generation is dropped
// silently and never reaches a subscriber.
func TestManagerStaleGenerationDiscarded(t *testing.T) {
	h := newHarness(t, stdConfig(), seededRange(1000, 1059))
	h.await(t)

	staleGeneration := h.m.generation
	h.m.generation++ // simulate a newer selection already in flight

	h.m.apply(staleGeneration, Result[mItem]{Items: seededRange(9000, 9001)})
	h.assertNoPublish(t)
}
