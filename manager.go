package scrollwindow

import (
	"context"
	"log"
	"sync"
)

// ScrollManager is the single long-lived object whose lifecycle is tied
// to one feed subscription. It owns mode tracking, continuation-query
// construction, window evaluation, and scroll-trigger detection; it
// talks to the outside world only through an Engine and a published
// VisibleSet stream.
//
// Every mutation of mode, selection, generation, and VisibleSet is
// serialized by mu — the Go equivalent of the single logical executor
// the spec describes: the goroutine started by Start and any caller of
// OnScroll/CurrentSelection/Mode all serialize through it. VisibleSet
// reads the publisher's current value under the publisher's own lock.
type ScrollManager[V Entity] struct {
	mu     sync.Mutex
	logger *log.Logger

	engine         Engine[V]
	basePredicate  Predicate
	tsField        string
	tieBreak       string
	sizes          Sizes

	ctx context.Context

	mode        ScrollMode
	pendingMode ScrollMode // mode the in-flight/just-applied selection was issued under
	generation  int
	windowSize  int
	selection   Selection

	visible   VisibleSet[V]
	indexByID map[EntityID]int

	newestEverTS *int64
	oldestEverTS *int64

	pub *publisher[VisibleSet[V]]
}

// NewScrollManager derives sizes from cfg and constructs a manager
// pinned to Live mode with its initial selection already built. logger
// may be nil; when set, QueryError and AnchorLost conditions are logged
// through it rather than through a global logger.
func NewScrollManager[V Entity](cfg Config, engine Engine[V], logger *log.Logger) (*ScrollManager[V], error) {
	sizes, err := DeriveSizes(cfg)
	if err != nil {
		return nil, err
	}

	basePredicate := cfg.BasePredicate
	if basePredicate == nil {
		basePredicate = Always()
	}
	tsField := cfg.TimestampField
	if tsField == "" {
		tsField = "timestamp"
	}

	m := &ScrollManager[V]{
		logger:        logger,
		engine:        engine,
		basePredicate: basePredicate,
		tsField:       tsField,
		tieBreak:      cfg.TieBreak,
		sizes:         sizes,
		mode:          Live,
		pendingMode:   Live,
		windowSize:    sizes.LiveWindow,
		pub:           newPublisher[VisibleSet[V]](),
	}
	m.selection = BuildSelection(Live, basePredicate, tsField, nil, sizes.LiveWindow, cfg.TieBreak)
	m.visible = VisibleSet[V]{ShouldAutoScroll: true}
	m.pub.publish(m.visible)
	return m, nil
}

// Start issues the initial Live selection and begins consuming the
// engine's result stream in a background goroutine. It suspends once,
// to install the subscription, then returns; the goroutine it starts
// loops on the stream until ctx is done or the engine closes it.
func (m *ScrollManager[V]) Start(ctx context.Context) error {
	m.mu.Lock()
	m.ctx = ctx
	sel := m.selection
	gen := m.generation
	m.mu.Unlock()

	ch, err := m.engine.Run(ctx, sel)
	if err != nil {
		return err
	}
	go m.consume(ctx, ch, gen)
	return nil
}

func (m *ScrollManager[V]) consume(ctx context.Context, ch <-chan Result[V], generation int) {
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-ch:
			if !ok {
				return
			}
			m.apply(generation, res)
		}
	}
}

// apply handles one delivery from the engine. Deliveries tagged with a
// generation older than the manager's current one are discarded
// (StaleResult, §5) — the superseding selection has already moved the
// manager on.
func (m *ScrollManager[V]) apply(generation int, res Result[V]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if generation != m.generation {
		return
	}

	if res.Err != nil {
		m.visible.Error = res.Err.Error()
		if m.logger != nil {
			m.logger.Printf("scrollwindow: query error: %v", res.Err)
		}
		m.pub.publish(m.visible)
		return
	}

	wasForward := m.pendingMode == Forward
	vs := m.evaluateWindow(res.Items)
	m.visible = vs
	m.pub.publish(vs)

	// evaluateWindow only flips pendingMode's Forward into m.mode == Live
	// at the live edge (§4.3 step 4); when it does, the selection still
	// on file is the old Forward continuation query, which would keep
	// truncating from the wrong end as new items arrive. Re-issue a
	// genuine Live selection so the subscription the engine now serves
	// is reactive the way Live is supposed to be.
	if wasForward && m.mode == Live {
		m.issueSelection(Live, nil)
	}
}

// issueSelection builds and runs the continuation query for mode with
// the given cursor, bumping the generation counter so any in-flight
// result for the previous selection is discarded on arrival.
func (m *ScrollManager[V]) issueSelection(mode ScrollMode, cursor *int64) {
	m.generation++
	generation := m.generation
	m.pendingMode = mode

	sel := BuildSelection(mode, m.basePredicate, m.tsField, cursor, m.windowSize, m.tieBreak)
	m.selection = sel

	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	ch, err := m.engine.Run(ctx, sel)
	if err != nil {
		m.visible.Error = err.Error()
		if m.logger != nil {
			m.logger.Printf("scrollwindow: query error: %v", err)
		}
		m.pub.publish(m.visible)
		return
	}
	go m.consume(ctx, ch, generation)
}

// Mode returns the manager's current ScrollMode.
func (m *ScrollManager[V]) Mode() ScrollMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// CurrentSelection returns the serialized form of the current
// selection, for diagnostics and tests.
func (m *ScrollManager[V]) CurrentSelection() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selection.String()
}

// VisibleSet returns the most recently published VisibleSet. It is
// safe to call concurrently with updates.
func (m *ScrollManager[V]) VisibleSet() VisibleSet[V] {
	return m.pub.Current()
}

// Subscribe registers fn to be called with every future VisibleSet
// publication. It returns an unsubscribe function.
func (m *ScrollManager[V]) Subscribe(fn func(VisibleSet[V])) func() {
	return m.pub.Subscribe(fn)
}
