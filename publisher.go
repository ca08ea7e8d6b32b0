package scrollwindow

import "sync"

// publisher is a minimal current-value-plus-change-stream broadcaster,
// adapted from the teacher's Observable[T] listener/notify design: a
// Subscribe call returns an unsubscribe closure that zeroes its slot
// rather than reslicing, so callbacks in flight never see a mutated
// listener list.
type publisher[T any] struct {
	mu        sync.Mutex
	current   T
	listeners []func(T)
}

func newPublisher[T any]() *publisher[T] {
	return &publisher[T]{}
}

func (p *publisher[T]) publish(v T) {
	p.mu.Lock()
	p.current = v
	listeners := append(make([]func(T), 0, len(p.listeners)), p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		if fn != nil {
			fn(v)
		}
	}
}

// Subscribe registers fn to be called with every future published
// value. It returns an unsubscribe function.
func (p *publisher[T]) Subscribe(fn func(T)) func() {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	idx := len(p.listeners) - 1
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		p.listeners[idx] = nil
		p.mu.Unlock()
	}
}

func (p *publisher[T]) Current() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
