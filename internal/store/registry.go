package store

import "sync"

// Observer receives state snapshots. It runs on the goroutine that
// changed the state and must not call Store mutators or Subscribe before
// returning, since both wait for the current delivery. Reading State and
// unsubscribing are fine.
type Observer func(State)

type subscriber struct {
	id int
	fn Observer
}

// registry lists observers in subscription order. Guarded by Store.mu.
type registry struct {
	next int
	subs []subscriber
}

func (r *registry) add(fn Observer) int {
	r.next++
	r.subs = append(r.subs, subscriber{id: r.next, fn: fn})
	return r.next
}

func (r *registry) remove(id int) {
	for i, sub := range r.subs {
		if sub.id == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			return
		}
	}
}

func (r *registry) observers() []Observer {
	out := make([]Observer, len(r.subs))
	for i, sub := range r.subs {
		out[i] = sub.fn
	}
	return out
}

// Subscribe registers fn and immediately delivers the current snapshot to
// it. Every later change is delivered to all observers in subscription
// order. The returned function unsubscribes and may be called repeatedly.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.reg.add(fn)
	s.deliver(s.state, []Observer{fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.reg.remove(id)
			s.mu.Unlock()
		})
	}
}

// commit publishes the current state to every observer and releases s.mu.
func (s *Store) commit() {
	s.deliver(s.state, s.reg.observers())
}

// deliver hands snap to observers after releasing s.mu, which must be
// held on entry. Deliveries happen in the order their callers held s.mu.
func (s *Store) deliver(snap State, observers []Observer) {
	ticket := s.ticket
	s.ticket++
	s.mu.Unlock()

	s.turnMu.Lock()
	for s.turn != ticket {
		s.turnCh.Wait()
	}
	s.turnMu.Unlock()

	defer func() {
		s.turnMu.Lock()
		s.turn++
		s.turnCh.Broadcast()
		s.turnMu.Unlock()
	}()
	for _, fn := range observers {
		fn(snap)
	}
}
