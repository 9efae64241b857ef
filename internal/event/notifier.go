package event

import "sync"

// Notifier fans a payload-free change signal out to subscribers.
// The signal carries no data; consumers re-query the state they care about.
type Notifier struct {
	mu   sync.Mutex
	subs []func()
}

// Subscribe registers fn to be invoked after every state change.
// Subscriptions cannot be removed; they live as long as the owner.
func (n *Notifier) Subscribe(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

// Notify invokes all subscribers. Callers must not hold the lock that
// guards the state being announced, so subscribers can re-query freely.
func (n *Notifier) Notify() {
	n.mu.Lock()
	subs := make([]func(), len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
